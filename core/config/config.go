package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel     OTelConfig
	LLM      LLMConfig
	ImageLLM LLMConfig
	Redis    RedisConfig
	Staging  StagingConfig
	Listing  ListingConfig
	Env      string
	Port     string
	NodeID   int64
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type LLMConfig struct {
	Provider    string // "openai" or "gemini"
	APIKey      string
	BaseURL     string // Optional: for custom endpoints
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type RedisConfig struct {
	URL                string
	StatusStreamPrefix string
}

type StagingConfig struct {
	// MaxConcurrency caps in-flight enhancement calls per run. 0 means unbounded.
	MaxConcurrency int
	Instruction    string
}

type ListingConfig struct {
	Language string
	Currency string
}

const defaultStagingInstruction = "Virtually stage this room for a real-estate listing. " +
	"Add tasteful, modern furniture and decor that fit the room's size and style. " +
	"Keep walls, windows, floors, ceiling and the camera perspective exactly as they are. " +
	"Return a single photorealistic image."

// Load loads configuration from environment variables.
// In development it first loads a .env file from the working directory if one exists.
func Load() (Config, error) {
	if getEnv("LISTING_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:    getEnv("LISTING_ENV", "development"),
		Port:   getEnv("PORT", "8080"),
		NodeID: int64(getEnvInt("NODE_ID", 1)),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "listing-studio"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			APIKey:      getEnv("LLM_API_KEY", ""),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Model:       getEnv("LLM_MODEL", "gpt-4o"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 4096),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.5),
			Timeout:     getEnvDuration("LLM_TIMEOUT", 90*time.Second),
		},
		// Staging falls back to the listing provider's key when no dedicated key is set.
		ImageLLM: LLMConfig{
			Provider: getEnv("IMAGE_LLM_PROVIDER", getEnv("LLM_PROVIDER", "openai")),
			APIKey:   getEnv("IMAGE_LLM_API_KEY", getEnv("LLM_API_KEY", "")),
			BaseURL:  getEnv("IMAGE_LLM_BASE_URL", ""),
			Model:    getEnv("IMAGE_LLM_MODEL", ""),
			Timeout:  getEnvDuration("IMAGE_LLM_TIMEOUT", 120*time.Second),
		},
		Redis: RedisConfig{
			URL:                getEnv("REDIS_URL", ""),
			StatusStreamPrefix: getEnv("STAGING_STATUS_STREAM_PREFIX", "staging-status"),
		},
		Staging: StagingConfig{
			MaxConcurrency: getEnvInt("STAGING_MAX_CONCURRENCY", 0),
			Instruction:    getEnv("STAGING_INSTRUCTION", defaultStagingInstruction),
		},
		Listing: ListingConfig{
			Language: getEnv("LISTING_LANGUAGE", "Czech"),
			Currency: getEnv("LISTING_CURRENCY", "CZK"),
		},
	}

	if cfg.LLM.APIKey == "" {
		return Config{}, fmt.Errorf("LLM_API_KEY is required")
	}

	if !cfg.LLM.Enabled() {
		return Config{}, fmt.Errorf("unsupported LLM_PROVIDER: %s", cfg.LLM.Provider)
	}

	if cfg.Staging.MaxConcurrency < 0 {
		return Config{}, fmt.Errorf("STAGING_MAX_CONCURRENCY must not be negative")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && (c.Provider == "openai" || c.Provider == "gemini")
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
