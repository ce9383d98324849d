package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds LLM client configuration.
type Config struct {
	Provider   string // "openai" or "gemini"
	APIKey     string // Required: API key for the provider
	BaseURL    string // Optional: custom API endpoint
	Model      string
	HTTPClient *http.Client // Optional: only used by the gemini provider
}

// Attachment is an inline binary input sent alongside the prompt.
type Attachment struct {
	MimeType string
	Data     []byte
}

// DataURL renders the attachment as a base64 data URL.
func (a Attachment) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", a.MimeType, base64.StdEncoding.EncodeToString(a.Data))
}

// Part is one element of a multimodal response. Exactly one of Text or Data is set.
type Part struct {
	MimeType string
	Data     []byte
	Text     string
}

// StructuredRequest asks for a response constrained to Schema.
type StructuredRequest struct {
	SystemPrompt string
	UserPrompt   string
	Attachments  []Attachment
	SchemaName   string
	Schema       any
	MaxTokens    int
	Temperature  *float64 // nil = model default, explicit 0 = deterministic
}

type Response struct {
	PromptTokens     int
	CompletionTokens int
}

// StructuredClient produces JSON that matches a schema and decodes it into result.
type StructuredClient interface {
	Generate(ctx context.Context, req StructuredRequest, result any) (*Response, error)
	Model() string
}

// ImageEditRequest carries one source image and the editing instruction.
type ImageEditRequest struct {
	Instruction string
	Image       Attachment
}

// ImageClient edits images and returns every part of the model response.
type ImageClient interface {
	EditImage(ctx context.Context, req ImageEditRequest) ([]Part, error)
	Model() string
}

// NewStructuredClient selects the provider based on cfg.Provider. Defaults to OpenAI.
func NewStructuredClient(cfg Config) (StructuredClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch providerOrDefault(cfg.Provider) {
	case ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	case ProviderGemini:
		return newGeminiClient(cfg, "gemini-2.5-flash")
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewImageClient selects the image editing provider based on cfg.Provider.
func NewImageClient(cfg Config) (ImageClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch providerOrDefault(cfg.Provider) {
	case ProviderOpenAI:
		return newOpenAIImageClient(cfg), nil
	case ProviderGemini:
		return newGeminiClient(cfg, "gemini-2.5-flash-image")
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func providerOrDefault(provider string) string {
	if provider == "" {
		return ProviderOpenAI
	}
	return provider
}

// GenerateSchema reflects a strict JSON schema for T: no additional properties,
// every field without omitempty is required.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 120 * time.Second}
}
