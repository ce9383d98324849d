package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"listingstudio.app/studio/common/id"
	"listingstudio.app/studio/common/llm"
	"listingstudio.app/studio/common/logger"
	"listingstudio.app/studio/common/otel"
	"listingstudio.app/studio/core/config"
	"listingstudio.app/studio/internal/gateway"
	"listingstudio.app/studio/internal/http/middleware"
	httprouter "listingstudio.app/studio/internal/http/router"
	"listingstudio.app/studio/internal/listing"
	"listingstudio.app/studio/internal/service"
	"listingstudio.app/studio/internal/session"
	"listingstudio.app/studio/internal/staging"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "listing studio starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		slog.InfoContext(ctx, "redis connected", "stream_prefix", cfg.Redis.StatusStreamPrefix)
	} else {
		slog.InfoContext(ctx, "redis disabled, staging status stream unavailable")
	}

	services, err := buildServices(cfg, redisClient)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build services", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, redisClient)
	// No WriteTimeout: the status stream is long-lived.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func buildServices(cfg config.Config, redisClient *redis.Client) (*service.Services, error) {
	textClient, err := llm.NewStructuredClient(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating listing llm client: %w", err)
	}

	imageClient, err := llm.NewImageClient(llm.Config{
		Provider: cfg.ImageLLM.Provider,
		APIKey:   cfg.ImageLLM.APIKey,
		BaseURL:  cfg.ImageLLM.BaseURL,
		Model:    cfg.ImageLLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating image llm client: %w", err)
	}

	slog.Info("llm clients ready", "listing_model", textClient.Model(), "image_model", imageClient.Model())

	gw := gateway.New(textClient, imageClient, gateway.Config{
		MaxTokens:          cfg.LLM.MaxTokens,
		Temperature:        cfg.LLM.Temperature,
		Timeout:            cfg.LLM.Timeout,
		ImageTimeout:       cfg.ImageLLM.Timeout,
		StagingInstruction: cfg.Staging.Instruction,
	})

	composer := listing.NewComposer(listing.ComposerConfig{
		Language: cfg.Listing.Language,
		Currency: cfg.Listing.Currency,
	})
	publisher := staging.NewRedisPublisher(redisClient, cfg.Redis.StatusStreamPrefix)
	orchestrator := staging.NewOrchestrator(gw, publisher, staging.Config{MaxConcurrency: cfg.Staging.MaxConcurrency})

	return service.NewServices(
		session.NewRegistry(id.NewString),
		listing.NewGenerator(composer, gw),
		orchestrator,
	), nil
}

func setupRouter(cfg config.Config, services *service.Services, redisClient *redis.Client) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Redis:              redisClient,
		StatusStreamPrefix: cfg.Redis.StatusStreamPrefix,
	})

	return router
}

const banner = `
  _     _     _   _                   _             _ _
 | |   (_)___| |_(_)_ __   __ _   ___| |_ _   _  __| (_) ___
 | |   | / __| __| | '_ \ / _` + "`" + ` | / __| __| | | |/ _` + "`" + ` | |/ _ \
 | |___| \__ \ |_| | | | | (_| | \__ \ |_| |_| | (_| | | (_) |
 |_____|_|___/\__|_|_| |_|\__, | |___/\__|\__,_|\__,_|_|\___/
                          |___/
`
