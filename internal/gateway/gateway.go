package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"listingstudio.app/studio/common/llm"
	"listingstudio.app/studio/common/logger"
	"listingstudio.app/studio/internal/model"
)

const (
	OpGenerateFullListing   = "generate_full_listing"
	OpRegenerateDescription = "regenerate_description"
	OpEnhanceImage          = "enhance_image"
)

const systemPrompt = "You are an experienced real-estate agent who writes professional property listings. " +
	"Respond ONLY with JSON that matches the provided schema. Do not wrap it in markdown."

var (
	listingSchema     = llm.GenerateSchema[model.ListingResult]()
	descriptionSchema = llm.GenerateSchema[descriptionShape]()
)

type Config struct {
	MaxTokens          int
	Temperature        float64
	Timeout            time.Duration // Per listing/description call. 0 = no deadline.
	ImageTimeout       time.Duration // Per enhancement call. 0 = no deadline.
	StagingInstruction string
}

// Gateway is the only component that talks to the remote generative models.
type Gateway struct {
	text   llm.StructuredClient
	images llm.ImageClient
	cfg    Config
}

func New(text llm.StructuredClient, images llm.ImageClient, cfg Config) *Gateway {
	return &Gateway{text: text, images: images, cfg: cfg}
}

// GenerateFullListing returns a fully populated listing or a *GenerationFailure.
func (g *Gateway) GenerateFullListing(ctx context.Context, instruction string, attachments []llm.Attachment) (model.ListingResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Operation: logger.Ptr(OpGenerateFullListing),
		Component: "studio.gateway",
	})
	sc := logger.StartSpan(ctx, "gateway."+OpGenerateFullListing, trace.WithSpanKind(trace.SpanKindClient))
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(
		attribute.String("llm.model", g.text.Model()),
		attribute.Int("llm.attachments", len(attachments)),
	)

	var wire listingWire
	if err := g.generate(ctx, instruction, attachments, "listing", listingSchema, &wire); err != nil {
		failure := g.failure(ctx, OpGenerateFullListing, err)
		sc.RecordError(failure)
		return model.ListingResult{}, failure
	}

	result, err := wire.toResult()
	if err != nil {
		failure := &GenerationFailure{Op: OpGenerateFullListing, Reason: "malformed response", Err: err}
		slog.WarnContext(ctx, "model returned malformed listing", "error", err)
		sc.RecordError(failure)
		return model.ListingResult{}, failure
	}

	sc.SetAttributes(attribute.Int("listing.pois", len(result.NearbyPois)))
	return result, nil
}

// RegenerateDescription returns only a new description text or a *GenerationFailure.
func (g *Gateway) RegenerateDescription(ctx context.Context, instruction string, attachments []llm.Attachment) (string, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Operation: logger.Ptr(OpRegenerateDescription),
		Component: "studio.gateway",
	})
	sc := logger.StartSpan(ctx, "gateway."+OpRegenerateDescription, trace.WithSpanKind(trace.SpanKindClient))
	defer sc.End()
	ctx = sc.Context()

	var wire descriptionWire
	if err := g.generate(ctx, instruction, attachments, "description", descriptionSchema, &wire); err != nil {
		failure := g.failure(ctx, OpRegenerateDescription, err)
		sc.RecordError(failure)
		return "", failure
	}
	if wire.Description == nil {
		failure := &GenerationFailure{Op: OpRegenerateDescription, Reason: "malformed response", Err: errMissingField}
		sc.RecordError(failure)
		return "", failure
	}
	return *wire.Description, nil
}

// EnhanceImage returns the first image part of the model response or a *StagingFailure.
func (g *Gateway) EnhanceImage(ctx context.Context, data []byte, mimeType string) (model.EnhancedPhoto, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Operation: logger.Ptr(OpEnhanceImage),
		Component: "studio.gateway",
	})
	sc := logger.StartSpan(ctx, "gateway."+OpEnhanceImage, trace.WithSpanKind(trace.SpanKindClient))
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(
		attribute.String("llm.model", g.images.Model()),
		attribute.String("image.mime_type", mimeType),
		attribute.Int("image.bytes", len(data)),
	)

	if g.cfg.ImageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.ImageTimeout)
		defer cancel()
	}

	parts, err := g.images.EditImage(ctx, llm.ImageEditRequest{
		Instruction: g.cfg.StagingInstruction,
		Image:       llm.Attachment{MimeType: mimeType, Data: data},
	})
	if err != nil {
		failure := &StagingFailure{Reason: callReason(ctx, err), Err: err}
		slog.WarnContext(ctx, "image enhancement call failed", "error", err)
		sc.RecordError(failure)
		return model.EnhancedPhoto{}, failure
	}

	for _, p := range parts {
		if strings.HasPrefix(p.MimeType, "image/") && len(p.Data) > 0 {
			return model.EnhancedPhoto{MimeType: p.MimeType, Data: p.Data}, nil
		}
	}

	failure := &StagingFailure{Reason: "no image in response"}
	slog.WarnContext(ctx, "image enhancement returned no image", "parts", len(parts))
	sc.RecordError(failure)
	return model.EnhancedPhoto{}, failure
}

func (g *Gateway) generate(ctx context.Context, instruction string, attachments []llm.Attachment, schemaName string, schema any, out any) error {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.text.Generate(ctx, llm.StructuredRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   instruction,
		Attachments:  attachments,
		SchemaName:   schemaName,
		Schema:       schema,
		MaxTokens:    g.cfg.MaxTokens,
		Temperature:  llm.Temp(g.cfg.Temperature),
	}, out)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "structured generation completed",
		"schema", schemaName,
		"attachments", len(attachments),
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens)
	return nil
}

func (g *Gateway) failure(ctx context.Context, op string, err error) *GenerationFailure {
	slog.WarnContext(ctx, "generation call failed", "error", err)
	return &GenerationFailure{Op: op, Reason: callReason(ctx, err), Err: err}
}

func callReason(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timed out"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "remote call failed"
	}
}
