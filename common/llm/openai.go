package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
)

type openaiImageClient struct {
	openai openai.Client
	model  string
}

func newOpenAIImageClient(cfg Config) *openaiImageClient {
	model := cfg.Model
	if model == "" {
		model = string(openai.ImageModelGPTImage1)
	}

	return &openaiImageClient{
		openai: openai.NewClient(openAIOptions(cfg)...),
		model:  model,
	}
}

// EditImage calls the images edit endpoint. Every returned image becomes one
// Part; the endpoint always answers in base64 for gpt-image models.
func (c *openaiImageClient) EditImage(ctx context.Context, req ImageEditRequest) ([]Part, error) {
	filename := "photo" + extensionFor(req.Image.MimeType)

	start := time.Now()
	resp, err := c.openai.Images.Edit(ctx, openai.ImageEditParams{
		Image: openai.ImageEditParamsImageUnion{
			OfFile: openai.File(bytes.NewReader(req.Image.Data), filename, req.Image.MimeType),
		},
		Prompt: req.Instruction,
		Model:  openai.ImageModel(c.model),
		N:      openai.Int(1),
	})
	if err != nil {
		return nil, fmt.Errorf("openai image edit: %w", err)
	}

	slog.DebugContext(ctx, "llm image edit completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"images", len(resp.Data))

	parts := make([]Part, 0, len(resp.Data))
	for _, img := range resp.Data {
		if img.B64JSON == "" {
			if img.RevisedPrompt != "" {
				parts = append(parts, Part{MimeType: "text/plain", Text: img.RevisedPrompt})
			}
			continue
		}
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("decode image data: %w", err)
		}
		parts = append(parts, Part{MimeType: "image/png", Data: data})
	}
	return parts, nil
}

func (c *openaiImageClient) Model() string {
	return c.model
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
