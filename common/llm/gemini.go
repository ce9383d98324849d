package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiClient serves both structured generation and image editing through
// the generateContent endpoint of the Gemini API.
type geminiClient struct {
	genai *genai.Client
	model string
}

func newGeminiClient(cfg Config, defaultModel string) (*geminiClient, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     strings.TrimSpace(cfg.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &geminiClient{genai: client, model: model}, nil
}

func (c *geminiClient) Model() string {
	return c.model
}

func (c *geminiClient) Generate(ctx context.Context, req StructuredRequest, result any) (*Response, error) {
	schema, err := geminiSchema(req.Schema)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(req.MaxTokens),
		ResponseMIMEType: "application/json",
	}
	if schema != nil {
		config.ResponseJsonSchema = schema
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(req.SystemPrompt)}}
	}

	parts := append([]*genai.Part{genai.NewPartFromText(req.UserPrompt)}, inlineParts(req.Attachments)...)

	start := time.Now()
	resp, err := c.generateContent(ctx, parts, config)
	if err != nil {
		return nil, err
	}

	usage := usageOf(resp)
	slog.DebugContext(ctx, "llm structured generation completed",
		"model", c.model,
		"attachments", len(req.Attachments),
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens)

	text := strings.TrimSpace(firstCandidateText(resp))
	if text == "" {
		return nil, fmt.Errorf("no text in response")
	}
	if err := json.Unmarshal([]byte(text), result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &usage, nil
}

func (c *geminiClient) EditImage(ctx context.Context, req ImageEditRequest) ([]Part, error) {
	parts := append([]*genai.Part{genai.NewPartFromText(req.Instruction)}, inlineParts([]Attachment{req.Image})...)
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityText), string(genai.ModalityImage)},
	}

	start := time.Now()
	resp, err := c.generateContent(ctx, parts, config)
	if err != nil {
		return nil, err
	}

	var out []Part
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				out = append(out, Part{MimeType: part.InlineData.MIMEType, Data: part.InlineData.Data})
				continue
			}
			if part.Text != "" {
				out = append(out, Part{MimeType: "text/plain", Text: part.Text})
			}
		}
	}

	slog.DebugContext(ctx, "llm image edit completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"parts", len(out))

	return out, nil
}

func (c *geminiClient) generateContent(ctx context.Context, parts []*genai.Part, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("gemini status %d: %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("invoke gemini: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("gemini blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}
	return resp, nil
}

func inlineParts(attachments []Attachment) []*genai.Part {
	parts := make([]*genai.Part, 0, len(attachments))
	for _, a := range attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MimeType))
	}
	return parts
}

// firstCandidateText joins the text parts of the first candidate, skipping
// thought summaries.
func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

func usageOf(resp *genai.GenerateContentResponse) Response {
	if resp.UsageMetadata == nil {
		return Response{}
	}
	return Response{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
	}
}

// geminiSchema drops the draft identifiers the reflector emits; the endpoint
// rejects "$schema" and "$id" in responseJsonSchema.
func geminiSchema(schema any) (map[string]any, error) {
	if schema == nil {
		return nil, nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	delete(m, "$schema")
	delete(m, "$id")
	return m, nil
}
