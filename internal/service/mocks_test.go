package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"listingstudio.app/studio/common/llm"
	"listingstudio.app/studio/internal/model"
)

// fakeTextModel stands in for the remote structured-generation model. It
// answers differently depending on whether photos were attached, and always
// invents a fresh location so that preservation is observable.
type fakeTextModel struct {
	mu         sync.Mutex
	calls      int
	failNext   error
	block      chan struct{}
	attachSeen []int
}

func (m *fakeTextModel) Generate(ctx context.Context, req llm.StructuredRequest, result any) (*llm.Response, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.attachSeen = append(m.attachSeen, len(req.Attachments))
	failure := m.failNext
	m.failNext = nil
	block := m.block
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	if failure != nil {
		return nil, failure
	}

	var body map[string]any
	if req.SchemaName == "description" {
		body = map[string]any{"description": fmt.Sprintf("Regenerated description %d.", call)}
	} else {
		body = map[string]any{
			"title":          fmt.Sprintf("Listing %d", call),
			"description":    fmt.Sprintf("Description %d.\n\nSecond paragraph.", call),
			"estimatedPrice": 4200000 + call,
			"location":       map[string]any{"lat": 50.0 + float64(call), "lng": 14.0 + float64(call)},
			"nearbyPois": []map[string]any{
				{"name": fmt.Sprintf("Park %d", call), "type": "park", "lat": 50.01, "lng": 14.01},
				{"name": fmt.Sprintf("School %d", call), "type": "school", "lat": 50.02, "lng": 14.02},
			},
		}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return nil, err
	}
	return &llm.Response{}, nil
}

func (m *fakeTextModel) Model() string { return "fake-text" }

func (m *fakeTextModel) attachmentsPerCall() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.attachSeen...)
}

type fakeImageModel struct {
	failFor string
}

func (m *fakeImageModel) EditImage(_ context.Context, req llm.ImageEditRequest) ([]llm.Part, error) {
	if string(req.Image.Data) == m.failFor {
		return []llm.Part{{MimeType: "text/plain", Text: "cannot stage"}}, nil
	}
	return []llm.Part{{MimeType: "image/png", Data: append([]byte("staged-"), req.Image.Data...)}}, nil
}

func (m *fakeImageModel) Model() string { return "fake-image" }

var baseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func photos(n int) []model.Photo {
	out := make([]model.Photo, n)
	for i := range out {
		name := fmt.Sprintf("photo-%d.jpg", i)
		out[i] = model.Photo{
			PhotoIdentity: model.PhotoIdentity{Name: name, Size: int64(1000 + i), LastModified: baseTime},
			MimeType:      "image/jpeg",
			Data:          []byte(name),
		}
	}
	return out
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
