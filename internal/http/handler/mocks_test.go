package handler_test

import (
	"context"
	"time"

	"listingstudio.app/studio/internal/model"
	"listingstudio.app/studio/internal/service"
	"listingstudio.app/studio/internal/session"
	"listingstudio.app/studio/internal/staging"
)

type mockListingService struct {
	submitFn     func(ctx context.Context, sessionID string, snapshot model.FormSnapshot) (*service.SubmitResult, error)
	regenerateFn func(ctx context.Context, sessionID string, current *model.FormSnapshot) (*model.ListingEntry, error)
	currentFn    func(ctx context.Context, sessionID string) (*model.ListingEntry, error)
	resetFn      func(ctx context.Context, sessionID string) error
	lastSnapshot model.FormSnapshot
	createdIDs   int
}

func (m *mockListingService) CreateSession(_ context.Context) *session.Session {
	m.createdIDs++
	return &session.Session{ID: "42", CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *mockListingService) Submit(ctx context.Context, sessionID string, snapshot model.FormSnapshot) (*service.SubmitResult, error) {
	m.lastSnapshot = snapshot
	if m.submitFn != nil {
		return m.submitFn(ctx, sessionID, snapshot)
	}
	return nil, nil
}

func (m *mockListingService) RegenerateDescription(ctx context.Context, sessionID string, current *model.FormSnapshot) (*model.ListingEntry, error) {
	if m.regenerateFn != nil {
		return m.regenerateFn(ctx, sessionID, current)
	}
	return nil, nil
}

func (m *mockListingService) Current(ctx context.Context, sessionID string) (*model.ListingEntry, error) {
	if m.currentFn != nil {
		return m.currentFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockListingService) Reset(ctx context.Context, sessionID string) error {
	if m.resetFn != nil {
		return m.resetFn(ctx, sessionID)
	}
	return nil
}

type mockStagingService struct {
	stageFn  func(ctx context.Context, sessionID string, indexes []int) (*staging.Run, error)
	statusFn func(ctx context.Context, sessionID string) (*staging.Run, error)
}

func (m *mockStagingService) Stage(ctx context.Context, sessionID string, indexes []int) (*staging.Run, error) {
	if m.stageFn != nil {
		return m.stageFn(ctx, sessionID, indexes)
	}
	return nil, nil
}

func (m *mockStagingService) Status(ctx context.Context, sessionID string) (*staging.Run, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, sessionID)
	}
	return nil, nil
}

type mockEnhancer struct {
	enhanceFn func(ctx context.Context, data []byte, mimeType string) (model.EnhancedPhoto, error)
}

func (m *mockEnhancer) EnhanceImage(ctx context.Context, data []byte, mimeType string) (model.EnhancedPhoto, error) {
	if m.enhanceFn != nil {
		return m.enhanceFn(ctx, data, mimeType)
	}
	return model.EnhancedPhoto{MimeType: "image/png", Data: append([]byte("staged:"), data...)}, nil
}

func sampleEntry() model.ListingEntry {
	return model.ListingEntry{
		Snapshot: model.FormSnapshot{
			Photos: []model.Photo{
				{PhotoIdentity: model.PhotoIdentity{Name: "a.jpg", Size: 3}, MimeType: "image/jpeg", Data: []byte("aaa")},
				{PhotoIdentity: model.PhotoIdentity{Name: "b.jpg", Size: 3}, MimeType: "image/jpeg", Data: []byte("bbb")},
				{PhotoIdentity: model.PhotoIdentity{Name: "c.jpg", Size: 3}, MimeType: "image/jpeg", Data: []byte("ccc")},
			},
			Address:  "Hlavní 1",
			Category: model.PropertyCategoryApartment,
		},
		Result: model.ListingResult{
			Title:          "Byt 2+kk",
			Description:    "Popis.",
			EstimatedPrice: 5000000,
			Location:       model.Location{Lat: 50.1, Lng: 14.4},
			NearbyPois:     []model.PointOfInterest{{Name: "Park", Type: "park", Lat: 50.11, Lng: 14.41}},
		},
	}
}
