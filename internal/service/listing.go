package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"listingstudio.app/studio/common/logger"
	"listingstudio.app/studio/internal/listing"
	"listingstudio.app/studio/internal/model"
	"listingstudio.app/studio/internal/session"
)

type SubmitResult struct {
	Entry   model.ListingEntry
	Outcome listing.Outcome
}

type ListingService interface {
	CreateSession(ctx context.Context) *session.Session
	Submit(ctx context.Context, sessionID string, snapshot model.FormSnapshot) (*SubmitResult, error)
	RegenerateDescription(ctx context.Context, sessionID string, current *model.FormSnapshot) (*model.ListingEntry, error)
	Current(ctx context.Context, sessionID string) (*model.ListingEntry, error)
	Reset(ctx context.Context, sessionID string) error
}

type listingService struct {
	registry  *session.Registry
	generator *listing.Generator
}

func NewListingService(registry *session.Registry, generator *listing.Generator) ListingService {
	return &listingService{
		registry:  registry,
		generator: generator,
	}
}

func (s *listingService) CreateSession(ctx context.Context) *session.Session {
	sess := s.registry.Create()
	slog.InfoContext(ctx, "session created", "session_id", sess.ID)
	return sess
}

func (s *listingService) Submit(ctx context.Context, sessionID string, snapshot model.FormSnapshot) (*SubmitResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: logger.Ptr(sessionID),
		Component: "studio.service.listing",
	})

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	snapshot, err = Normalize(snapshot)
	if err != nil {
		slog.InfoContext(ctx, "submission rejected", "error", err)
		return nil, err
	}

	gen, ok := sess.TryBeginGeneration()
	if !ok {
		return nil, ErrGenerationInProgress
	}
	defer gen.Release()

	var prior *model.ListingEntry
	if entry, ok := sess.Cache.Get(); ok {
		prior = &entry
	}

	entry, outcome, err := s.generator.Generate(ctx, snapshot, prior)
	if err != nil {
		slog.ErrorContext(ctx, "listing generation failed", "error", err)
		return nil, fmt.Errorf("generating listing: %w", err)
	}

	if !gen.Commit(entry) {
		slog.InfoContext(ctx, "listing dropped, session was reset during generation")
		return nil, ErrSessionReset
	}
	slog.InfoContext(ctx, "listing generated",
		"skips_image_analysis", outcome.SkipsImageAnalysis,
		"pois", len(entry.Result.NearbyPois))

	return &SubmitResult{Entry: entry, Outcome: outcome}, nil
}

// RegenerateDescription replaces the cached description. current is the form
// as the user sees it now; nil means the cached snapshot.
func (s *listingService) RegenerateDescription(ctx context.Context, sessionID string, current *model.FormSnapshot) (*model.ListingEntry, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: logger.Ptr(sessionID),
		Component: "studio.service.listing",
	})

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	var form model.FormSnapshot
	if current != nil {
		form, err = Normalize(*current)
		if err != nil {
			return nil, err
		}
	}

	gen, ok := sess.TryBeginGeneration()
	if !ok {
		return nil, ErrGenerationInProgress
	}
	defer gen.Release()

	prior, ok := sess.Cache.Get()
	if !ok {
		return nil, ErrNoListing
	}
	if current == nil {
		form = prior.Snapshot
	}

	entry, err := s.generator.RegenerateDescription(ctx, form, prior)
	if err != nil {
		slog.ErrorContext(ctx, "description regeneration failed", "error", err)
		return nil, fmt.Errorf("regenerating description: %w", err)
	}

	if !gen.Commit(entry) {
		slog.InfoContext(ctx, "description dropped, session was reset during generation")
		return nil, ErrSessionReset
	}
	return &entry, nil
}

func (s *listingService) Current(ctx context.Context, sessionID string) (*model.ListingEntry, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	entry, ok := sess.Cache.Get()
	if !ok {
		return nil, ErrNoListing
	}
	return &entry, nil
}

func (s *listingService) Reset(ctx context.Context, sessionID string) error {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	sess.Reset()
	slog.InfoContext(ctx, "session reset", "session_id", sessionID)
	return nil
}
