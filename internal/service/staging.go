package service

import (
	"context"
	"fmt"
	"log/slog"

	"listingstudio.app/studio/common/logger"
	"listingstudio.app/studio/internal/session"
	"listingstudio.app/studio/internal/staging"
)

type StagingService interface {
	Stage(ctx context.Context, sessionID string, indexes []int) (*staging.Run, error)
	Status(ctx context.Context, sessionID string) (*staging.Run, error)
}

type stagingService struct {
	registry     *session.Registry
	orchestrator *staging.Orchestrator
}

func NewStagingService(registry *session.Registry, orchestrator *staging.Orchestrator) StagingService {
	return &stagingService{
		registry:     registry,
		orchestrator: orchestrator,
	}
}

// Stage resolves indexes against the photos of the current listing and
// replaces the session's previous run.
func (s *stagingService) Stage(ctx context.Context, sessionID string, indexes []int) (*staging.Run, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: logger.Ptr(sessionID),
		Component: "studio.service.staging",
	})

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	entry, ok := sess.Cache.Get()
	if !ok {
		return nil, ErrNoListing
	}

	photos := entry.Snapshot.Photos
	seen := make(map[int]bool, len(indexes))
	sources := make([]staging.Source, 0, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= len(photos) {
			return nil, fmt.Errorf("%w: index %d out of range [0, %d)", ErrInvalidSelection, idx, len(photos))
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		sources = append(sources, staging.Source{Index: idx, Photo: photos[idx]})
	}

	run, err := s.orchestrator.Stage(ctx, sessionID, sources)
	if err != nil {
		return nil, err
	}

	sess.SetRun(run)
	slog.InfoContext(ctx, "staging started", "run_id", run.ID, "photos", len(sources))
	return run, nil
}

func (s *stagingService) Status(ctx context.Context, sessionID string) (*staging.Run, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	run := sess.Run()
	if run == nil {
		return nil, ErrNoStagingRun
	}
	return run, nil
}
