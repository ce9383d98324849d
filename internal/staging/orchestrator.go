package staging

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"listingstudio.app/studio/common/id"
	"listingstudio.app/studio/common/logger"
	"listingstudio.app/studio/internal/model"
)

var ErrEmptySelection = errors.New("no photos selected for staging")

// Enhancer performs the remote enhancement of a single photo.
type Enhancer interface {
	EnhanceImage(ctx context.Context, data []byte, mimeType string) (model.EnhancedPhoto, error)
}

// Source is one photo selected for staging, keyed by its snapshot index.
type Source struct {
	Index int
	Photo model.Photo
}

type Config struct {
	// MaxConcurrency caps in-flight enhancement calls per run. 0 means unbounded.
	MaxConcurrency int
}

type Orchestrator struct {
	enhancer  Enhancer
	publisher StatusPublisher
	cfg       Config
}

func NewOrchestrator(enhancer Enhancer, publisher StatusPublisher, cfg Config) *Orchestrator {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Orchestrator{enhancer: enhancer, publisher: publisher, cfg: cfg}
}

// Stage starts one enhancement per source and returns immediately. Tasks run
// on a context detached from ctx's cancellation, so a finished request or a
// failing sibling never aborts them.
func (o *Orchestrator) Stage(ctx context.Context, sessionID string, sources []Source) (*Run, error) {
	if len(sources) == 0 {
		return nil, ErrEmptySelection
	}

	run := newRun(id.New(), sessionID, sources)
	ctx = logger.WithLogFields(context.WithoutCancel(ctx), logger.LogFields{
		SessionID: logger.Ptr(sessionID),
		RunID:     logger.Ptr(run.ID),
		Component: "studio.staging.orchestrator",
	})

	for _, idx := range run.order {
		o.emit(ctx, run, idx, func(t *model.StagingTask) {})
	}
	for _, idx := range run.order {
		o.emit(ctx, run, idx, func(t *model.StagingTask) { t.State = model.TaskStateInProgress })
	}

	slog.InfoContext(ctx, "staging run started",
		"tasks", len(sources),
		"max_concurrency", o.cfg.MaxConcurrency)

	go o.execute(ctx, run, sources)
	return run, nil
}

func (o *Orchestrator) execute(ctx context.Context, run *Run, sources []Source) {
	var g errgroup.Group
	if o.cfg.MaxConcurrency > 0 {
		g.SetLimit(o.cfg.MaxConcurrency)
	}

	for _, src := range sources {
		g.Go(func() error {
			o.enhance(ctx, run, src)
			return nil
		})
	}
	_ = g.Wait()

	run.finish()
	slog.InfoContext(ctx, "staging run finished", "any_failed", run.AnyFailed())
}

func (o *Orchestrator) enhance(ctx context.Context, run *Run, src Source) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{PhotoIndex: logger.Ptr(src.Index)})

	enhanced, err := o.enhancer.EnhanceImage(ctx, src.Photo.Data, src.Photo.MimeType)
	if err != nil {
		slog.WarnContext(ctx, "photo enhancement failed", "photo", src.Photo.Name, "error", err)
		o.emit(ctx, run, src.Index, func(t *model.StagingTask) {
			t.State = model.TaskStateFailed
			t.Error = err.Error()
		})
		return
	}

	o.emit(ctx, run, src.Index, func(t *model.StagingTask) {
		t.State = model.TaskStateSucceeded
		t.Enhanced = &enhanced
	})
}

func (o *Orchestrator) emit(ctx context.Context, run *Run, index int, fn func(t *model.StagingTask)) {
	task, ok := run.transition(index, fn)
	if !ok {
		return
	}
	if err := o.publisher.Publish(ctx, run.SessionID, run.ID, task); err != nil {
		slog.WarnContext(ctx, "failed to publish staging status", "index", index, "error", err)
	}
}
