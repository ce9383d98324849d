package listing

import (
	"context"
	"log/slog"

	"listingstudio.app/studio/common/llm"
	"listingstudio.app/studio/common/logger"
	"listingstudio.app/studio/internal/model"
)

// ListingGateway is the part of the remote generation service the generator needs.
type ListingGateway interface {
	GenerateFullListing(ctx context.Context, instruction string, attachments []llm.Attachment) (model.ListingResult, error)
	RegenerateDescription(ctx context.Context, instruction string, attachments []llm.Attachment) (string, error)
}

// Outcome describes which path a generation took.
type Outcome struct {
	SkipsImageAnalysis bool
	Changes            model.ChangeSet
}

// Generator runs detect, compose, call and merge over explicitly passed state.
// It keeps no state of its own; callers own the prior entry.
type Generator struct {
	composer *Composer
	gateway  ListingGateway
}

func NewGenerator(composer *Composer, gateway ListingGateway) *Generator {
	return &Generator{composer: composer, gateway: gateway}
}

// Generate produces the entry for current. On error no entry is returned and
// the caller's prior entry stays authoritative.
func (g *Generator) Generate(ctx context.Context, current model.FormSnapshot, prior *model.ListingEntry) (model.ListingEntry, Outcome, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "studio.listing.generator"})

	req := g.composer.Compose(current, prior)
	outcome := Outcome{SkipsImageAnalysis: req.SkipsImageAnalysis, Changes: req.Changes}

	slog.InfoContext(ctx, "generating listing",
		"has_prior", prior != nil,
		"skips_image_analysis", req.SkipsImageAnalysis,
		"photos_changed", req.Changes.PhotosChanged,
		"address_changed", req.Changes.AddressChanged,
		"deltas", len(req.Changes.Deltas),
		"attachments", len(req.Attachments))

	result, err := g.gateway.GenerateFullListing(ctx, req.Instruction, req.Attachments)
	if err != nil {
		return model.ListingEntry{}, outcome, err
	}

	var priorResult *model.ListingResult
	if prior != nil {
		priorResult = &prior.Result
	}
	result = Merge(result, priorResult, req.SkipsImageAnalysis)

	return model.ListingEntry{Snapshot: current, Result: result}, outcome, nil
}

// RegenerateDescription returns prior with only its description replaced.
// Photos are attached when current differs from the prior snapshot in photos
// or address. The entry keeps the snapshot of the last full generation.
func (g *Generator) RegenerateDescription(ctx context.Context, current model.FormSnapshot, prior model.ListingEntry) (model.ListingEntry, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "studio.listing.generator"})

	req := g.composer.ComposeDescription(current, &prior)
	slog.InfoContext(ctx, "regenerating description",
		"skips_image_analysis", req.SkipsImageAnalysis,
		"attachments", len(req.Attachments))

	description, err := g.gateway.RegenerateDescription(ctx, req.Instruction, req.Attachments)
	if err != nil {
		return model.ListingEntry{}, err
	}

	updated := model.ListingEntry{Snapshot: prior.Snapshot, Result: prior.Result.Clone()}
	updated.Result.Description = description
	return updated, nil
}
