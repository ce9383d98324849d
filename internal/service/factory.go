package service

import (
	"listingstudio.app/studio/internal/listing"
	"listingstudio.app/studio/internal/session"
	"listingstudio.app/studio/internal/staging"
)

type Services struct {
	registry     *session.Registry
	generator    *listing.Generator
	orchestrator *staging.Orchestrator
}

func NewServices(registry *session.Registry, generator *listing.Generator, orchestrator *staging.Orchestrator) *Services {
	return &Services{
		registry:     registry,
		generator:    generator,
		orchestrator: orchestrator,
	}
}

func (s *Services) Listings() ListingService {
	return NewListingService(s.registry, s.generator)
}

func (s *Services) Staging() StagingService {
	return NewStagingService(s.registry, s.orchestrator)
}
