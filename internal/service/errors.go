package service

import (
	"errors"
	"strings"
)

var (
	ErrNoListing            = errors.New("no listing has been generated for this session")
	ErrGenerationInProgress = errors.New("a listing generation is already running for this session")
	ErrInvalidSelection     = errors.New("photo selection does not match the current listing")
	ErrNoStagingRun         = errors.New("no staging run for this session")
	ErrSessionReset         = errors.New("session was reset while the generation was running")
)

// ValidationError reports every problem with a submission at once.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid submission: " + strings.Join(e.Problems, "; ")
}
