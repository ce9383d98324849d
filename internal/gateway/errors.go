package gateway

import "fmt"

// GenerationFailure is returned by the listing and description operations.
// No partial result ever accompanies it.
type GenerationFailure struct {
	Op     string
	Reason string
	Err    error
}

func (e *GenerationFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Err
}

// StagingFailure is returned by EnhanceImage. It concerns a single photo.
type StagingFailure struct {
	Reason string
	Err    error
}

func (e *StagingFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("enhance_image: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("enhance_image: %s", e.Reason)
}

func (e *StagingFailure) Unwrap() error {
	return e.Err
}
