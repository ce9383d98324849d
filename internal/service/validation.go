package service

import (
	"fmt"
	"strings"

	"listingstudio.app/studio/internal/model"
)

const (
	MinPhotos = 3
	MaxPhotos = 8
)

// Normalize validates a submission and returns it with blank optional
// fields reduced to absent.
func Normalize(s model.FormSnapshot) (model.FormSnapshot, error) {
	var problems []string

	if n := len(s.Photos); n < MinPhotos || n > MaxPhotos {
		problems = append(problems, fmt.Sprintf("between %d and %d photos are required, got %d", MinPhotos, MaxPhotos, n))
	}
	if strings.TrimSpace(s.Address) == "" {
		problems = append(problems, "address is required")
	}
	if !s.Category.Valid() {
		problems = append(problems, fmt.Sprintf("unknown property category %q", s.Category))
	}
	if s.Size != nil && *s.Size <= 0 {
		problems = append(problems, "size must be a positive number")
	}
	for i, p := range s.Photos {
		if len(p.Data) == 0 {
			problems = append(problems, fmt.Sprintf("photo %d (%s) is empty", i, p.Name))
		}
	}

	if len(problems) > 0 {
		return model.FormSnapshot{}, &ValidationError{Problems: problems}
	}

	s.Layout = blankToNil(s.Layout)
	s.Highlights = blankToNil(s.Highlights)
	return s, nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
