package model

import (
	"strconv"
	"time"
)

type PropertyCategory string

const (
	PropertyCategoryApartment PropertyCategory = "apartment"
	PropertyCategoryHouse     PropertyCategory = "house"
	PropertyCategoryLand      PropertyCategory = "land"
)

func (c PropertyCategory) Valid() bool {
	switch c {
	case PropertyCategoryApartment, PropertyCategoryHouse, PropertyCategoryLand:
		return true
	}
	return false
}

// PhotoIdentity is how photos are compared between submissions.
// Content is never hashed; name, size and modification time are enough.
type PhotoIdentity struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Equal reports whether both identities describe the same file.
func (p PhotoIdentity) Equal(other PhotoIdentity) bool {
	return p.Name == other.Name && p.Size == other.Size && p.LastModified.Equal(other.LastModified)
}

// Photo is a submitted photo with its raw bytes.
type Photo struct {
	PhotoIdentity
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// FormSnapshot is one user submission. It is never mutated after creation;
// the next submission replaces it.
type FormSnapshot struct {
	Photos     []Photo          `json:"photos"`
	Address    string           `json:"address"`
	Category   PropertyCategory `json:"category"`
	Layout     *string          `json:"layout,omitempty"`
	Size       *float64         `json:"size,omitempty"`
	Highlights *string          `json:"highlights,omitempty"`
}

// PhotoIdentities returns the identities in submission order.
func (s FormSnapshot) PhotoIdentities() []PhotoIdentity {
	ids := make([]PhotoIdentity, len(s.Photos))
	for i, p := range s.Photos {
		ids[i] = p.PhotoIdentity
	}
	return ids
}

// LayoutText returns the layout or "" when absent.
func (s FormSnapshot) LayoutText() string {
	if s.Layout == nil {
		return ""
	}
	return *s.Layout
}

// SizeText renders the size without trailing zeros, or "" when absent.
func (s FormSnapshot) SizeText() string {
	if s.Size == nil {
		return ""
	}
	return strconv.FormatFloat(*s.Size, 'f', -1, 64)
}

// HighlightsText returns the highlights or "" when absent.
func (s FormSnapshot) HighlightsText() string {
	if s.Highlights == nil {
		return ""
	}
	return *s.Highlights
}
