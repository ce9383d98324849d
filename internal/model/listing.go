package model

import "slices"

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PointOfInterest struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// ListingResult is the generated listing.
type ListingResult struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	EstimatedPrice int64             `json:"estimatedPrice"`
	Location       Location          `json:"location"`
	NearbyPois     []PointOfInterest `json:"nearbyPois"`
}

// Clone returns a deep copy so callers can hand out results without sharing the POI slice.
func (r ListingResult) Clone() ListingResult {
	r.NearbyPois = slices.Clone(r.NearbyPois)
	return r
}

// ListingEntry pairs the submission with the result produced from it.
type ListingEntry struct {
	Snapshot FormSnapshot  `json:"snapshot"`
	Result   ListingResult `json:"result"`
}

type ChangeField string

const (
	ChangeFieldCategory   ChangeField = "category"
	ChangeFieldLayout     ChangeField = "layout"
	ChangeFieldSize       ChangeField = "size"
	ChangeFieldHighlights ChangeField = "highlights"
)

// FieldDelta records one changed text field. Absent values are rendered as "none".
type FieldDelta struct {
	Field ChangeField `json:"field"`
	Old   string      `json:"old"`
	New   string      `json:"new"`
}

// ChangeSet classifies what differs between two submissions.
type ChangeSet struct {
	Deltas         []FieldDelta `json:"deltas"`
	PhotosChanged  bool         `json:"photos_changed"`
	AddressChanged bool         `json:"address_changed"`
}

// Delta returns the delta for field, if that field changed.
func (c ChangeSet) Delta(field ChangeField) (FieldDelta, bool) {
	for _, d := range c.Deltas {
		if d.Field == field {
			return d, true
		}
	}
	return FieldDelta{}, false
}
