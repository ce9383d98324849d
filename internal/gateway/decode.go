package gateway

import (
	"errors"
	"fmt"

	"listingstudio.app/studio/internal/model"
)

// Wire types use pointers so that absent required fields can be told apart
// from zero values. A wrong primitive kind already fails json.Unmarshal.
type listingWire struct {
	Title          *string       `json:"title"`
	Description    *string       `json:"description"`
	EstimatedPrice *int64        `json:"estimatedPrice"`
	Location       *locationWire `json:"location"`
	NearbyPois     []poiWire     `json:"nearbyPois"`
}

type locationWire struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type poiWire struct {
	Name *string  `json:"name"`
	Type *string  `json:"type"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

type descriptionWire struct {
	Description *string `json:"description"`
}

// descriptionShape is the reflected shape for the description-only call.
type descriptionShape struct {
	Description string `json:"description"`
}

var errMissingField = errors.New("missing required field")

func (w listingWire) toResult() (model.ListingResult, error) {
	switch {
	case w.Title == nil:
		return model.ListingResult{}, fmt.Errorf("%w: title", errMissingField)
	case w.Description == nil:
		return model.ListingResult{}, fmt.Errorf("%w: description", errMissingField)
	case w.EstimatedPrice == nil:
		return model.ListingResult{}, fmt.Errorf("%w: estimatedPrice", errMissingField)
	case w.Location == nil:
		return model.ListingResult{}, fmt.Errorf("%w: location", errMissingField)
	case w.Location.Lat == nil:
		return model.ListingResult{}, fmt.Errorf("%w: location.lat", errMissingField)
	case w.Location.Lng == nil:
		return model.ListingResult{}, fmt.Errorf("%w: location.lng", errMissingField)
	case w.NearbyPois == nil:
		return model.ListingResult{}, fmt.Errorf("%w: nearbyPois", errMissingField)
	}
	if *w.EstimatedPrice < 0 {
		return model.ListingResult{}, fmt.Errorf("estimatedPrice must not be negative, got %d", *w.EstimatedPrice)
	}

	pois := make([]model.PointOfInterest, len(w.NearbyPois))
	for i, p := range w.NearbyPois {
		switch {
		case p.Name == nil:
			return model.ListingResult{}, fmt.Errorf("%w: nearbyPois[%d].name", errMissingField, i)
		case p.Type == nil:
			return model.ListingResult{}, fmt.Errorf("%w: nearbyPois[%d].type", errMissingField, i)
		case p.Lat == nil:
			return model.ListingResult{}, fmt.Errorf("%w: nearbyPois[%d].lat", errMissingField, i)
		case p.Lng == nil:
			return model.ListingResult{}, fmt.Errorf("%w: nearbyPois[%d].lng", errMissingField, i)
		}
		pois[i] = model.PointOfInterest{Name: *p.Name, Type: *p.Type, Lat: *p.Lat, Lng: *p.Lng}
	}

	return model.ListingResult{
		Title:          *w.Title,
		Description:    *w.Description,
		EstimatedPrice: *w.EstimatedPrice,
		Location:       model.Location{Lat: *w.Location.Lat, Lng: *w.Location.Lng},
		NearbyPois:     pois,
	}, nil
}
