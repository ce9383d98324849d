package dto

import (
	"time"

	"listingstudio.app/studio/internal/listing"
	"listingstudio.app/studio/internal/model"
)

type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

type LocationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PointOfInterestResponse struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type PhotoResponse struct {
	Index        int       `json:"index"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	MimeType     string    `json:"mime_type"`
}

type FieldDeltaResponse struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

type ChangesResponse struct {
	PhotosChanged  bool                 `json:"photos_changed"`
	AddressChanged bool                 `json:"address_changed"`
	Fields         []FieldDeltaResponse `json:"fields"`
}

type ListingResponse struct {
	Title          string                    `json:"title"`
	Description    string                    `json:"description"`
	EstimatedPrice int64                     `json:"estimated_price"`
	Location       LocationResponse          `json:"location"`
	NearbyPois     []PointOfInterestResponse `json:"nearby_pois"`
	Address        string                    `json:"address"`
	Category       string                    `json:"category"`
	Photos         []PhotoResponse           `json:"photos"`

	// Set only in response to a submission.
	SkipsImageAnalysis *bool            `json:"skips_image_analysis,omitempty"`
	Changes            *ChangesResponse `json:"changes,omitempty"`
}

func ToListingResponse(entry model.ListingEntry) *ListingResponse {
	r := entry.Result
	resp := &ListingResponse{
		Title:          r.Title,
		Description:    r.Description,
		EstimatedPrice: r.EstimatedPrice,
		Location:       LocationResponse{Lat: r.Location.Lat, Lng: r.Location.Lng},
		NearbyPois:     make([]PointOfInterestResponse, len(r.NearbyPois)),
		Address:        entry.Snapshot.Address,
		Category:       string(entry.Snapshot.Category),
		Photos:         make([]PhotoResponse, len(entry.Snapshot.Photos)),
	}
	for i, p := range r.NearbyPois {
		resp.NearbyPois[i] = PointOfInterestResponse{Name: p.Name, Type: p.Type, Lat: p.Lat, Lng: p.Lng}
	}
	for i, p := range entry.Snapshot.Photos {
		resp.Photos[i] = PhotoResponse{
			Index:        i,
			Name:         p.Name,
			Size:         p.Size,
			LastModified: p.LastModified,
			MimeType:     p.MimeType,
		}
	}
	return resp
}

func ToSubmitResponse(entry model.ListingEntry, outcome listing.Outcome) *ListingResponse {
	resp := ToListingResponse(entry)
	skips := outcome.SkipsImageAnalysis
	resp.SkipsImageAnalysis = &skips

	changes := &ChangesResponse{
		PhotosChanged:  outcome.Changes.PhotosChanged,
		AddressChanged: outcome.Changes.AddressChanged,
		Fields:         make([]FieldDeltaResponse, len(outcome.Changes.Deltas)),
	}
	for i, d := range outcome.Changes.Deltas {
		changes.Fields[i] = FieldDeltaResponse{Field: string(d.Field), Old: d.Old, New: d.New}
	}
	resp.Changes = changes
	return resp
}
