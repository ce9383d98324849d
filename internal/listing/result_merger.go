package listing

import "listingstudio.app/studio/internal/model"

// Merge enforces the preservation policy: on the text-only path location and
// POIs always come from the prior result, whatever the model returned.
func Merge(newResult model.ListingResult, prior *model.ListingResult, skipsImageAnalysis bool) model.ListingResult {
	if !skipsImageAnalysis || prior == nil {
		return newResult
	}
	preserved := prior.Clone()
	newResult.Location = preserved.Location
	newResult.NearbyPois = preserved.NearbyPois
	return newResult
}
