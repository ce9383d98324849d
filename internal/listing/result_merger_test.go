package listing_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"listingstudio.app/studio/internal/listing"
	"listingstudio.app/studio/internal/model"
)

var _ = Describe("Merge", func() {
	var fresh model.ListingResult

	BeforeEach(func() {
		fresh = model.ListingResult{
			Title:          "Nový titulek",
			Description:    "Nový popis.",
			EstimatedPrice: 7000000,
			Location:       model.Location{Lat: 1, Lng: 2},
			NearbyPois:     []model.PointOfInterest{{Name: "Hallucinated", Type: "bar", Lat: 1, Lng: 2}},
		}
	})

	It("keeps the prior location and POIs on the text-only path", func() {
		prior := priorEntry().Result

		merged := listing.Merge(fresh, &prior, true)

		Expect(merged.Title).To(Equal("Nový titulek"))
		Expect(merged.Description).To(Equal("Nový popis."))
		Expect(merged.EstimatedPrice).To(Equal(int64(7000000)))
		Expect(merged.Location).To(Equal(prior.Location))
		Expect(merged.NearbyPois).To(Equal(prior.NearbyPois))
	})

	It("does not share the POI slice with the prior result", func() {
		prior := priorEntry().Result

		merged := listing.Merge(fresh, &prior, true)
		merged.NearbyPois[0].Name = "mutated"

		Expect(prior.NearbyPois[0].Name).To(Equal("Riegrovy sady"))
	})

	It("returns the new result unchanged on the full path", func() {
		prior := priorEntry().Result

		Expect(listing.Merge(fresh, &prior, false)).To(Equal(fresh))
	})

	It("returns the new result when there is no prior", func() {
		Expect(listing.Merge(fresh, nil, true)).To(Equal(fresh))
	})
})
