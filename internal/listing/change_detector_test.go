package listing_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"listingstudio.app/studio/internal/listing"
	"listingstudio.app/studio/internal/model"
)

var _ = Describe("Detect", func() {
	var previous model.FormSnapshot

	BeforeEach(func() {
		previous = snapshot()
	})

	It("reports nothing for identical snapshots", func() {
		changes := listing.Detect(previous, snapshot())

		Expect(changes.PhotosChanged).To(BeFalse())
		Expect(changes.AddressChanged).To(BeFalse())
		Expect(changes.Deltas).To(BeEmpty())
	})

	It("ignores photo order", func() {
		current := snapshot()
		current.Photos[0], current.Photos[2] = current.Photos[2], current.Photos[0]

		Expect(listing.Detect(previous, current).PhotosChanged).To(BeFalse())
	})

	DescribeTable("detects photo set changes",
		func(mutate func(s *model.FormSnapshot)) {
			current := snapshot()
			mutate(&current)

			changes := listing.Detect(previous, current)

			Expect(changes.PhotosChanged).To(BeTrue())
			Expect(changes.AddressChanged).To(BeFalse())
		},
		Entry("photo added", func(s *model.FormSnapshot) {
			s.Photos = append(s.Photos, photo("d.jpg", 400))
		}),
		Entry("photo removed", func(s *model.FormSnapshot) {
			s.Photos = s.Photos[:2]
		}),
		Entry("photo replaced by same-named file of another size", func(s *model.FormSnapshot) {
			s.Photos[1].Size = 201
		}),
		Entry("photo re-saved", func(s *model.FormSnapshot) {
			s.Photos[1].LastModified = baseTime.Add(time.Minute)
		}),
	)

	It("detects address changes exactly", func() {
		current := snapshot()
		current.Address = "Vinohradská 12, Praha "

		changes := listing.Detect(previous, current)

		Expect(changes.AddressChanged).To(BeTrue())
		Expect(changes.PhotosChanged).To(BeFalse())
	})

	DescribeTable("records exactly one delta for a single changed field",
		func(mutate func(s *model.FormSnapshot), want model.FieldDelta) {
			current := snapshot()
			mutate(&current)

			changes := listing.Detect(previous, current)

			Expect(changes.PhotosChanged).To(BeFalse())
			Expect(changes.AddressChanged).To(BeFalse())
			Expect(changes.Deltas).To(ConsistOf(want))
		},
		Entry("highlights", func(s *model.FormSnapshot) {
			s.Highlights = strPtr("new kitchen")
		}, model.FieldDelta{Field: model.ChangeFieldHighlights, Old: "balcony", New: "new kitchen"}),
		Entry("size", func(s *model.FormSnapshot) {
			s.Size = floatPtr(70)
		}, model.FieldDelta{Field: model.ChangeFieldSize, Old: "54", New: "70"}),
		Entry("layout", func(s *model.FormSnapshot) {
			s.Layout = strPtr("3+1")
		}, model.FieldDelta{Field: model.ChangeFieldLayout, Old: "2+kk", New: "3+1"}),
	)

	It("records a delta for a changed category", func() {
		current := snapshot()
		current.Category = model.PropertyCategoryHouse

		changes := listing.Detect(previous, current)

		Expect(changes.Deltas).To(ConsistOf(model.FieldDelta{
			Field: model.ChangeFieldCategory, Old: "apartment", New: "house",
		}))
	})

	It("renders absent optional values as none", func() {
		current := snapshot()
		current.Layout = nil
		current.Highlights = strPtr("terrace")
		previous.Highlights = nil

		changes := listing.Detect(previous, current)

		Expect(changes.Deltas).To(ConsistOf(
			model.FieldDelta{Field: model.ChangeFieldLayout, Old: "2+kk", New: "none"},
			model.FieldDelta{Field: model.ChangeFieldHighlights, Old: "none", New: "terrace"},
		))
	})

	It("renders sizes without trailing zeros", func() {
		current := snapshot()
		current.Size = floatPtr(60.5)

		changes := listing.Detect(previous, current)

		delta, ok := changes.Delta(model.ChangeFieldSize)
		Expect(ok).To(BeTrue())
		Expect(delta).To(Equal(model.FieldDelta{
			Field: model.ChangeFieldSize, Old: "54", New: "60.5",
		}))
	})

	It("never records photos or address as field deltas", func() {
		current := snapshot()
		current.Address = "Jiná 1, Brno"
		current.Photos = current.Photos[:1]

		changes := listing.Detect(previous, current)

		Expect(changes.PhotosChanged).To(BeTrue())
		Expect(changes.AddressChanged).To(BeTrue())
		Expect(changes.Deltas).To(BeEmpty())
	})
})
