package service_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"listingstudio.app/studio/internal/model"
	"listingstudio.app/studio/internal/service"
)

var _ = Describe("Normalize", func() {
	valid := func() model.FormSnapshot {
		return model.FormSnapshot{
			Photos:   photos(3),
			Address:  "Hlavní 1",
			Category: model.PropertyCategoryHouse,
		}
	}

	It("accepts a minimal submission", func() {
		s, err := service.Normalize(valid())

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Address).To(Equal("Hlavní 1"))
	})

	It("reduces blank optional text to absent", func() {
		in := valid()
		in.Layout = strPtr("   ")
		in.Highlights = strPtr("")

		s, err := service.Normalize(in)

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Layout).To(BeNil())
		Expect(s.Highlights).To(BeNil())
	})

	DescribeTable("rejects invalid submissions",
		func(mutate func(s *model.FormSnapshot), problem string) {
			in := valid()
			mutate(&in)

			_, err := service.Normalize(in)

			var verr *service.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(verr.Error()).To(ContainSubstring(problem))
		},
		Entry("too few photos", func(s *model.FormSnapshot) { s.Photos = photos(2) }, "between 3 and 8 photos"),
		Entry("too many photos", func(s *model.FormSnapshot) { s.Photos = photos(9) }, "got 9"),
		Entry("blank address", func(s *model.FormSnapshot) { s.Address = "  " }, "address is required"),
		Entry("unknown category", func(s *model.FormSnapshot) { s.Category = "castle" }, `unknown property category "castle"`),
		Entry("zero size", func(s *model.FormSnapshot) { s.Size = floatPtr(0) }, "size must be a positive number"),
		Entry("empty photo", func(s *model.FormSnapshot) { s.Photos[1].Data = nil }, "photo 1 (photo-1.jpg) is empty"),
	)

	It("reports every problem at once", func() {
		_, err := service.Normalize(model.FormSnapshot{})

		var verr *service.ValidationError
		Expect(errors.As(err, &verr)).To(BeTrue())
		Expect(verr.Problems).To(HaveLen(3))
	})
})
