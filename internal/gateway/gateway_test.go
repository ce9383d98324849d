package gateway_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"listingstudio.app/studio/common/llm"
	"listingstudio.app/studio/internal/gateway"
	"listingstudio.app/studio/internal/model"
)

const validListing = `{
	"title": "Světlý byt 2+kk u parku",
	"description": "První odstavec.\n\nDruhý odstavec.",
	"estimatedPrice": 5400000,
	"location": {"lat": 50.0755, "lng": 14.4378},
	"nearbyPois": [
		{"name": "Riegrovy sady", "type": "park", "lat": 50.0789, "lng": 14.4456},
		{"name": "Jiřího z Poděbrad", "type": "metro", "lat": 50.0778, "lng": 14.4497}
	]
}`

var _ = Describe("Gateway", func() {
	var (
		ctx    context.Context
		text   *mockStructuredClient
		images *mockImageClient
		gw     *gateway.Gateway
	)

	BeforeEach(func() {
		ctx = context.Background()
		text = &mockStructuredClient{}
		images = &mockImageClient{}
		gw = gateway.New(text, images, gateway.Config{
			MaxTokens:          2048,
			Temperature:        0.5,
			Timeout:            time.Second,
			ImageTimeout:       time.Second,
			StagingInstruction: "stage this room",
		})
	})

	Describe("GenerateFullListing", func() {
		It("returns a fully populated listing", func() {
			text.body = validListing
			attachments := []llm.Attachment{{MimeType: "image/jpeg", Data: []byte{1, 2, 3}}}

			result, err := gw.GenerateFullListing(ctx, "describe it", attachments)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Title).To(Equal("Světlý byt 2+kk u parku"))
			Expect(result.EstimatedPrice).To(Equal(int64(5400000)))
			Expect(result.Location).To(Equal(model.Location{Lat: 50.0755, Lng: 14.4378}))
			Expect(result.NearbyPois).To(HaveLen(2))
			Expect(result.NearbyPois[1].Type).To(Equal("metro"))
		})

		It("forwards instruction, attachments and sampling settings", func() {
			text.body = validListing
			attachments := []llm.Attachment{{MimeType: "image/png", Data: []byte{9}}}

			_, err := gw.GenerateFullListing(ctx, "the instruction", attachments)

			Expect(err).NotTo(HaveOccurred())
			Expect(text.requests).To(HaveLen(1))
			req := text.requests[0]
			Expect(req.UserPrompt).To(Equal("the instruction"))
			Expect(req.Attachments).To(Equal(attachments))
			Expect(req.SystemPrompt).NotTo(BeEmpty())
			Expect(req.Schema).NotTo(BeNil())
			Expect(req.MaxTokens).To(Equal(2048))
			Expect(req.Temperature).NotTo(BeNil())
			Expect(*req.Temperature).To(Equal(0.5))
		})

		It("accepts an empty nearbyPois list", func() {
			text.body = `{"title":"t","description":"d","estimatedPrice":1,"location":{"lat":1,"lng":2},"nearbyPois":[]}`

			result, err := gw.GenerateFullListing(ctx, "x", nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.NearbyPois).To(BeEmpty())
		})

		DescribeTable("rejects malformed responses",
			func(body string) {
				text.body = body

				_, err := gw.GenerateFullListing(ctx, "x", nil)

				var failure *gateway.GenerationFailure
				Expect(errors.As(err, &failure)).To(BeTrue())
				Expect(failure.Op).To(Equal(gateway.OpGenerateFullListing))
			},
			Entry("missing title",
				`{"description":"d","estimatedPrice":1,"location":{"lat":1,"lng":2},"nearbyPois":[]}`),
			Entry("missing location",
				`{"title":"t","description":"d","estimatedPrice":1,"nearbyPois":[]}`),
			Entry("missing longitude",
				`{"title":"t","description":"d","estimatedPrice":1,"location":{"lat":1},"nearbyPois":[]}`),
			Entry("missing nearbyPois",
				`{"title":"t","description":"d","estimatedPrice":1,"location":{"lat":1,"lng":2}}`),
			Entry("poi without type",
				`{"title":"t","description":"d","estimatedPrice":1,"location":{"lat":1,"lng":2},"nearbyPois":[{"name":"n","lat":1,"lng":2}]}`),
			Entry("price as string",
				`{"title":"t","description":"d","estimatedPrice":"1000","location":{"lat":1,"lng":2},"nearbyPois":[]}`),
			Entry("fractional price",
				`{"title":"t","description":"d","estimatedPrice":10.5,"location":{"lat":1,"lng":2},"nearbyPois":[]}`),
			Entry("negative price",
				`{"title":"t","description":"d","estimatedPrice":-5,"location":{"lat":1,"lng":2},"nearbyPois":[]}`),
			Entry("not JSON", `Sorry, I cannot help with that.`),
		)

		It("wraps transport errors", func() {
			cause := errors.New("connection reset")
			text.err = cause

			_, err := gw.GenerateFullListing(ctx, "x", nil)

			var failure *gateway.GenerationFailure
			Expect(errors.As(err, &failure)).To(BeTrue())
			Expect(failure.Reason).To(Equal("remote call failed"))
			Expect(errors.Is(err, cause)).To(BeTrue())
		})

		It("reports a timeout when the call exceeds its deadline", func() {
			gw = gateway.New(text, images, gateway.Config{Timeout: 10 * time.Millisecond})
			text.generateFn = func(ctx context.Context, _ llm.StructuredRequest) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}

			_, err := gw.GenerateFullListing(ctx, "x", nil)

			var failure *gateway.GenerationFailure
			Expect(errors.As(err, &failure)).To(BeTrue())
			Expect(failure.Reason).To(Equal("timed out"))
		})
	})

	Describe("RegenerateDescription", func() {
		It("returns only the description", func() {
			text.body = `{"description":"Nový popis.\n\nDalší odstavec."}`

			description, err := gw.RegenerateDescription(ctx, "again", nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(description).To(Equal("Nový popis.\n\nDalší odstavec."))
		})

		It("fails when the description is missing", func() {
			text.body = `{}`

			_, err := gw.RegenerateDescription(ctx, "again", nil)

			var failure *gateway.GenerationFailure
			Expect(errors.As(err, &failure)).To(BeTrue())
			Expect(failure.Op).To(Equal(gateway.OpRegenerateDescription))
		})
	})

	Describe("EnhanceImage", func() {
		It("returns the first image part", func() {
			images.editFn = func(_ context.Context, _ llm.ImageEditRequest) ([]llm.Part, error) {
				return []llm.Part{
					{MimeType: "text/plain", Text: "Here is your staged room"},
					{MimeType: "image/png", Data: []byte("first")},
					{MimeType: "image/png", Data: []byte("second")},
				}, nil
			}

			photo, err := gw.EnhanceImage(ctx, []byte("raw"), "image/jpeg")

			Expect(err).NotTo(HaveOccurred())
			Expect(photo.MimeType).To(Equal("image/png"))
			Expect(photo.Data).To(Equal([]byte("first")))
			Expect(images.requests).To(HaveLen(1))
			Expect(images.requests[0].Instruction).To(Equal("stage this room"))
			Expect(images.requests[0].Image).To(Equal(llm.Attachment{MimeType: "image/jpeg", Data: []byte("raw")}))
		})

		It("fails when the response holds no image", func() {
			images.editFn = func(_ context.Context, _ llm.ImageEditRequest) ([]llm.Part, error) {
				return []llm.Part{{MimeType: "text/plain", Text: "I can't edit this image"}}, nil
			}

			_, err := gw.EnhanceImage(ctx, []byte("raw"), "image/jpeg")

			var failure *gateway.StagingFailure
			Expect(errors.As(err, &failure)).To(BeTrue())
			Expect(failure.Reason).To(Equal("no image in response"))
		})

		It("wraps transport errors", func() {
			images.editFn = func(_ context.Context, _ llm.ImageEditRequest) ([]llm.Part, error) {
				return nil, errors.New("quota exceeded")
			}

			_, err := gw.EnhanceImage(ctx, []byte("raw"), "image/jpeg")

			var failure *gateway.StagingFailure
			Expect(errors.As(err, &failure)).To(BeTrue())
			Expect(failure.Err).To(MatchError("quota exceeded"))
		})
	})
})
