package listing

import (
	"encoding/json"
	"fmt"
	"strings"

	"listingstudio.app/studio/common/llm"
	"listingstudio.app/studio/internal/model"
)

type ComposerConfig struct {
	Language string // Language of the generated text, e.g. "Czech"
	Currency string // Currency of the price estimate, e.g. "CZK"
}

// Request is the payload for one remote generation call.
type Request struct {
	Instruction        string
	Attachments        []llm.Attachment
	SkipsImageAnalysis bool
	Changes            model.ChangeSet
}

type Composer struct {
	cfg ComposerConfig
}

func NewComposer(cfg ComposerConfig) *Composer {
	if cfg.Language == "" {
		cfg.Language = "English"
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &Composer{cfg: cfg}
}

// SkipsImageAnalysis reports whether the text-only refinement path applies.
func SkipsImageAnalysis(prior *model.ListingEntry, changes model.ChangeSet) bool {
	return prior != nil && !changes.PhotosChanged && !changes.AddressChanged
}

// Compose builds the full-listing request. Photos are attached only on the
// full-analysis path.
func (c *Composer) Compose(current model.FormSnapshot, prior *model.ListingEntry) Request {
	var changes model.ChangeSet
	if prior != nil {
		changes = Detect(prior.Snapshot, current)
	}

	if SkipsImageAnalysis(prior, changes) {
		return Request{
			Instruction:        c.refinementInstruction(current, *prior, changes),
			SkipsImageAnalysis: true,
			Changes:            changes,
		}
	}

	return Request{
		Instruction: c.fullInstruction(current),
		Attachments: attachments(current),
		Changes:     changes,
	}
}

// ComposeDescription builds the description-only request using the same
// attachment rule as Compose.
func (c *Composer) ComposeDescription(current model.FormSnapshot, prior *model.ListingEntry) Request {
	var changes model.ChangeSet
	if prior != nil {
		changes = Detect(prior.Snapshot, current)
	}
	skip := SkipsImageAnalysis(prior, changes)

	var b strings.Builder
	if prior != nil {
		fmt.Fprintf(&b, "The listing titled %q currently has this description:\n%s\n\n", prior.Result.Title, prior.Result.Description)
		b.WriteString("Write a new, different description for the same property.\n\n")
	} else {
		b.WriteString("Write a description for a real-estate listing of this property.\n\n")
	}
	c.writeFacts(&b, current)
	b.WriteString("\n")
	fmt.Fprintf(&b, "The description must be detailed and persuasive, written in %s, and naturally work in the key features. ", c.cfg.Language)
	b.WriteString("Split it into several paragraphs separated by blank lines.\n")
	if !skip {
		b.WriteString("Use the attached photos to describe the interior and condition.\n")
	}

	req := Request{
		Instruction:        b.String(),
		SkipsImageAnalysis: skip,
		Changes:            changes,
	}
	if !skip {
		req.Attachments = attachments(current)
	}
	return req
}

func (c *Composer) fullInstruction(current model.FormSnapshot) string {
	var b strings.Builder
	b.WriteString("Create a professional real-estate listing from the facts below and the attached photos.\n\n")
	c.writeFacts(&b, current)
	b.WriteString("\nProduce the following fields:\n")
	fmt.Fprintf(&b, "1. title: a short, catchy listing headline in %s.\n", c.cfg.Language)
	fmt.Fprintf(&b, "2. description: a detailed, persuasive description of the property in %s. ", c.cfg.Language)
	b.WriteString("Naturally work in the key features. Split it into several paragraphs separated by blank lines.\n")
	fmt.Fprintf(&b, "3. estimatedPrice: an estimate of the market price in %s as a whole number without currency. ", c.cfg.Currency)
	b.WriteString("If the size is given, use it for a more precise estimate.\n")
	b.WriteString("4. location: the exact latitude and longitude of the address.\n")
	b.WriteString("5. nearbyPois: 5-7 interesting places near the address (e.g. park, school, shop, restaurant, public transport stop), each with name, type, lat and lng.\n")
	return b.String()
}

func (c *Composer) refinementInstruction(current model.FormSnapshot, prior model.ListingEntry, changes model.ChangeSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You previously created this listing for the property at %s:\n", current.Address)
	fmt.Fprintf(&b, "Title: %s\n", prior.Result.Title)
	fmt.Fprintf(&b, "Description:\n%s\n", prior.Result.Description)
	fmt.Fprintf(&b, "Estimated price: %d %s\n\n", prior.Result.EstimatedPrice, c.cfg.Currency)

	if len(changes.Deltas) == 0 {
		b.WriteString("The property facts have not changed since the previous listing.\n")
	} else {
		b.WriteString("The user changed the following property facts:\n")
		for _, d := range changes.Deltas {
			fmt.Fprintf(&b, "- %s changed from %q to %q\n", fieldLabel(d.Field), d.Old, d.New)
		}
	}

	b.WriteString("\nCurrent property facts:\n")
	c.writeFacts(&b, current)

	fmt.Fprintf(&b, "\nRevise title, description and estimatedPrice (in %s) so they reflect the current facts. ", c.cfg.Currency)
	fmt.Fprintf(&b, "Keep writing in %s and keep the description split into paragraphs.\n", c.cfg.Language)
	b.WriteString("Return location and nearbyPois UNCHANGED, copied verbatim from the previous listing:\n")
	b.WriteString(preservedJSON(prior.Result))
	b.WriteString("\n")
	return b.String()
}

func (c *Composer) writeFacts(b *strings.Builder, s model.FormSnapshot) {
	fmt.Fprintf(b, "- Address: %s\n", s.Address)
	fmt.Fprintf(b, "- Property type: %s\n", s.Category)
	if s.Layout != nil {
		fmt.Fprintf(b, "- Layout: %s\n", s.LayoutText())
	}
	if s.Size != nil {
		fmt.Fprintf(b, "- Size: %s m²\n", s.SizeText())
	}
	if s.Highlights != nil {
		fmt.Fprintf(b, "- Key features: %s\n", s.HighlightsText())
	}
}

func fieldLabel(f model.ChangeField) string {
	switch f {
	case model.ChangeFieldCategory:
		return "Property type"
	case model.ChangeFieldLayout:
		return "Layout"
	case model.ChangeFieldSize:
		return "Size (m²)"
	case model.ChangeFieldHighlights:
		return "Key features"
	default:
		return string(f)
	}
}

func preservedJSON(r model.ListingResult) string {
	preserved := struct {
		Location   model.Location          `json:"location"`
		NearbyPois []model.PointOfInterest `json:"nearbyPois"`
	}{r.Location, r.NearbyPois}
	if preserved.NearbyPois == nil {
		preserved.NearbyPois = []model.PointOfInterest{}
	}
	data, _ := json.Marshal(preserved)
	return string(data)
}

func attachments(s model.FormSnapshot) []llm.Attachment {
	out := make([]llm.Attachment, len(s.Photos))
	for i, p := range s.Photos {
		out[i] = llm.Attachment{MimeType: p.MimeType, Data: p.Data}
	}
	return out
}
