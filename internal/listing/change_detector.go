package listing

import (
	"slices"
	"strings"

	"listingstudio.app/studio/internal/model"
)

const noneValue = "none"

// Detect classifies which facets of current differ from previous.
func Detect(previous, current model.FormSnapshot) model.ChangeSet {
	changes := model.ChangeSet{
		PhotosChanged:  !samePhotos(previous.PhotoIdentities(), current.PhotoIdentities()),
		AddressChanged: previous.Address != current.Address,
	}

	if previous.Category != current.Category {
		changes.Deltas = append(changes.Deltas, model.FieldDelta{
			Field: model.ChangeFieldCategory,
			Old:   orNone(string(previous.Category)),
			New:   orNone(string(current.Category)),
		})
	}

	compareOptional(&changes, model.ChangeFieldLayout, previous.Layout, current.Layout, previous.LayoutText(), current.LayoutText())
	compareOptional(&changes, model.ChangeFieldSize, previous.Size, current.Size, previous.SizeText(), current.SizeText())
	compareOptional(&changes, model.ChangeFieldHighlights, previous.Highlights, current.Highlights, previous.HighlightsText(), current.HighlightsText())

	return changes
}

func compareOptional[T comparable](changes *model.ChangeSet, field model.ChangeField, previous, current *T, oldText, newText string) {
	if equalPtr(previous, current) {
		return
	}
	changes.Deltas = append(changes.Deltas, model.FieldDelta{Field: field, Old: orNone(oldText), New: orNone(newText)})
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// samePhotos compares photo sets regardless of order.
func samePhotos(a, b []model.PhotoIdentity) bool {
	if len(a) != len(b) {
		return false
	}
	a = sortedByName(a)
	b = sortedByName(b)
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func sortedByName(ids []model.PhotoIdentity) []model.PhotoIdentity {
	out := slices.Clone(ids)
	slices.SortStableFunc(out, func(x, y model.PhotoIdentity) int {
		if c := strings.Compare(x.Name, y.Name); c != 0 {
			return c
		}
		if x.Size != y.Size {
			if x.Size < y.Size {
				return -1
			}
			return 1
		}
		return x.LastModified.Compare(y.LastModified)
	})
	return out
}

func orNone(s string) string {
	if s == "" {
		return noneValue
	}
	return s
}
