package imaging

import (
	"fmt"

	"github.com/google/uuid"
)

// ImageSet is the ordered collection of previews attached to a draft.
// Order matters: the first entry is the cover image.
type ImageSet struct {
	Previews []Preview `json:"previews"`
}

// Append adds previews to the end of the set, keeping existing order.
func (s *ImageSet) Append(previews []Preview) {
	s.Previews = append(s.Previews, previews...)
}

// Replace discards the current set in favor of the given previews.
func (s *ImageSet) Replace(previews []Preview) {
	s.Previews = append([]Preview(nil), previews...)
}

// RemoveAt drops the preview at the given index. Out-of-range indexes are
// ignored.
func (s *ImageSet) RemoveAt(idx int) {
	if idx < 0 || idx >= len(s.Previews) {
		return
	}
	s.Previews = append(s.Previews[:idx], s.Previews[idx+1:]...)
}

// Sources returns the data URIs in display order, ready to submit as the
// entity's images field.
func (s *ImageSet) Sources() []string {
	srcs := make([]string, len(s.Previews))
	for i, p := range s.Previews {
		srcs[i] = p.Src
	}
	return srcs
}

// FromSources rebuilds a set from stored data URIs, used when editing an
// existing entity whose images came back from the backend. The original
// filenames are gone by then, so previews get positional names.
func FromSources(srcs []string) ImageSet {
	previews := make([]Preview, len(srcs))
	for i, src := range srcs {
		previews[i] = Preview{
			ID:   uuid.New().String(),
			Name: fmt.Sprintf("Image %d", i+1),
			Src:  src,
		}
	}
	return ImageSet{Previews: previews}
}

// Len reports how many previews the set holds.
func (s *ImageSet) Len() int {
	return len(s.Previews)
}
