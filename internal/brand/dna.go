package brand

import (
	"slices"
	"strings"
)

// DNA is the brand configuration used as generation input.
type DNA struct {
	Niche          string         `json:"niche"`
	TargetAudience string         `json:"targetAudience"`
	PainPoints     string         `json:"painPoints"`
	Solutions      string         `json:"solutions"`
	Values         string         `json:"values"`
	ContentStyle   []ContentStyle `json:"contentStyle"`
	ContentTone    []ContentTone  `json:"contentTone"`
	AdditionalInfo string         `json:"additionalInfo,omitempty"`
	Platforms      []Platform     `json:"platforms"`
}

// Clone returns a deep copy so callers never share tag slices.
func (d DNA) Clone() DNA {
	out := d
	out.ContentStyle = slices.Clone(d.ContentStyle)
	out.ContentTone = slices.Clone(d.ContentTone)
	out.Platforms = slices.Clone(d.Platforms)
	return out
}

// Normalize trims text fields and canonicalizes tag spelling. Tags that do
// not resolve are kept verbatim so Validate can report them.
func (d DNA) Normalize() DNA {
	out := d.Clone()
	out.Niche = strings.TrimSpace(out.Niche)
	out.TargetAudience = strings.TrimSpace(out.TargetAudience)
	out.PainPoints = strings.TrimSpace(out.PainPoints)
	out.Solutions = strings.TrimSpace(out.Solutions)
	out.Values = strings.TrimSpace(out.Values)
	out.AdditionalInfo = strings.TrimSpace(out.AdditionalInfo)
	out.ContentStyle = canonicalTags(out.ContentStyle, ContentStyles)
	out.ContentTone = canonicalTags(out.ContentTone, ContentTones)
	out.Platforms = canonicalTags(out.Platforms, Platforms)
	return out
}

// Sanitize drops tags outside the current universes and removes duplicates.
// It returns the cleaned record and the tags that were removed, formatted as
// "field:value".
func Sanitize(d DNA) (DNA, []string) {
	out := d.Normalize()
	var dropped []string
	out.ContentStyle, dropped = keepValid(out.ContentStyle, "contentStyle", dropped)
	out.ContentTone, dropped = keepValid(out.ContentTone, "contentTone", dropped)
	out.Platforms, dropped = keepValid(out.Platforms, "platforms", dropped)
	return out, dropped
}

type validTag interface {
	~string
	Valid() bool
}

func keepValid[T validTag](tags []T, field string, dropped []string) ([]T, []string) {
	if tags == nil {
		return nil, dropped
	}
	kept := make([]T, 0, len(tags))
	for _, tag := range tags {
		if !tag.Valid() {
			dropped = append(dropped, field+":"+string(tag))
			continue
		}
		kept = append(kept, tag)
	}
	return kept, dropped
}

func canonicalTags[T ~string](tags []T, universe []T) []T {
	if tags == nil {
		return nil
	}
	out := make([]T, 0, len(tags))
	for _, tag := range tags {
		if canonical, ok := lookup(universe, string(tag)); ok {
			tag = canonical
		} else {
			tag = T(strings.TrimSpace(string(tag)))
		}
		if slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}
