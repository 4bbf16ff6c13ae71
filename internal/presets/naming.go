package presets

import (
	"fmt"
	"strings"

	"kontenai/internal/brand"
)

// copyName returns the first of "base (Copy)", "base (Copy 2)", ... for which
// taken reports false. The base is shortened when needed so the result stays
// within the name length limit.
func copyName(base string, taken func(string) bool) string {
	base = strings.TrimSpace(base)
	for n := 1; ; n++ {
		suffix := " (Copy)"
		if n > 1 {
			suffix = fmt.Sprintf(" (Copy %d)", n)
		}
		candidate := truncateRunes(base, brand.MaxNameLength-len([]rune(suffix))) + suffix
		if !taken(candidate) {
			return candidate
		}
	}
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if limit < 0 {
		limit = 0
	}
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit]))
}
