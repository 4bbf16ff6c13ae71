package brand

import (
	"strings"
	"unicode/utf8"
)

// MinSuggestionInputLength is the shortest pain point or solution that is
// worth sending for a suggestion.
const MinSuggestionInputLength = 15

// CanSuggestSolution reports whether d carries enough context to ask for a
// solution suggestion.
func CanSuggestSolution(d DNA) bool {
	return strings.TrimSpace(d.Niche) != "" &&
		strings.TrimSpace(d.TargetAudience) != "" &&
		utf8.RuneCountInString(strings.TrimSpace(d.PainPoints)) >= MinSuggestionInputLength
}

// CanSuggestValues reports whether d carries enough context to ask for a
// values suggestion.
func CanSuggestValues(d DNA) bool {
	return CanSuggestSolution(d) &&
		utf8.RuneCountInString(strings.TrimSpace(d.Solutions)) >= MinSuggestionInputLength
}

// MergeValues appends an accepted values suggestion to the current list.
func MergeValues(current, suggestion string) string {
	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" {
		return current
	}
	if strings.TrimSpace(current) == "" {
		return suggestion
	}
	separator := ", "
	if strings.HasSuffix(strings.TrimSpace(current), ",") {
		separator = " "
	}
	return current + separator + suggestion
}

// MergeSolutions appends an accepted solution suggestion as a new paragraph.
func MergeSolutions(current, suggestion string) string {
	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" {
		return current
	}
	if strings.TrimSpace(current) == "" {
		return suggestion
	}
	return current + "\n\n" + suggestion
}
