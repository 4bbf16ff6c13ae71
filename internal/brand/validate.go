package brand

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

const (
	// MinDescriptionLength is the minimum rune count for descriptive fields.
	MinDescriptionLength = 10
	// MinNicheLength is the minimum rune count for the niche field.
	MinNicheLength = 3
	// MinNameLength and MaxNameLength bound preset display names.
	MinNameLength = 3
	MaxNameLength = 50
)

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("invalid brand configuration")

// FieldError describes one failed predicate.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks d against the current rules. It returns nil or a
// *ValidationError listing every failing field.
func Validate(d DNA) error {
	verr := &ValidationError{}

	if utf8.RuneCountInString(strings.TrimSpace(d.Niche)) < MinNicheLength {
		verr.add("niche", "must be at least %d characters", MinNicheLength)
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"targetAudience", d.TargetAudience},
		{"painPoints", d.PainPoints},
		{"solutions", d.Solutions},
		{"values", d.Values},
	} {
		if utf8.RuneCountInString(strings.TrimSpace(field.value)) < MinDescriptionLength {
			verr.add(field.name, "must be at least %d characters", MinDescriptionLength)
		}
	}

	if len(d.ContentStyle) == 0 {
		verr.add("contentStyle", "select at least one content style")
	}
	for _, s := range d.ContentStyle {
		if !s.Valid() {
			verr.add("contentStyle", "unknown value %q", string(s))
		}
	}
	for _, t := range d.ContentTone {
		if !t.Valid() {
			verr.add("contentTone", "unknown value %q", string(t))
		}
	}
	if len(d.Platforms) == 0 {
		verr.add("platforms", "select at least one platform")
	}
	for _, p := range d.Platforms {
		if !p.Valid() {
			verr.add("platforms", "unknown value %q", string(p))
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// NormalizeName trims a preset display name and enforces its length bounds.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n < MinNameLength:
		return "", &ValidationError{Fields: []FieldError{{Field: "name", Message: fmt.Sprintf("must be at least %d characters", MinNameLength)}}}
	case n > MaxNameLength:
		return "", &ValidationError{Fields: []FieldError{{Field: "name", Message: fmt.Sprintf("must be at most %d characters", MaxNameLength)}}}
	}
	return trimmed, nil
}

// NameKey returns the identity key used to compare preset names.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
