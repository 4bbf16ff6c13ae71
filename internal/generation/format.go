package generation

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Format is a script output format.
type Format string

const (
	FormatThread   Format = "thread"
	FormatCarousel Format = "carousel"
	FormatVideo    Format = "video"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatThread, FormatCarousel, FormatVideo}

// MaxThreadPosts caps the number of posts kept from a thread script.
const MaxThreadPosts = 5

// ParseFormat resolves a format tag case-insensitively.
func ParseFormat(value string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(Formats, f) {
		return f, nil
	}
	return "", fmt.Errorf("unknown script format %q (want thread, carousel or video)", value)
}

// Segmented reports whether f produces a multi-part body.
func (f Format) Segmented() bool {
	return f == FormatThread || f == FormatCarousel
}

// Label returns the display name for f.
func (f Format) Label() string {
	switch f {
	case FormatThread:
		return "Thread"
	case FormatCarousel:
		return "Carousel"
	case FormatVideo:
		return "Video"
	default:
		return string(f)
	}
}

// SegmentSeparator joins segments when a ScriptBody is rendered.
const SegmentSeparator = "\n\n"

type bodyKind uint8

const (
	kindNone bodyKind = iota
	kindSegmented
	kindMonolithic
)

// ScriptBody is a generated script: either Segmented or Monolithic.
type ScriptBody struct {
	kind     bodyKind
	segments []string
	text     string
}

// Segmented builds a multi-part body. Blank segments are dropped.
func Segmented(segments ...string) ScriptBody {
	kept := make([]string, 0, len(segments))
	for _, s := range segments {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return ScriptBody{kind: kindSegmented, segments: kept}
}

// Monolithic builds a single-block body.
func Monolithic(text string) ScriptBody {
	return ScriptBody{kind: kindMonolithic, text: strings.TrimSpace(text)}
}

// IsSegmented reports whether b holds an ordered list of segments.
func (b ScriptBody) IsSegmented() bool { return b.kind == kindSegmented }

// IsZero reports whether b carries no content.
func (b ScriptBody) IsZero() bool {
	return len(b.segments) == 0 && b.text == ""
}

// Segments returns the parts of b. A monolithic body is one segment.
func (b ScriptBody) Segments() []string {
	switch b.kind {
	case kindSegmented:
		return slices.Clone(b.segments)
	case kindMonolithic:
		if b.text == "" {
			return nil
		}
		return []string{b.text}
	default:
		return nil
	}
}

// Render returns b as display text.
func (b ScriptBody) Render() string {
	if b.kind == kindSegmented {
		return strings.Join(b.segments, SegmentSeparator)
	}
	return b.text
}

type scriptBodyJSON struct {
	Kind     string   `json:"kind"`
	Segments []string `json:"segments,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// MarshalJSON encodes b with an explicit kind tag.
func (b ScriptBody) MarshalJSON() ([]byte, error) {
	switch b.kind {
	case kindSegmented:
		return json.Marshal(scriptBodyJSON{Kind: "segmented", Segments: b.segments})
	case kindMonolithic:
		return json.Marshal(scriptBodyJSON{Kind: "monolithic", Text: b.text})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (b *ScriptBody) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = ScriptBody{}
		return nil
	}
	var raw scriptBodyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "segmented":
		*b = Segmented(raw.Segments...)
	case "monolithic":
		*b = Monolithic(raw.Text)
	default:
		return fmt.Errorf("unknown script body kind %q", raw.Kind)
	}
	return nil
}
