package brand

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Platform is a target social platform tag.
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformThreads   Platform = "Threads"
	PlatformFacebook  Platform = "Facebook"
	PlatformTikTok    Platform = "TikTok"
	PlatformYoutube   Platform = "Youtube"
	PlatformX         Platform = "X"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{
	PlatformInstagram,
	PlatformThreads,
	PlatformFacebook,
	PlatformTikTok,
	PlatformYoutube,
	PlatformX,
}

// ContentStyle describes the kind of content a brand publishes.
type ContentStyle string

const (
	StyleEducational   ContentStyle = "educational"
	StyleEntertaining  ContentStyle = "entertaining"
	StyleInspirational ContentStyle = "inspirational"
	StylePromotional   ContentStyle = "promotional"
	StyleStorytelling  ContentStyle = "storytelling"
	StyleInformative   ContentStyle = "informative"
)

// ContentStyles lists every supported content style.
var ContentStyles = []ContentStyle{
	StyleEducational,
	StyleEntertaining,
	StyleInspirational,
	StylePromotional,
	StyleStorytelling,
	StyleInformative,
}

// ContentTone describes the voice a brand speaks in.
type ContentTone string

const (
	ToneFormal        ContentTone = "formal"
	ToneCasual        ContentTone = "casual"
	ToneHumorous      ContentTone = "humorous"
	ToneEmpathetic    ContentTone = "empathetic"
	ToneAuthoritative ContentTone = "authoritative"
	ToneFriendly      ContentTone = "friendly"
)

// ContentTones lists every supported content tone.
var ContentTones = []ContentTone{
	ToneFormal,
	ToneCasual,
	ToneHumorous,
	ToneEmpathetic,
	ToneAuthoritative,
	ToneFriendly,
}

// ParsePlatform resolves a platform tag case-insensitively.
func ParsePlatform(value string) (Platform, error) {
	if p, ok := lookup(Platforms, value); ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", value)
}

// ParseContentStyle resolves a content style tag case-insensitively.
func ParseContentStyle(value string) (ContentStyle, error) {
	if s, ok := lookup(ContentStyles, value); ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown content style %q", value)
}

// ParseContentTone resolves a content tone tag case-insensitively.
func ParseContentTone(value string) (ContentTone, error) {
	if t, ok := lookup(ContentTones, value); ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown content tone %q", value)
}

// Valid reports whether p belongs to the current platform universe.
func (p Platform) Valid() bool { return contains(Platforms, p) }

// Valid reports whether s belongs to the current content style universe.
func (s ContentStyle) Valid() bool { return contains(ContentStyles, s) }

// Valid reports whether t belongs to the current content tone universe.
func (t ContentTone) Valid() bool { return contains(ContentTones, t) }

func contains[T ~string](universe []T, value T) bool {
	for _, candidate := range universe {
		if candidate == value {
			return true
		}
	}
	return false
}

func lookup[T ~string](universe []T, value string) (T, bool) {
	key := foldKey(value)
	for _, candidate := range universe {
		if foldKey(string(candidate)) == key {
			return candidate, true
		}
	}
	var zero T
	return zero, false
}

func foldKey(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}
