package presets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"kontenai/internal/brand"
)

// SchemaVersion is the envelope version written by this release.
//
//	1: bare JSON array, contentStyle as free text, no niche or contentTone
//	2: {"schema_version":2,"presets":[...],"quarantine":[...]}
const SchemaVersion = 2

type envelope struct {
	SchemaVersion int               `json:"schema_version"`
	Presets       []json.RawMessage `json:"presets"`
	Quarantine    []Quarantined     `json:"quarantine,omitempty"`
}

// Quarantined is a stored record that could not be read as a valid preset.
// It stays in the blob so a later release (or a human) can recover it.
type Quarantined struct {
	Reason        string          `json:"reason"`
	SchemaVersion int             `json:"schema_version"`
	Record        json.RawMessage `json:"record"`
}

// migration upgrades one raw record from version From to From+1.
type migration struct {
	From  int
	Apply func(record map[string]any) map[string]any
}

var migrations = []migration{
	{From: 1, Apply: migrateV1ToV2},
}

// decodeEnvelope splits a stored blob into raw records and the carried
// quarantine list. A bare array is a version 1 blob.
func decodeEnvelope(data []byte) (envelope, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return envelope{SchemaVersion: SchemaVersion}, nil
	}
	switch trimmed[0] {
	case '[':
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return envelope{}, fmt.Errorf("decode legacy preset list: %w", err)
		}
		return envelope{SchemaVersion: 1, Presets: records}, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return envelope{}, fmt.Errorf("decode preset envelope: %w", err)
		}
		if env.SchemaVersion <= 0 {
			return envelope{}, fmt.Errorf("decode preset envelope: missing schema_version")
		}
		return env, nil
	default:
		return envelope{}, fmt.Errorf("decode presets: unexpected leading byte %q", trimmed[0])
	}
}

func encodeEnvelope(presets []Preset, quarantine []Quarantined) ([]byte, error) {
	env := envelope{
		SchemaVersion: SchemaVersion,
		Presets:       make([]json.RawMessage, 0, len(presets)),
		Quarantine:    quarantine,
	}
	for _, p := range presets {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode preset %s: %w", p.ID, err)
		}
		env.Presets = append(env.Presets, raw)
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode preset envelope: %w", err)
	}
	return data, nil
}

// upgradeRecord runs every migration from version up to SchemaVersion.
func upgradeRecord(raw json.RawMessage, version int) (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("record is not an object: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("record is null")
	}
	for _, m := range migrations {
		if m.From < version {
			continue
		}
		record = m.Apply(record)
	}
	return record, nil
}

// migrateV1ToV2 maps the free-text contentStyle onto the style and tone
// universes and recovers a niche from the preset name. The original text is
// kept in additionalInfo since most of it maps to no tag.
func migrateV1ToV2(record map[string]any) map[string]any {
	var styles []string
	var tones []string
	var leftovers []string

	if text, ok := record["contentStyle"].(string); ok {
		for _, token := range strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) }) {
			if s, err := brand.ParseContentStyle(token); err == nil {
				styles = appendUnique(styles, string(s))
				continue
			}
			if t, err := brand.ParseContentTone(token); err == nil {
				tones = appendUnique(tones, string(t))
			}
		}
		if strings.TrimSpace(text) != "" {
			leftovers = append(leftovers, "Content style: "+strings.TrimSpace(text))
		}
		record["contentStyle"] = styles
	}
	if _, ok := record["contentTone"]; !ok {
		record["contentTone"] = tones
	}
	if niche, _ := record["niche"].(string); strings.TrimSpace(niche) == "" {
		if name, ok := record["name"].(string); ok {
			record["niche"] = strings.TrimSpace(name)
		}
	}
	if len(leftovers) > 0 {
		info, _ := record["additionalInfo"].(string)
		parts := append([]string{}, leftovers...)
		if strings.TrimSpace(info) != "" {
			parts = append([]string{strings.TrimSpace(info)}, parts...)
		}
		record["additionalInfo"] = strings.Join(parts, "\n")
	}
	return record
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
