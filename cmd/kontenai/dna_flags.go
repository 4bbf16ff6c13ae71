package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kontenai/internal/brand"
	"kontenai/internal/config"
)

// dnaFlags collects a brand DNA from command flags, optionally layered over a
// JSON file.
type dnaFlags struct {
	fromFile       string
	niche          string
	targetAudience string
	painPoints     string
	solutions      string
	values         string
	styles         []string
	tones          []string
	platforms      []string
	additionalInfo string
}

func (f *dnaFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.fromFile, "from-file", "", "Read the brand DNA from a JSON file; other flags override its fields")
	flags.StringVar(&f.niche, "niche", "", "Niche or product")
	flags.StringVar(&f.targetAudience, "audience", "", "Target audience")
	flags.StringVar(&f.painPoints, "pain-points", "", "Audience pain points")
	flags.StringVar(&f.solutions, "solutions", "", "Solutions offered")
	flags.StringVar(&f.values, "values", "", "Brand values")
	flags.StringSliceVar(&f.styles, "style", nil, "Content style (repeatable): "+joinValues(brand.ContentStyles))
	flags.StringSliceVar(&f.tones, "tone", nil, "Content tone (repeatable): "+joinValues(brand.ContentTones))
	flags.StringSliceVar(&f.platforms, "platform", nil, "Target platform (repeatable): "+joinValues(brand.Platforms))
	flags.StringVar(&f.additionalInfo, "info", "", "Additional notes")
}

func (f *dnaFlags) build(cmd *cobra.Command) (brand.DNA, error) {
	var dna brand.DNA
	if path := strings.TrimSpace(f.fromFile); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return brand.DNA{}, err
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			return brand.DNA{}, fmt.Errorf("read brand file: %w", err)
		}
		if err := json.Unmarshal(data, &dna); err != nil {
			return brand.DNA{}, fmt.Errorf("parse brand file %s: %w", expanded, err)
		}
	}

	flags := cmd.Flags()
	setText := func(name string, target *string, value string) {
		if flags.Changed(name) {
			*target = value
		}
	}
	setText("niche", &dna.Niche, f.niche)
	setText("audience", &dna.TargetAudience, f.targetAudience)
	setText("pain-points", &dna.PainPoints, f.painPoints)
	setText("solutions", &dna.Solutions, f.solutions)
	setText("values", &dna.Values, f.values)
	setText("info", &dna.AdditionalInfo, f.additionalInfo)

	if flags.Changed("style") {
		styles, err := parseTags(f.styles, brand.ParseContentStyle)
		if err != nil {
			return brand.DNA{}, err
		}
		dna.ContentStyle = styles
	}
	if flags.Changed("tone") {
		tones, err := parseTags(f.tones, brand.ParseContentTone)
		if err != nil {
			return brand.DNA{}, err
		}
		dna.ContentTone = tones
	}
	if flags.Changed("platform") {
		platforms, err := parseTags(f.platforms, brand.ParsePlatform)
		if err != nil {
			return brand.DNA{}, err
		}
		dna.Platforms = platforms
	}
	return dna, nil
}

func parseTags[T ~string](values []string, parse func(string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		tag, err := parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, nil
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
