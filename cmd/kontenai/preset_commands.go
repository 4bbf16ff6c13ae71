package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kontenai/internal/brand"
	"kontenai/internal/presets"
)

func newPresetCommand(ctx *commandContext) *cobra.Command {
	presetCmd := &cobra.Command{
		Use:     "preset",
		Aliases: []string{"presets"},
		Short:   "Manage brand DNA presets",
	}

	presetCmd.AddCommand(newPresetListCommand(ctx))
	presetCmd.AddCommand(newPresetShowCommand(ctx))
	presetCmd.AddCommand(newPresetSaveCommand(ctx))
	presetCmd.AddCommand(newPresetRenameCommand(ctx))
	presetCmd.AddCommand(newPresetDuplicateCommand(ctx))
	presetCmd.AddCommand(newPresetDeleteCommand(ctx))

	return presetCmd
}

func newPresetListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.presetStore()
			if err != nil {
				return err
			}
			list := store.Load()
			if ctx.jsonOutput() {
				if list == nil {
					list = []presets.Preset{}
				}
				return writeJSON(cmd, list)
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No presets saved yet. Create one with `kontenai preset save NAME ...`.")
			} else {
				rows := make([][]string, 0, len(list))
				for _, p := range list {
					rows = append(rows, []string{
						shortID(p.ID),
						p.Name,
						p.Niche,
						joinValues(p.ContentStyle),
						joinValues(p.Platforms),
					})
				}
				fmt.Fprintln(out, renderTable(out, []string{"ID", "Name", "Niche", "Styles", "Platforms"}, rows))
			}
			if n := len(store.Quarantined()); n > 0 {
				fmt.Fprintf(out, "%d stored record(s) could not be read and were set aside.\n", n)
			}
			return nil
		},
	}
}

func newPresetShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show PRESET",
		Short: "Show one preset by name or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.presetStore()
			if err != nil {
				return err
			}
			preset, err := resolvePreset(store, args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, preset)
			}
			printPreset(cmd.OutOrStdout(), preset)
			return nil
		},
	}
}

func newPresetSaveCommand(ctx *commandContext) *cobra.Command {
	var fields dnaFlags
	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Create a preset, or update the preset with the same name",
		Long: "Saves a brand DNA under NAME. Names match case-insensitively: saving under an\n" +
			"existing name replaces that preset's fields and keeps its id.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.presetStore()
			if err != nil {
				return err
			}
			dna, err := fields.build(cmd)
			if err != nil {
				return err
			}
			id, wasUpdate, err := store.Add(args[0], dna)
			if err != nil {
				return describeValidation(err)
			}
			preset, _ := store.Get(id)
			if ctx.jsonOutput() {
				return writeJSON(cmd, struct {
					Preset  presets.Preset `json:"preset"`
					Updated bool           `json:"updated"`
				}{preset, wasUpdate})
			}
			verb := "Created"
			if wasUpdate {
				verb = "Updated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s preset %q (%s)\n", verb, preset.Name, preset.ID)
			return nil
		},
	}
	fields.bind(cmd)
	return cmd
}

func newPresetRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename PRESET NEW_NAME",
		Short: "Rename a preset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.presetStore()
			if err != nil {
				return err
			}
			preset, err := resolvePreset(store, args[0])
			if err != nil {
				return err
			}
			if err := store.Rename(preset.ID, args[1]); err != nil {
				return describeValidation(err)
			}
			renamed, _ := store.Get(preset.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q\n", preset.Name, renamed.Name)
			return nil
		},
	}
}

func newPresetDuplicateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate PRESET",
		Short: "Copy a preset under a new name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.presetStore()
			if err != nil {
				return err
			}
			preset, err := resolvePreset(store, args[0])
			if err != nil {
				return err
			}
			clone, ok := store.Duplicate(preset.ID)
			if !ok {
				return fmt.Errorf("%w: %s", presets.ErrNotFound, args[0])
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, clone)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %q (%s)\n", clone.Name, clone.ID)
			return nil
		},
	}
}

func newPresetDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete PRESET",
		Aliases: []string{"rm"},
		Short:   "Delete a preset",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.presetStore()
			if err != nil {
				return err
			}
			preset, err := resolvePreset(store, args[0])
			if err != nil {
				return err
			}
			store.Delete(preset.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", preset.Name)
			return nil
		},
	}
}

// resolvePreset finds a preset by exact id, then by name, then by id prefix
// as printed in `preset list`.
func resolvePreset(store *presets.Store, ref string) (presets.Preset, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return presets.Preset{}, errors.New("preset name or id is required")
	}
	if p, ok := store.Get(ref); ok {
		return p, nil
	}
	if p, ok := store.FindByName(ref); ok {
		return p, nil
	}
	var matches []presets.Preset
	for _, p := range store.List() {
		if strings.HasPrefix(p.ID, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return presets.Preset{}, fmt.Errorf("%w: %s", presets.ErrNotFound, ref)
	default:
		return presets.Preset{}, fmt.Errorf("preset id prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func describeValidation(err error) error {
	var verr *brand.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	lines := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		lines = append(lines, fmt.Sprintf("  %s: %s", f.Field, f.Message))
	}
	return fmt.Errorf("preset is invalid:\n%s", strings.Join(lines, "\n"))
}

func printPreset(out io.Writer, p presets.Preset) {
	rows := [][]string{
		{"ID", p.ID},
		{"Name", p.Name},
		{"Niche", p.Niche},
		{"Audience", p.TargetAudience},
		{"Pain points", p.PainPoints},
		{"Solutions", p.Solutions},
		{"Values", p.Values},
		{"Styles", joinValues(p.ContentStyle)},
		{"Tones", joinValues(p.ContentTone)},
		{"Platforms", joinValues(p.Platforms)},
	}
	if strings.TrimSpace(p.AdditionalInfo) != "" {
		rows = append(rows, []string{"Notes", p.AdditionalInfo})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Field", "Value"}, rows))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
