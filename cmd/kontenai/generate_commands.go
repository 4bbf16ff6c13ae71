package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kontenai/internal/generation"
	"kontenai/internal/scripts"
	"kontenai/internal/studio"
)

func newPersonaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "persona PRESET",
		Short: "Derive the brand persona for a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.sessionFor(args[0])
			if err != nil {
				return err
			}
			persona, err := session.Persona(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, persona)
			}
			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Tone", persona.Tone},
				{"Content pillars", persona.ContentPillars},
				{"Content types", persona.ContentTypes},
			}
			if persona.AdditionalInfoSuggestion != "" {
				rows = append(rows, []string{"Suggested notes", persona.AdditionalInfoSuggestion})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Persona", ""}, rows))
			return nil
		},
	}
}

func newIdeasCommand(ctx *commandContext) *cobra.Command {
	var pick string
	var also []string
	cmd := &cobra.Command{
		Use:   "ideas PRESET",
		Short: "Generate content pillars and hooks for a preset",
		Long: "Generates content pillars with hooks. With --pick P.H the hook H of pillar P\n" +
			"(1-based, as printed) is turned into script variants.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.sessionFor(args[0])
			if err != nil {
				return err
			}
			pillars, err := session.Ideas(cmd.Context())
			if err != nil {
				return err
			}
			if strings.TrimSpace(pick) == "" {
				if ctx.jsonOutput() {
					return writeJSON(cmd, pillars)
				}
				printPillars(cmd.OutOrStdout(), pillars)
				return nil
			}

			pillar, hook, err := parsePick(pick)
			if err != nil {
				return err
			}
			failures, err := session.SelectIdea(cmd.Context(), pillar, hook)
			if err != nil {
				return err
			}
			return finishScripts(cmd, ctx, session, failures, also)
		},
	}
	cmd.Flags().StringVar(&pick, "pick", "", "Generate scripts for hook P.H (for example 2.3)")
	cmd.Flags().StringSliceVar(&also, "also", nil, "Additional formats to render for every variant")
	return cmd
}

func newScriptCommand(ctx *commandContext) *cobra.Command {
	var presetRef string
	var variants int
	var format string
	var also []string
	cmd := &cobra.Command{
		Use:   "script IDEA",
		Short: "Generate script variants for an idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if variants <= 0 {
				variants = cfg.Generation.DefaultVariants
			}
			if strings.TrimSpace(format) == "" {
				format = cfg.Generation.DefaultFormat
			}
			f, err := generation.ParseFormat(format)
			if err != nil {
				return err
			}

			var session *studio.Session
			if strings.TrimSpace(presetRef) != "" {
				session, err = ctx.sessionFor(presetRef)
			} else {
				session, err = ctx.session()
			}
			if err != nil {
				return err
			}
			failures, err := session.Scripts().GenerateInitialBatch(cmd.Context(), args[0], variants, f)
			if err != nil {
				return err
			}
			return finishScripts(cmd, ctx, session, failures, also)
		},
	}
	cmd.Flags().StringVarP(&presetRef, "preset", "p", "", "Preset to associate with the session")
	cmd.Flags().IntVarP(&variants, "variants", "n", 0, "Number of variants (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Initial format: thread, carousel or video")
	cmd.Flags().StringSliceVar(&also, "also", nil, "Additional formats to render for every variant")
	return cmd
}

func newAnswerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "answer PRESET QUESTION",
		Short: "Answer an audience question in the preset's voice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.sessionFor(args[0])
			if err != nil {
				return err
			}
			answer, err := session.Answer(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{"question": args[1], "answer": answer})
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func (c *commandContext) sessionFor(ref string) (*studio.Session, error) {
	store, err := c.presetStore()
	if err != nil {
		return nil, err
	}
	preset, err := resolvePreset(store, ref)
	if err != nil {
		return nil, err
	}
	session, err := c.session()
	if err != nil {
		return nil, err
	}
	if _, err := session.SelectPreset(preset.ID); err != nil {
		return nil, err
	}
	return session, nil
}

// finishScripts renders the requested extra formats for every variant that
// produced a script, then prints the grid. Slot failures are reported but do
// not fail the command unless every variant failed.
func finishScripts(cmd *cobra.Command, ctx *commandContext, session *studio.Session, failures []*scripts.SlotError, also []string) error {
	cache := session.Scripts()
	formats := make([]generation.Format, 0, len(also))
	for _, value := range also {
		f, err := generation.ParseFormat(value)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	for _, slot := range cache.Snapshot().Slots {
		if slot.Phase() != scripts.PhaseReady {
			continue
		}
		for _, f := range formats {
			if err := session.SwitchFormat(cmd.Context(), slot.ID, f); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				var slotErr *scripts.SlotError
				if errors.As(err, &slotErr) {
					failures = append(failures, slotErr)
				}
			}
		}
		// Leave the initial format on display. It is cached, so no call is made.
		if err := session.SwitchFormat(cmd.Context(), slot.ID, slot.Shown); err != nil {
			return fmt.Errorf("restore variant %d: %w", slot.ID+1, err)
		}
	}

	snap := cache.Snapshot()
	if ctx.jsonOutput() {
		if err := writeJSON(cmd, scriptView(snap)); err != nil {
			return err
		}
	} else {
		printScripts(cmd.OutOrStdout(), snap)
	}

	ready := 0
	for _, slot := range snap.Slots {
		if slot.Phase() == scripts.PhaseReady {
			ready++
		}
	}
	for _, f := range failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", f)
	}
	if ready == 0 && len(snap.Slots) > 0 {
		return errors.New("no script variant could be generated")
	}
	return nil
}

type scriptVariantView struct {
	Variant int               `json:"variant"`
	Shown   generation.Format `json:"shown,omitempty"`
	Scripts map[string]string `json:"scripts"`
	Error   string            `json:"error,omitempty"`
}

func scriptView(snap scripts.Snapshot) map[string]any {
	variants := make([]scriptVariantView, 0, len(snap.Slots))
	for _, slot := range snap.Slots {
		view := scriptVariantView{Variant: slot.ID + 1, Shown: slot.Shown, Scripts: map[string]string{}}
		for format, body := range slot.Bodies {
			view.Scripts[string(format)] = body.Render()
		}
		if slot.Err != nil {
			view.Error = slot.Err.Error()
		}
		variants = append(variants, view)
	}
	return map[string]any{"idea": snap.Idea, "variants": variants}
}

func printScripts(out io.Writer, snap scripts.Snapshot) {
	fmt.Fprintf(out, "Idea: %s\n", snap.Idea)
	for _, slot := range snap.Slots {
		fmt.Fprintf(out, "\n=== Variant %d ===\n", slot.ID+1)
		if slot.Phase() != scripts.PhaseReady {
			fmt.Fprintf(out, "(failed: %v)\n", slot.Err)
			continue
		}
		for _, format := range slot.Formats() {
			fmt.Fprintf(out, "--- %s ---\n", format.Label())
			body := slot.Bodies[format]
			if body.IsSegmented() {
				for i, segment := range body.Segments() {
					fmt.Fprintf(out, "[%d] %s\n", i+1, segment)
				}
				continue
			}
			fmt.Fprintln(out, body.Render())
		}
	}
}

func printPillars(out io.Writer, pillars generation.PillarSet) {
	rows := make([][]string, 0, len(pillars.Ideas()))
	for p, pillar := range pillars {
		for h, hook := range pillar.Hooks {
			name := ""
			if h == 0 {
				name = pillar.Name
			}
			rows = append(rows, []string{fmt.Sprintf("%d.%d", p+1, h+1), name, hook})
		}
	}
	fmt.Fprintln(out, renderTable(out, []string{"#", "Pillar", "Hook"}, rows))
}

func parsePick(value string) (int, int, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(value), ".")
	if !ok {
		return 0, 0, fmt.Errorf("pick must look like P.H, got %q", value)
	}
	pillar, err := strconv.Atoi(left)
	if err != nil || pillar < 1 {
		return 0, 0, fmt.Errorf("invalid pillar in %q", value)
	}
	hook, err := strconv.Atoi(right)
	if err != nil || hook < 1 {
		return 0, 0, fmt.Errorf("invalid hook in %q", value)
	}
	return pillar - 1, hook - 1, nil
}
