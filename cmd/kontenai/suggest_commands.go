package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kontenai/internal/brand"
)

func newSuggestCommand(ctx *commandContext) *cobra.Command {
	suggestCmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest brand DNA fields from what is already filled in",
	}
	suggestCmd.AddCommand(newSuggestFieldCommand(ctx, "solution",
		"Suggest a solution for the pain points", suggestSolution))
	suggestCmd.AddCommand(newSuggestFieldCommand(ctx, "values",
		"Suggest brand values for the pain points and solutions", suggestValues))
	return suggestCmd
}

type suggestion struct {
	Suggestion string `json:"suggestion"`
	Merged     string `json:"merged"`
}

func newSuggestFieldCommand(ctx *commandContext, use, short string, run func(*cobra.Command, *commandContext, brand.DNA) (suggestion, error)) *cobra.Command {
	var fields dnaFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := fields.build(cmd)
			if err != nil {
				return err
			}
			result, err := run(cmd, ctx, draft)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Suggestion: %s\n", result.Suggestion)
			fmt.Fprintf(out, "Merged:     %s\n", result.Merged)
			return nil
		},
	}
	fields.bind(cmd)
	return cmd
}

func suggestSolution(cmd *cobra.Command, ctx *commandContext, draft brand.DNA) (suggestion, error) {
	session, err := ctx.session()
	if err != nil {
		return suggestion{}, err
	}
	text, err := session.SuggestSolution(cmd.Context(), draft)
	if err != nil {
		return suggestion{}, err
	}
	return suggestion{Suggestion: text, Merged: brand.MergeSolutions(draft.Solutions, text)}, nil
}

func suggestValues(cmd *cobra.Command, ctx *commandContext, draft brand.DNA) (suggestion, error) {
	session, err := ctx.session()
	if err != nil {
		return suggestion{}, err
	}
	text, err := session.SuggestValues(cmd.Context(), draft)
	if err != nil {
		return suggestion{}, err
	}
	return suggestion{Suggestion: text, Merged: brand.MergeValues(draft.Values, text)}, nil
}
