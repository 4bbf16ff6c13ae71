package preflight

import (
	"context"

	"kontenai/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config. The provider
// check is skipped when skipLLM is set, which keeps offline runs fast.
func RunAll(ctx context.Context, cfg *config.Config, skipLLM bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckStore(cfg.Store.Backend, cfg.StorePath()))
	if !skipLLM {
		results = append(results, CheckLLM(ctx, "Generation provider", cfg.GetLLM()))
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
