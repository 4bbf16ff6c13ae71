// Package logging assembles structured slog loggers and formatting helpers used
// across kontenai.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes component loggers so the preset store, the script cache and the
// generation clients emit lines with the same shape. A no-op logger is provided
// for tests and for wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components keep
// the same field names (component, event_type, error_hint, impact).
package logging
