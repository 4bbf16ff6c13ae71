// Package config loads, normalizes, and validates kontenai configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for the
// generation provider key (KONTENAI_API_KEY, then OPENROUTER_API_KEY). The
// Config type centralizes every knob the CLI needs: where presets are stored,
// which LLM provider backs the generation service, and how the script cache
// fans out.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical enum values, and clear validation errors.
package config
