package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// scriptFormats mirrors the formats the generation service understands.
var scriptFormats = []string{"thread", "carousel", "video"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendJSON, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("store.backend: unsupported value %q (want %s or %s)", c.Store.Backend, BackendJSON, BackendSQLite)
	}
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("llm.provider: unsupported value %q", c.LLM.Provider)
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

// RequireAPIKey reports a descriptive error when no provider key is
// configured. Only generation commands need one.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.LLM.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("llm.api_key is required. Set %s env var or edit %s (create with 'kontenai config init')", envAPIKey, defaultPath)
}

func (c *Config) validateGeneration() error {
	if !slices.Contains(scriptFormats, c.Generation.DefaultFormat) {
		return fmt.Errorf("generation.default_format: unsupported value %q (want %s)", c.Generation.DefaultFormat, strings.Join(scriptFormats, ", "))
	}
	if _, err := language.Parse(c.Generation.Language); err != nil {
		return fmt.Errorf("generation.language: %w", err)
	}
	if c.Generation.DefaultVariants < 1 || c.Generation.DefaultVariants > maxVariants {
		return fmt.Errorf("generation.default_variants must be between 1 and %d", maxVariants)
	}
	if c.Generation.MaxConcurrency < 1 || c.Generation.MaxConcurrency > maxConcurrencyLimit {
		return fmt.Errorf("generation.max_concurrency must be between 1 and %d", maxConcurrencyLimit)
	}
	if c.Generation.CallTimeoutSeconds < 0 {
		return errors.New("generation.call_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
