package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeGeneration()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = BackendJSON
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = ""
		return nil
	}
	var err error
	if c.Store.Path, err = expandPath(strings.TrimSpace(c.Store.Path)); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = lookupAPIKey(c.LLM.Provider)
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" && c.LLM.Provider == ProviderOpenRouter {
		c.LLM.BaseURL = defaultOpenRouterBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

// lookupAPIKey resolves the provider key from the environment. The generic
// KONTENAI_API_KEY wins over provider-specific variables.
func lookupAPIKey(provider string) string {
	candidates := []string{envAPIKey}
	switch provider {
	case ProviderOpenRouter:
		candidates = append(candidates, envOpenRouterAPIKey)
	case ProviderOpenAI:
		candidates = append(candidates, envOpenAIAPIKey)
	case ProviderAnthropic:
		candidates = append(candidates, envAnthropicAPIKey)
	}
	for _, name := range candidates {
		if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (c *Config) normalizeGeneration() {
	c.Generation.DefaultFormat = strings.ToLower(strings.TrimSpace(c.Generation.DefaultFormat))
	if c.Generation.DefaultFormat == "" {
		c.Generation.DefaultFormat = defaultScriptFormat
	}
	if c.Generation.DefaultVariants == 0 {
		c.Generation.DefaultVariants = defaultVariants
	}
	if c.Generation.MaxConcurrency == 0 {
		c.Generation.MaxConcurrency = defaultMaxConcurrency
	}
	if c.Generation.CallTimeoutSeconds == 0 {
		c.Generation.CallTimeoutSeconds = defaultCallTimeoutSeconds
	}
	c.Generation.Language = strings.ToLower(strings.TrimSpace(c.Generation.Language))
	if c.Generation.Language == "" {
		c.Generation.Language = defaultGenerationLanguage
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
