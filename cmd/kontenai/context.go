package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"kontenai/internal/config"
	"kontenai/internal/generation"
	"kontenai/internal/logging"
	"kontenai/internal/presets"
	"kontenai/internal/scripts"
	"kontenai/internal/services/llm"
	"kontenai/internal/studio"
)

// assistantFactory builds the generation backend.
type assistantFactory func(cfg *config.Config, logger *slog.Logger) (generation.Assistant, error)

// defaultAssistant is swapped out by tests.
var defaultAssistant assistantFactory = newLLMAssistant

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	storeOnce sync.Once
	backend   presets.Backend
	store     *presets.Store
	storeErr  error

	newAssistant assistantFactory
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		jsonFlag:     jsonFlag,
		newAssistant: defaultAssistant,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.configPath = resolved
		c.configSeen = exists
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// loggerValue returns the configured logger, or a no-op logger when the log
// sink cannot be opened.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) presetStore() (*presets.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		backend, err := presets.Open(cfg.Store.Backend, cfg.StorePath())
		if err != nil {
			c.storeErr = fmt.Errorf("open preset store: %w", err)
			return
		}
		c.backend = backend
		c.store = presets.NewStore(backend, presets.WithLogger(c.loggerValue()))
	})
	return c.store, c.storeErr
}

func (c *commandContext) assistant() (generation.Assistant, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return c.newAssistant(cfg, c.loggerValue())
}

// session wires a studio session over the preset store and the assistant.
func (c *commandContext) session() (*studio.Session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.presetStore()
	if err != nil {
		return nil, err
	}
	assistant, err := c.assistant()
	if err != nil {
		return nil, err
	}
	logger := c.loggerValue()
	cache := scripts.NewCache(assistant,
		scripts.WithLogger(logger),
		scripts.WithCallTimeout(cfg.CallTimeout()),
		scripts.WithMaxConcurrency(cfg.Generation.MaxConcurrency),
	)
	format, err := generation.ParseFormat(cfg.Generation.DefaultFormat)
	if err != nil {
		return nil, err
	}
	return studio.NewSession(store, assistant, cache,
		studio.WithLogger(logger),
		studio.WithVariants(cfg.Generation.DefaultVariants),
		studio.WithFormat(format),
	), nil
}

func (c *commandContext) close() {
	if c.backend != nil {
		_ = c.backend.Close()
	}
}

func newLLMAssistant(cfg *config.Config, logger *slog.Logger) (generation.Assistant, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	settings := cfg.GetLLM()
	completer, err := llm.New(settings.Provider, llm.Config{
		APIKey:         settings.APIKey,
		BaseURL:        settings.BaseURL,
		Model:          settings.Model,
		Referer:        settings.Referer,
		Title:          settings.Title,
		TimeoutSeconds: settings.TimeoutSeconds,
	})
	if err != nil {
		return nil, err
	}
	return generation.NewLLMService(completer, llm.DecodeLLMJSON,
		generation.WithLanguage(cfg.Generation.Language),
		generation.WithLogger(logger),
	), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
