package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"kontenai/internal/config"
	"kontenai/internal/generation"
	"kontenai/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	assistant  *testsupport.Assistant
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	homeDir := filepath.Join(testsupport.BaseDir(cfg), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, name := range []string{"KONTENAI_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(name, "")
	}

	configPath := filepath.Join(homeDir, ".config", "kontenai", "config.toml")
	writeTestConfig(t, configPath, cfg)

	env := &cliTestEnv{cfg: cfg, configPath: configPath, assistant: &testsupport.Assistant{}}
	previous := defaultAssistant
	defaultAssistant = func(*config.Config, *slog.Logger) (generation.Assistant, error) {
		return env.assistant, nil
	}
	t.Cleanup(func() { defaultAssistant = previous })
	return env
}

// useRealAssistant restores the LLM-backed assistant for tests that run
// against an httptest provider.
func (e *cliTestEnv) useRealAssistant(t *testing.T) {
	t.Helper()
	defaultAssistant = newLLMAssistant
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	testsupport.WriteFile(t, path, data)
}
