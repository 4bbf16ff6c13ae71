package config

// Supported store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Supported generation providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
)

const (
	defaultConfigPath         = "~/.config/kontenai/config.toml"
	defaultDataDir            = "~/.local/share/kontenai"
	defaultLogDir             = "~/.local/share/kontenai/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLLMProvider        = ProviderOpenRouter
	defaultOpenRouterBaseURL  = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-2.0-flash-001"
	defaultLLMReferer         = "https://github.com/kontenai/kontenai"
	defaultLLMTitle           = "KontenAI"
	defaultLLMTimeoutSeconds  = 60
	defaultVariants           = 3
	defaultScriptFormat       = "thread"
	defaultMaxConcurrency     = 4
	defaultCallTimeoutSeconds = 90
	defaultGenerationLanguage = "id"
	maxVariants               = 10
	maxConcurrencyLimit       = 16
)

const (
	envAPIKey           = "KONTENAI_API_KEY"
	envOpenRouterAPIKey = "OPENROUTER_API_KEY"
	envOpenAIAPIKey     = "OPENAI_API_KEY"
	envAnthropicAPIKey  = "ANTHROPIC_API_KEY"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Store: Store{
			Backend: BackendJSON,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Generation: Generation{
			DefaultVariants:    defaultVariants,
			DefaultFormat:      defaultScriptFormat,
			MaxConcurrency:     defaultMaxConcurrency,
			CallTimeoutSeconds: defaultCallTimeoutSeconds,
			Language:           defaultGenerationLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
