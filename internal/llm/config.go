package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Search     SearchConfig     `yaml:"search"`

	// Timeout bounds a single provider call. A call that runs past it
	// surfaces as ErrProviderUnavailable wrapping ErrTimeout. Default: 60s.
	Timeout time.Duration `yaml:"timeout"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "claude-haiku"
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Any OpenAI-compatible endpoint.
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-flash"
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "google/gemini-2.0-flash-exp"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
// MaxAttempts of 1 disables retries.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// EmbeddingConfig selects the embedder used for document chunks and
// retrieval queries. Provider "" follows the chat provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// SearchConfig enables web search for learning resources in chat. It runs
// on Gemini with Google Search grounding and uses Gemini.APIKey.
type SearchConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"` // Default: the Gemini model
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Embedding: EmbeddingConfig{
			Dimensions: 768,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from STUDYSCOUT_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// ApplyEnv overrides cfg with any STUDYSCOUT_* variables that are set.
func ApplyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("STUDYSCOUT_LLM_PROVIDER", &cfg.Provider)

	setString("STUDYSCOUT_ANTHROPIC_API_KEY", &cfg.Anthropic.APIKey)
	setString("STUDYSCOUT_ANTHROPIC_MODEL", &cfg.Anthropic.Model)

	setString("STUDYSCOUT_OPENAI_API_KEY", &cfg.OpenAI.APIKey)
	setString("STUDYSCOUT_OPENAI_MODEL", &cfg.OpenAI.Model)
	setString("STUDYSCOUT_OPENAI_BASE_URL", &cfg.OpenAI.BaseURL)

	setString("STUDYSCOUT_GEMINI_API_KEY", &cfg.Gemini.APIKey)
	setString("STUDYSCOUT_GEMINI_MODEL", &cfg.Gemini.Model)

	setString("STUDYSCOUT_OPENROUTER_API_KEY", &cfg.OpenRouter.APIKey)
	setString("STUDYSCOUT_OPENROUTER_MODEL", &cfg.OpenRouter.Model)

	setString("STUDYSCOUT_EMBEDDING_PROVIDER", &cfg.Embedding.Provider)
	setString("STUDYSCOUT_EMBEDDING_MODEL", &cfg.Embedding.Model)
	if v := os.Getenv("STUDYSCOUT_EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = n
		}
	}

	if v := os.Getenv("STUDYSCOUT_WEB_SEARCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Search.Enabled = b
		}
	}
	setString("STUDYSCOUT_WEB_SEARCH_MODEL", &cfg.Search.Model)

	if v := os.Getenv("STUDYSCOUT_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
}

// DiscoverConfig checks the vendors' standard API key variables in
// priority order (OpenAI, Gemini, Anthropic, OpenRouter) and returns a
// Config for the first provider whose key is found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// HasCredentials reports whether the selected provider has what it needs
// to make requests.
func (c Config) HasCredentials() bool {
	return c.Validate() == nil
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("STUDYSCOUT_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("STUDYSCOUT_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("STUDYSCOUT_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("STUDYSCOUT_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}

	switch c.Embedding.Provider {
	case "", "openai", "gemini", "mock":
	default:
		return fmt.Errorf("unknown embedding provider: %q", c.Embedding.Provider)
	}
	if c.Search.Enabled && c.Provider != "mock" && c.Gemini.APIKey == "" {
		return fmt.Errorf("STUDYSCOUT_GEMINI_API_KEY is required for web search")
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding dimensions must not be negative")
	}
	return nil
}
