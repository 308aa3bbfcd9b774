package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/studyscout/internal/logger"
)

// NewProvider creates a Provider from configuration, wrapped as
// caller → retry → timeout → logging → base. Each attempt gets its own
// timeout and its own event.
func NewProvider(ctx context.Context, cfg Config, events EventRecorder, log *logger.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, events, log)
	timed := WithTimeout(logged, cfg.Timeout)
	if cfg.Retry.MaxAttempts <= 1 {
		return timed, nil
	}
	return WithRetry(timed, cfg.Retry), nil
}

// NewEmbedder creates the Embedder selected by cfg.Embedding. An empty
// embedding provider follows the chat provider when that provider has an
// embeddings API; Anthropic and OpenRouter do not, so they need an
// explicit choice.
func NewEmbedder(ctx context.Context, cfg Config) (Embedder, error) {
	provider := cfg.Embedding.Provider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case "openai":
		return NewOpenAIEmbedder(cfg.OpenAI, cfg.Embedding.Model, cfg.Embedding.Dimensions)
	case "gemini":
		return NewGeminiEmbedder(ctx, cfg.Gemini, cfg.Embedding.Model, cfg.Embedding.Dimensions)
	case "mock":
		return NewMockEmbedder(cfg.Embedding.Dimensions), nil
	case "anthropic", "openrouter":
		return nil, fmt.Errorf("%s has no embeddings API; set embedding.provider to openai, gemini or mock", provider)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", provider)
	}
}
