package completion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edgard/schoolbot/internal/config"
)

// NewCompleter builds the backend named by cfg.Provider, wrapped in a
// circuit breaker unless cfg.Breaker.MaxFailures is zero.
func NewCompleter(ctx context.Context, cfg config.CompletionConfig, logger *slog.Logger) (Completer, error) {
	logger.Info("Initializing completion client", "provider", cfg.Provider, "model", cfg.Model)

	var completer Completer
	switch cfg.Provider {
	case config.ProviderYandex:
		completer = NewYandexClient(YandexConfig{
			Endpoint:    cfg.Endpoint,
			APIKey:      cfg.APIKey,
			FolderID:    cfg.FolderID,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		completer = client
	case config.ProviderOpenAI:
		client, err := NewOpenAIClient(OpenAIConfig{
			BaseURL:     cfg.Endpoint,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		completer = client
	default:
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}

	if cfg.Breaker.MaxFailures == 0 {
		return completer, nil
	}
	return NewBreakerCompleter(cfg.Provider, completer, BreakerConfig{
		MaxFailures: cfg.Breaker.MaxFailures,
		OpenTimeout: cfg.Breaker.OpenTimeout,
	}, logger), nil
}
