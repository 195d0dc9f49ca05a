package completion_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/schoolbot/internal/completion"
	"github.com/edgard/schoolbot/internal/config"
)

func TestNewCompleter(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := config.CompletionConfig{
		Endpoint:    config.DefaultYandexEndpoint,
		APIKey:      "k",
		FolderID:    "f",
		Model:       "m",
		Temperature: 0.6,
		MaxTokens:   500,
		Timeout:     time.Second,
	}

	tests := []struct {
		name     string
		provider string
		breaker  uint32
		check    func(t *testing.T, c completion.Completer)
		wantErr  bool
	}{
		{
			name:     "yandex",
			provider: config.ProviderYandex,
			check: func(t *testing.T, c completion.Completer) {
				assert.IsType(t, &completion.YandexClient{}, c)
			},
		},
		{
			name:     "openai",
			provider: config.ProviderOpenAI,
			check: func(t *testing.T, c completion.Completer) {
				assert.IsType(t, &completion.OpenAIClient{}, c)
			},
		},
		{
			name:     "breaker wraps backend",
			provider: config.ProviderYandex,
			breaker:  3,
			check: func(t *testing.T, c completion.Completer) {
				assert.IsType(t, &completion.BreakerCompleter{}, c)
			},
		},
		{name: "unknown", provider: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := base
			cfg.Provider = tt.provider
			cfg.Breaker.MaxFailures = tt.breaker
			c, err := completion.NewCompleter(context.Background(), cfg, logger)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}
