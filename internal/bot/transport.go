package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/schoolbot/internal/config"
)

// Transport is the part of *tgbot.Bot the orchestrator drives.
type Transport interface {
	Start(ctx context.Context)
	StartWebhook(ctx context.Context)
	WebhookHandler() http.HandlerFunc
	SetWebhook(ctx context.Context, params *tgbot.SetWebhookParams) (bool, error)
	DeleteWebhook(ctx context.Context, params *tgbot.DeleteWebhookParams) (bool, error)
}

// webhookRetryDelay is the first backoff delay between setWebhook attempts.
var webhookRetryDelay = time.Second

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// WebhookURL joins the public base URL and the webhook path.
func WebhookURL(publicURL, path string) string {
	return strings.TrimRight(publicURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// shouldFallBackToPolling reports whether a failed webhook setup may be
// recovered by polling. Managed deployments, marked by the presence of the
// deploymentEnv variable, must not fall back.
func shouldFallBackToPolling(deploymentEnv string, lookup LookupEnvFunc) bool {
	if deploymentEnv == "" {
		return true
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	_, managed := lookup(deploymentEnv)
	return !managed
}

// prepareTransport registers or removes the webhook and returns the mode
// that will actually be used.
func prepareTransport(ctx context.Context, t Transport, cfg *config.Config, lookup LookupEnvFunc, log *slog.Logger) (string, error) {
	if cfg.Mode == config.ModeWebhook {
		url := WebhookURL(cfg.Webhook.PublicURL, cfg.Webhook.Path)
		err := registerWebhook(ctx, t, cfg, url, log)
		if err == nil {
			log.Info("Webhook registered", "url", url)
			return config.ModeWebhook, nil
		}

		log.Error("Failed to register webhook", "url", url, "error", err)
		if !shouldFallBackToPolling(cfg.Webhook.DeploymentEnv, lookup) {
			return "", fmt.Errorf("webhook setup failed in managed deployment: %w", err)
		}
		log.Warn("Falling back to polling", "deployment_env", cfg.Webhook.DeploymentEnv)
	}

	if _, err := t.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{
		DropPendingUpdates: cfg.Telegram.DropPendingUpdates,
	}); err != nil {
		return "", fmt.Errorf("failed to delete webhook before polling: %w", err)
	}
	return config.ModePolling, nil
}

func registerWebhook(ctx context.Context, t Transport, cfg *config.Config, url string, log *slog.Logger) error {
	attempts := cfg.Webhook.SetupAttempts
	if attempts == 0 {
		attempts = 1
	}
	return retry.Do(
		func() error {
			_, err := t.SetWebhook(ctx, &tgbot.SetWebhookParams{
				URL:                url,
				SecretToken:        cfg.Webhook.SecretToken,
				DropPendingUpdates: cfg.Telegram.DropPendingUpdates,
			})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(webhookRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("setWebhook attempt failed", "attempt", n+1, "max_attempts", attempts, "error", err)
		}),
	)
}
