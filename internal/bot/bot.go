// Package bot wires the Telegram transport, the HTTP server and the
// scheduler together and manages their lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/schoolbot/internal/config"
)

// Bot represents the running application.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	transport Transport
	server    *Server
	scheduler *Scheduler
	lookupEnv LookupEnvFunc
}

// NewBot creates the orchestrator. A nil lookupEnv reads the process environment.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	transport Transport,
	server *Server,
	scheduler *Scheduler,
	lookupEnv LookupEnvFunc,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		transport: transport,
		server:    server,
		scheduler: scheduler,
		lookupEnv: lookupEnv,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator", "requested_mode", b.cfg.Mode)

	mode, err := prepareTransport(ctx, b.transport, b.cfg, b.lookupEnv, b.logger)
	if err != nil {
		return err
	}
	if mode == config.ModeWebhook {
		b.server.HandleWebhook(b.cfg.Webhook.Path, b.transport.WebhookHandler())
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return b.server.Run(gCtx)
	})

	g.Go(func() error {
		b.logger.Info("Starting Telegram listener", "mode", mode)
		b.server.MarkStarted()
		if mode == config.ModeWebhook {
			b.transport.StartWebhook(gCtx)
		} else {
			b.transport.Start(gCtx)
		}
		b.logger.Info("Telegram listener stopped")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	if b.scheduler != nil {
		g.Go(func() error {
			if err := b.scheduler.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			<-gCtx.Done()
			if err := b.scheduler.Stop(); err != nil {
				b.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}
