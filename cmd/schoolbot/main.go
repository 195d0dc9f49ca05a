// Package main contains the entrypoint for the school assistant bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/spf13/cobra"

	"github.com/edgard/schoolbot/internal/bot"
	"github.com/edgard/schoolbot/internal/bot/handlers"
	"github.com/edgard/schoolbot/internal/bot/tasks"
	"github.com/edgard/schoolbot/internal/completion"
	"github.com/edgard/schoolbot/internal/config"
	"github.com/edgard/schoolbot/internal/conversation"
	"github.com/edgard/schoolbot/internal/database"
	"github.com/edgard/schoolbot/internal/history"
	"github.com/edgard/schoolbot/internal/logger"
	"github.com/edgard/schoolbot/internal/metrics"
	"github.com/edgard/schoolbot/internal/prompt"
	"github.com/edgard/schoolbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, mode string

	cmd := &cobra.Command{
		Use:           "schoolbot",
		Short:         "Telegram assistant answering questions about the school",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, mode)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.yaml (default ./config.yaml if present)")
	cmd.Flags().StringVar(&mode, "mode", "", "update transport: polling or webhook (overrides config)")
	return cmd
}

// run initializes every component and blocks until ctx is cancelled.
func run(ctx context.Context, configPath, mode string) error {
	cfg, err := loadConfig(configPath, mode)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return err
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	domainContext, err := config.LoadDomainContext(cfg.Prompt.ContextFile)
	if err != nil {
		log.Warn("Domain context unavailable, using placeholder", "error", err)
	} else {
		log.Info("Domain context loaded", "path", cfg.Prompt.ContextFile, "chars", len([]rune(domainContext)))
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return err
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	historyStore, err := history.NewStore(history.Options{
		MaxExchanges: cfg.History.MaxExchanges,
		MaxCallers:   cfg.History.MaxCallers,
		IdleTTL:      cfg.History.IdleTTL,
		Logger:       log,
	})
	if err != nil {
		log.Error("Failed to create history store", "error", err)
		return err
	}
	if err := metrics.RegisterCallerGauge(historyStore.Len); err != nil {
		log.Warn("Failed to register caller gauge", "error", err)
	}

	completer, err := completion.NewCompleter(ctx, cfg.Completion, log)
	if err != nil {
		log.Error("Failed to initialize completion client", "error", err)
		return err
	}

	service := conversation.NewService(conversation.Options{
		History:        historyStore,
		Builder:        prompt.NewBuilder(cfg.Prompt.SystemTemplate),
		Answerer:       completion.NewAnswerer(completer, cfg.Completion.Provider, cfg.Messages.Fallback, log),
		Journal:        store,
		DomainContext:  domainContext,
		RecordFallback: cfg.History.RecordFallback,
		Logger:         log,
	})

	hDeps := handlers.HandlerDeps{
		Logger:       log,
		Config:       cfg,
		Conversation: service,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Recover(log), logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewDefaultHandler(hDeps)),
	}
	if cfg.Webhook.SecretToken != "" {
		botOpts = append(botOpts, tgbot.WithWebhookSecretToken(cfg.Webhook.SecretToken))
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return err
	}
	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return err
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:  log,
		Store:   store,
		History: historyStore,
		Config:  cfg,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return err
	}

	server := bot.NewServer(cfg.Server, store, log)
	app := bot.NewBot(log, cfg, tg, server, sched, os.LookupEnv)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return runErr
	}

	log.Info("Bot stopped gracefully")
	return nil
}

func loadConfig(path, mode string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if mode == "" || mode == cfg.Mode {
		return cfg, nil
	}
	cfg.Mode = mode
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	return cfg, nil
}
