package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/schoolbot/internal/config"
	"github.com/edgard/schoolbot/internal/conversation"
)

// Conversation answers questions and forgets history on request.
type Conversation interface {
	Ask(ctx context.Context, caller conversation.Caller, question string) string
	Reset(callerID int64) bool
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	Conversation Conversation
}
