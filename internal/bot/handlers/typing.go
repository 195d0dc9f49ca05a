package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const typingActionTimeout = 5 * time.Second

// keepTyping shows the typing indicator in chatID every interval until the
// returned stop function is called. The first action is sent before it returns.
func keepTyping(ctx context.Context, b *bot.Bot, chatID int64, interval time.Duration, log *slog.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	send := func() bool {
		if err := sendTyping(ctx, b, chatID); err != nil {
			if ctx.Err() != nil {
				return false
			}
			log.DebugContext(ctx, "Typing action failed", "error", err, "chat_id", chatID)
		}
		return true
	}

	if !send() {
		cancel()
		return func() {}
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if !send() {
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func sendTyping(ctx context.Context, b *bot.Bot, chatID int64) error {
	ctx, cancel := context.WithTimeout(ctx, typingActionTimeout)
	defer cancel()
	_, err := b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	return err
}
