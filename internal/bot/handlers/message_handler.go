package handlers

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/schoolbot/internal/conversation"
	"github.com/edgard/schoolbot/internal/sanitize"
)

const logPreviewRunes = 200

var plainText = sanitize.NewTelegramPolicy()

type messageHandler struct {
	deps HandlerDeps
}

// NewMessageHandler creates a handler that answers plain text messages with
// the completion model, using the sender's recent history as context.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	msg := update.Message
	if msg == nil || msg.From == nil || strings.TrimSpace(msg.Text) == "" {
		log.DebugContext(ctx, "Ignoring update without text message", "update_id", update.ID)
		return
	}
	if strings.HasPrefix(msg.Text, "/") {
		log.DebugContext(ctx, "Ignoring unknown command", "update_id", update.ID, "text", preview(msg.Text))
		return
	}

	chatID := msg.Chat.ID
	caller := conversation.Caller{ID: msg.From.ID, Username: msg.From.Username}
	log.InfoContext(ctx, "Received question",
		"user_id", caller.ID, "username", caller.Username, "chat_id", chatID, "text", preview(msg.Text))

	stopTyping := keepTyping(ctx, b, chatID, h.deps.Config.Telegram.TypingInterval, log)
	answer := h.deps.Conversation.Ask(ctx, caller, msg.Text)
	stopTyping()

	if h.deps.Config.Telegram.StripMarkdown {
		if stripped := plainText.PlainText(answer); stripped != "" {
			answer = stripped
		}
	}

	log.InfoContext(ctx, "Sending answer", "user_id", caller.ID, "chat_id", chatID, "text", preview(answer))

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   answer,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send answer", "error", err, "chat_id", chatID)
	}
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= logPreviewRunes {
		return s
	}
	return string([]rune(s)[:logPreviewRunes]) + "..."
}
