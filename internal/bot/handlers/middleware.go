// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/schoolbot/internal/metrics"
)

// CountUpdates counts every update routed to the named handler.
func CountUpdates(name string) tgbot.Middleware {
	counter := metrics.UpdatesHandled.WithLabelValues(name)
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			counter.Inc()
			next(ctx, bot, update)
		}
	}
}
