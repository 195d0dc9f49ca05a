package handlers

import (
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MatchCommand matches messages that start with the /name command, with or
// without an @botname suffix as sent in group chats.
func MatchCommand(name string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		cmd, ok := leadingCommand(update.Message)
		return ok && cmd == name
	}
}

// leadingCommand returns the command at the start of msg without its slash
// and @botname suffix.
func leadingCommand(msg *models.Message) (string, bool) {
	if msg == nil {
		return "", false
	}
	for _, e := range msg.Entities {
		if e.Type != models.MessageEntityTypeBotCommand || e.Offset != 0 {
			continue
		}
		// Commands are ASCII, so the UTF-16 entity length equals the byte length.
		if e.Length < 2 || e.Length > len(msg.Text) {
			return "", false
		}
		cmd := msg.Text[1:e.Length]
		if at := strings.IndexByte(cmd, '@'); at >= 0 {
			cmd = cmd[:at]
		}
		return cmd, cmd != ""
	}
	return "", false
}
