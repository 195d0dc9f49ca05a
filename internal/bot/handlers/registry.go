package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its middleware.
// When Match is set it takes precedence over Pattern and MatchType.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	Match       tgbot.MatchFunc
}

// RegisterAllCommands returns the bot commands keyed by their slash name.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Match:       MatchCommand("start"),
		Middleware:  []tgbot.Middleware{CountUpdates("start")},
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Match:       MatchCommand("help"),
		Middleware:  []tgbot.Middleware{CountUpdates("help")},
	}
	handlers["/reset"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "reset",
		Handler:     NewResetHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Match:       MatchCommand("reset"),
		Middleware:  []tgbot.Middleware{CountUpdates("reset")},
	}

	return handlers
}

// NewDefaultHandler returns the handler for updates no command matched.
func NewDefaultHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return CountUpdates("message")(NewMessageHandler(deps))
}
