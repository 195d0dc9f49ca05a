package config

import "time"

const (
	// ModePolling long-polls the Bot API for updates.
	ModePolling = "polling"
	// ModeWebhook receives updates pushed by Telegram over HTTP.
	ModeWebhook = "webhook"

	// ProviderYandex calls the YandexGPT foundation models completion API.
	ProviderYandex = "yandex"
	// ProviderGemini calls Gemini through the genai SDK.
	ProviderGemini = "gemini"
	// ProviderOpenAI calls an OpenAI-compatible chat completions API.
	ProviderOpenAI = "openai"

	// DefaultYandexModel is the default YandexGPT model name.
	DefaultYandexModel = "yandexgpt-lite"
	// DefaultGeminiModel replaces the YandexGPT default model for the gemini provider.
	DefaultGeminiModel = "gemini-2.0-flash"
	// DefaultOpenAIModel replaces the YandexGPT default model for the openai provider.
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultYandexEndpoint is the YandexGPT completion endpoint.
	DefaultYandexEndpoint = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"

	// DomainContextPlaceholder is substituted when the context file is missing.
	DomainContextPlaceholder = "School information not found."

	// DefaultSystemTemplate receives the domain context through its single %s verb.
	DefaultSystemTemplate = "You are an assistant of a children's language school. " +
		"Answer only using this information:\n%s\n" +
		"If the question is off-topic, say that you can only help with questions about the school. " +
		"Do not make things up. Answer briefly and to the point."
)

var defaults = map[string]any{
	"mode": ModePolling,

	"log.level": "info",
	"log.json":  true,

	"telegram.drop_pending_updates": true,
	"telegram.typing_interval":      4 * time.Second,
	"telegram.strip_markdown":       false,

	"server.listen_addr":      ":8080",
	"server.shutdown_timeout": 10 * time.Second,

	"webhook.path":           "/webhook",
	"webhook.deployment_env": "RENDER",
	"webhook.setup_attempts": 3,

	"completion.provider":    ProviderYandex,
	"completion.endpoint":    DefaultYandexEndpoint,
	"completion.model":       DefaultYandexModel,
	"completion.temperature": 0.6,
	"completion.max_tokens":  500,
	"completion.timeout":     60 * time.Second,

	"completion.breaker.max_failures": 5,
	"completion.breaker.open_timeout": 30 * time.Second,

	"prompt.context_file":    "school_context.txt",
	"prompt.system_template": DefaultSystemTemplate,

	"history.max_exchanges":   5,
	"history.max_callers":     10000,
	"history.idle_ttl":        24 * time.Hour,
	"history.record_fallback": true,

	"database.path":              "storage.db",
	"database.journal_retention": 30 * 24 * time.Hour,

	"scheduler.tasks.history_sweep.enabled":    true,
	"scheduler.tasks.history_sweep.schedule":   "0 */10 * * * *",
	"scheduler.tasks.journal_prune.enabled":    true,
	"scheduler.tasks.journal_prune.schedule":   "0 30 3 * * *",
	"scheduler.tasks.sql_maintenance.enabled":  true,
	"scheduler.tasks.sql_maintenance.schedule": "0 0 4 * * 0",

	"messages.welcome": "👋 Hello! I'm the Today language school bot.\n" +
		"I can tell you about classes, teachers, prices and help you book a trial lesson.\n" +
		"Ask your question!",
	"messages.help": "Just write your question about the school in a message.\n" +
		"/start - greeting\n/reset - forget our conversation\n/help - this message",
	"messages.history_reset": "🔄 Our conversation has been cleared.",
	"messages.fallback":      "Sorry, I cannot answer right now, please try again later.",
}

// legacyEnv binds keys to the variable names used by the original .env files.
var legacyEnv = map[string][]string{
	"telegram.token":       {"BOT_TELEGRAM_TOKEN", "TELEGRAM_TOKEN"},
	"completion.api_key":   {"BOT_COMPLETION_API_KEY", "YANDEX_API_KEY"},
	"completion.folder_id": {"BOT_COMPLETION_FOLDER_ID", "FOLDER_ID"},
	"webhook.public_url":   {"BOT_WEBHOOK_PUBLIC_URL", "WEBHOOK_URL"},
	"webhook.secret_token": {"BOT_WEBHOOK_SECRET_TOKEN"},
}
