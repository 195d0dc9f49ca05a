// Package config manages application configuration from a .env file,
// environment variables, config.yaml and default values.
package config

import "time"

// Config defines the application configuration. Values can be set through
// config.yaml or environment variables prefixed with BOT_ (for example
// BOT_TELEGRAM_TOKEN). The legacy TELEGRAM_TOKEN, YANDEX_API_KEY and
// FOLDER_ID variables are honoured as well.
type Config struct {
	Mode string `mapstructure:"mode" validate:"oneof=polling webhook"`

	Log        LogConfig        `mapstructure:"log"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Server     ServerConfig     `mapstructure:"server"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Completion CompletionConfig `mapstructure:"completion"`
	Prompt     PromptConfig     `mapstructure:"prompt"`
	History    HistoryConfig    `mapstructure:"history"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Messages   MessagesConfig   `mapstructure:"messages"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Bot API settings.
type TelegramConfig struct {
	Token              string        `mapstructure:"token"                validate:"required"`
	DropPendingUpdates bool          `mapstructure:"drop_pending_updates"`
	TypingInterval     time.Duration `mapstructure:"typing_interval"      validate:"min=1s"`
	// StripMarkdown converts model markdown to plain text before sending.
	StripMarkdown bool `mapstructure:"strip_markdown"`
}

// ServerConfig configures the HTTP server exposing health, readiness,
// metrics and, in webhook mode, the update endpoint.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"      validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
}

// WebhookConfig is only consulted when Mode is "webhook".
type WebhookConfig struct {
	PublicURL   string `mapstructure:"public_url"   validate:"omitempty,url"`
	Path        string `mapstructure:"path"         validate:"startswith=/"`
	SecretToken string `mapstructure:"secret_token"`
	// DeploymentEnv names the environment variable whose presence marks a
	// managed deployment. Without it a failed webhook setup falls back to polling.
	DeploymentEnv string `mapstructure:"deployment_env"`
	// SetupAttempts bounds the setWebhook calls made before giving up.
	SetupAttempts uint `mapstructure:"setup_attempts" validate:"min=1,max=10"`
}

// CompletionConfig selects and configures the completion provider.
type CompletionConfig struct {
	Provider    string        `mapstructure:"provider"    validate:"oneof=yandex gemini openai"`
	Endpoint    string        `mapstructure:"endpoint"    validate:"omitempty,url"`
	APIKey      string        `mapstructure:"api_key"     validate:"required"`
	FolderID    string        `mapstructure:"folder_id"`
	Model       string        `mapstructure:"model"       validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"min=0,max=1"`
	MaxTokens   int32         `mapstructure:"max_tokens"  validate:"min=1,max=8000"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"min=1s,max=10m"`

	Breaker BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig controls the circuit breaker around the completion backend.
// A zero MaxFailures disables it.
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout" validate:"min=0"`
}

// PromptConfig configures the system instruction.
type PromptConfig struct {
	ContextFile    string `mapstructure:"context_file"`
	SystemTemplate string `mapstructure:"system_template" validate:"required"`
}

// HistoryConfig bounds the in-memory conversation context.
type HistoryConfig struct {
	MaxExchanges   int           `mapstructure:"max_exchanges"   validate:"min=1,max=100"`
	MaxCallers     int           `mapstructure:"max_callers"     validate:"min=1"`
	IdleTTL        time.Duration `mapstructure:"idle_ttl"        validate:"min=0"`
	RecordFallback bool          `mapstructure:"record_fallback"`
}

// DatabaseConfig configures the exchange journal.
type DatabaseConfig struct {
	Path             string        `mapstructure:"path"              validate:"required"`
	JournalRetention time.Duration `mapstructure:"journal_retention" validate:"min=0"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a scheduled task with a cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds user-facing texts.
type MessagesConfig struct {
	Welcome      string `mapstructure:"welcome"       validate:"required"`
	Help         string `mapstructure:"help"          validate:"required"`
	HistoryReset string `mapstructure:"history_reset" validate:"required"`
	Fallback     string `mapstructure:"fallback"      validate:"required"`
}
