package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfiguration marks any failure to load or validate the configuration.
var ErrConfiguration = errors.New("configuration error")

// Load loads and validates configuration from, in increasing precedence:
//  1. default values
//  2. the YAML file at path (optional; an empty path looks for ./config.yaml)
//  3. a .env file in the working directory (optional)
//  4. environment variables
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to read .env file: %v", ErrConfiguration, err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("%w: failed to bind env for %s: %v", ErrConfiguration, key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	applyProviderDefaults(&cfg.Completion)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	slog.Debug("Configuration loaded",
		"mode", cfg.Mode,
		"provider", cfg.Completion.Provider,
		"model", cfg.Completion.Model,
		"max_exchanges", cfg.History.MaxExchanges,
		"config_file", v.ConfigFileUsed())
	return cfg, nil
}

// readConfigFile reads an explicit config path, which must exist, or falls
// back to an optional ./config.yaml.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Info("Config file not found, using defaults and environment", "path", path)
				return nil
			}
			return fmt.Errorf("failed to stat config file %s: %v", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %v", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %v", err)
		}
	}
	return nil
}

// applyProviderDefaults swaps the YandexGPT defaults for the selected
// provider's own when the user left them unchanged.
func applyProviderDefaults(c *CompletionConfig) {
	switch c.Provider {
	case ProviderGemini:
		if c.Model == DefaultYandexModel {
			c.Model = DefaultGeminiModel
		}
		c.Endpoint = ""
	case ProviderOpenAI:
		if c.Model == DefaultYandexModel {
			c.Model = DefaultOpenAIModel
		}
		if c.Endpoint == DefaultYandexEndpoint {
			c.Endpoint = ""
		}
	}
}
