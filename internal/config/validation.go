package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	var errs []error
	if c.Completion.Provider == ProviderYandex {
		if c.Completion.FolderID == "" {
			errs = append(errs, errors.New("completion.folder_id is required for the yandex provider"))
		}
		if c.Completion.Endpoint == "" {
			errs = append(errs, errors.New("completion.endpoint is required for the yandex provider"))
		}
	}
	if c.Mode == ModeWebhook && c.Webhook.PublicURL == "" {
		errs = append(errs, errors.New("webhook.public_url is required in webhook mode"))
	}
	if n := strings.Count(c.Prompt.SystemTemplate, "%s"); n != 1 {
		errs = append(errs, fmt.Errorf("prompt.system_template must contain exactly one %%s, found %d", n))
	}
	return errors.Join(errs...)
}
