package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describeValidationError(err)
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	switch c.Drafts.Backend {
	case "file", "sqlite":
		if strings.TrimSpace(c.Drafts.Path) == "" {
			return fmt.Errorf("drafts.path is required for the %s backend", c.Drafts.Backend)
		}
	case "redis":
		if strings.TrimSpace(c.Drafts.Redis.Addr) == "" {
			return fmt.Errorf("drafts.redis.addr is required for the redis backend")
		}
	}

	if c.Vault.Enabled && c.Vault.Address == "" {
		return fmt.Errorf("vault.address is required when vault is enabled")
	}

	return nil
}

// describeValidationError flattens validator output into one readable line.
func describeValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s failed %q (value %v)", fieldErr.Namespace(), fieldErr.Tag(), fieldErr.Value()))
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}
