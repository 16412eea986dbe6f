package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/doeshing/quest/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateProvider(cfg.Provider); err != nil {
		return err
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	return nil
}

func validateProvider(p domain.ProviderSettings) error {
	if p.Endpoint == "" {
		return errors.New("provider.endpoint must be set")
	}
	u, err := url.Parse(p.Endpoint)
	if err != nil {
		return fmt.Errorf("provider.endpoint invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("provider.endpoint must be http or https, got %q", p.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("provider.endpoint has no host: %q", p.Endpoint)
	}
	if p.TimeoutSeconds < 0 {
		return fmt.Errorf("provider.timeout_seconds must be >= 0")
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	if history.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days must be >= 0")
	}
	if history.Enabled && history.Path == "" {
		return fmt.Errorf("history.path must be set when history is enabled")
	}
	return nil
}
