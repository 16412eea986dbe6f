package doctor

import (
	"context"
	"fmt"
	"net/url"
	"os"

	configapp "github.com/doeshing/quest/internal/application/config"
	"github.com/doeshing/quest/internal/domain"
	"github.com/doeshing/quest/internal/ports"
)

// Service runs local diagnostics. It never calls the completion endpoint.
type Service struct {
	ConfigProvider ports.ConfigProvider
	HistoryStore   ports.HistoryRepository
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := configapp.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format version %s", cfg.ConfigFormatVersion)))
	}

	checks = append(checks, endpointCheck(cfg.Provider))
	checks = append(checks, apiKeyCheck(cfg.Provider))
	checks = append(checks, s.historyCheck(cfg.History))
	checks = append(checks, ok("Model", fmt.Sprintf("%s at temperature %g", domain.CompletionModel, domain.CompletionTemperature)))

	return domain.HealthReport{Checks: checks}, nil
}

func endpointCheck(p domain.ProviderSettings) domain.HealthCheck {
	u, err := url.Parse(p.Endpoint)
	if err != nil || u.Host == "" {
		return fail("Endpoint", fmt.Sprintf("invalid endpoint %q", p.Endpoint))
	}
	if u.Scheme != "https" {
		return warn("Endpoint", fmt.Sprintf("%s is not using TLS", u.Host))
	}
	return ok("Endpoint", u.Host)
}

func apiKeyCheck(p domain.ProviderSettings) domain.HealthCheck {
	if p.AuthEnvVar != "" && os.Getenv(p.AuthEnvVar) != "" {
		return ok("API key", p.AuthEnvVar+" set")
	}
	if os.Getenv(domain.EnvOpenAIKey) != "" {
		return ok("API key", domain.EnvOpenAIKey+" set")
	}
	name := p.AuthEnvVar
	if name == "" {
		name = domain.EnvOpenAIKey
	}
	return fail("API key", name+" missing")
}

func (s *Service) historyCheck(h domain.HistorySettings) domain.HealthCheck {
	if !h.Enabled {
		return ok("History", "disabled")
	}
	if s.HistoryStore == nil {
		return warn("History", "enabled but the database could not be opened")
	}
	if _, err := s.HistoryStore.Records(1, ""); err != nil {
		return warn("History", fmt.Sprintf("read failed: %v", err))
	}
	return ok("History", s.HistoryStore.Path())
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
