package app

import (
	"context"
	"net/http"
	"time"

	"github.com/doeshing/quest/internal/application/completion"
	"github.com/doeshing/quest/internal/application/doctor"
	configapp "github.com/doeshing/quest/internal/application/config"
	"github.com/doeshing/quest/internal/domain"
	"github.com/doeshing/quest/internal/infrastructure/ai"
	"github.com/doeshing/quest/internal/infrastructure/config"
	"github.com/doeshing/quest/internal/infrastructure/history"
	"github.com/doeshing/quest/internal/pkg/logger"
	"github.com/doeshing/quest/internal/ports"
)

// Options holds process-level settings for building the container.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config            domain.Config
	ConfigProvider    ports.ConfigProvider
	ConfigLoader      *config.FileLoader
	Requester         *ai.Requester
	CompletionService *completion.Service
	DoctorService     *doctor.Service
	HistoryStore      ports.HistoryRepository
	Logger            ports.Logger

	historyDB *history.SQLiteStore
}

// BuildContainer constructs the dependency graph. A history database that
// cannot be opened disables history instead of failing. An invalid config is
// only logged here so doctor and config reset can still run; complete
// refuses it before sending anything.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(opts.Verbose || cfg.Preferences.Verbose)
	if err := configapp.Validate(cfg); err != nil {
		log.Warn("configuration invalid", map[string]interface{}{"error": err.Error(), "path": cfgLoader.Path()})
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second}
	requester := ai.NewRequester(cfg.Provider, httpClient)

	container := &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Requester:      requester,
		Logger:         log,
	}

	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			log.Warn("history disabled", map[string]interface{}{"error": err.Error()})
		} else {
			container.historyDB = store
			container.HistoryStore = store
			pruneExpired(store, cfg.History.RetentionDays, log)
		}
	}

	container.CompletionService = &completion.Service{
		Completer:    requester,
		HistoryStore: container.HistoryStore,
		Logger:       log,
	}
	container.DoctorService = &doctor.Service{
		ConfigProvider: cfgLoader,
		HistoryStore:   container.HistoryStore,
	}
	return container, nil
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	if c.historyDB == nil {
		return nil
	}
	return c.historyDB.Close()
}

func pruneExpired(store ports.HistoryRepository, days int, log ports.Logger) {
	if days <= 0 {
		return
	}
	removed, err := store.Prune(time.Now().AddDate(0, 0, -days))
	if err != nil {
		log.Warn("history prune failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if removed > 0 {
		log.Debug("history pruned", map[string]interface{}{"removed": removed, "retention_days": days})
	}
}
