// Package ports defines the interfaces between the application core and its
// adapters.
//
// The completion service depends only on these abstractions; the concrete
// HTTP requester, YAML loader, SQLite store and logger live in the
// infrastructure layer and are wired together in internal/app.
package ports

import (
	"context"
	"time"

	"github.com/doeshing/quest/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.quest/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Completer submits a conversation to the remote model and returns the text
// of the first choice.
type Completer interface {
	GetCompletion(ctx context.Context, messages []domain.Message) (string, error)
}

// HistoryRepository persists a record of every completion call.
type HistoryRepository interface {
	Save(domain.HistoryRecord) error
	Records(limit int, search string) ([]domain.HistoryRecord, error)
	Clear() error
	Prune(olderThan time.Time) (int64, error)
	ExportJSON(dest string) error
	Path() string
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
