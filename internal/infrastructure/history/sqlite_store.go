package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/doeshing/quest/internal/domain"
	"github.com/doeshing/quest/internal/pkg/filesystem"
	"github.com/doeshing/quest/internal/ports"
)

// SQLiteStore persists completion history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path, creating parent
// directories and the schema as needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = filesystem.ExpandPath(path)
	if path == "" {
		return nil, fmt.Errorf("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history db: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS completions (
		id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		model TEXT NOT NULL,
		messages TEXT NOT NULL,
		reply TEXT,
		success INTEGER NOT NULL,
		error TEXT,
		latency_ms INTEGER
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_completions_timestamp ON completions(timestamp)`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(record domain.HistoryRecord) error {
	messages, err := json.Marshal(record.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`INSERT INTO completions
		(id, timestamp, model, messages, reply, success, error, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.UnixNano(),
		record.Model,
		string(messages),
		record.Reply,
		boolToInt(record.Success),
		record.Error,
		record.LatencyMS,
	)
	return err
}

// Records returns history entries newest first. A zero limit returns all
// entries; a non-empty search matches messages or reply text.
func (s *SQLiteStore) Records(limit int, search string) ([]domain.HistoryRecord, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT id, timestamp, model, messages, reply, success, error, latency_ms FROM completions")
	var args []interface{}
	if search != "" {
		// messages holds encoded JSON, so match the decoded content values.
		builder.WriteString(` WHERE EXISTS (SELECT 1 FROM json_each(completions.messages)` +
			` WHERE json_extract(value, '$.content') LIKE ? ESCAPE '\')` +
			` OR reply LIKE ? ESCAPE '\'`)
		pattern := "%" + escapeLike(search) + "%"
		args = append(args, pattern, pattern)
	}
	builder.WriteString(" ORDER BY timestamp DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var (
			rec      domain.HistoryRecord
			ts       int64
			messages string
			reply    sql.NullString
			errText  sql.NullString
			success  int
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Model, &messages, &reply, &success, &errText, &rec.LatencyMS); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(messages), &rec.Messages); err != nil {
			return nil, fmt.Errorf("decode messages for %s: %w", rec.ID, err)
		}
		rec.Timestamp = time.Unix(0, ts)
		rec.Reply = reply.String
		rec.Error = errText.String
		rec.Success = success == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM completions")
	return err
}

// Prune deletes entries recorded before olderThan and reports how many went.
func (s *SQLiteStore) Prune(olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec("DELETE FROM completions WHERE timestamp < ?", olderThan.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExportJSON writes every entry to dest as JSON lines, newest first.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0, "")
	if err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(file)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			file.Close()
			return err
		}
	}
	return file.Close()
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using '\' as escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
