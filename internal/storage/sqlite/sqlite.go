// Package sqlite provides a SQLite-backed implementation of
// storage.Document.
//
// The roster is still one JSON array: it lives as the body of a single
// row in the documents table, so the load-all / save-all semantics are
// identical to the plain file backend. SQLite only contributes crash-safe
// writes and a single file that is easy to back up.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aanand-mishra/students-roster/internal/config"
	"github.com/aanand-mishra/students-roster/internal/storage"
	"github.com/aanand-mishra/students-roster/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

const documentName = "students"

// SQLite is the database-backed storage.Document.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db  *sql.DB
	now func() time.Time
}

// New opens the SQLite database at cfg.StoragePath, creating the parent
// directory and the documents table if needed.
func New(cfg *config.Config) (*SQLite, error) {
	if cfg.StoragePath == "" {
		return nil, errors.New("sqlite.New: storage path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite.New: create data dir: %w", err)
	}

	// sql.Open does NOT open a real connection yet; the first query does.
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema:
	//   name       — document key, always "students" today
	//   body       — the pretty-printed JSON array
	//   updated_at — when the body was last replaced
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			name       TEXT PRIMARY KEY,
			body       TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db, now: time.Now}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// LoadAll returns the stored roster, seeding it when the row is missing.
// Failures are logged and yield an empty slice.
func (s *SQLite) LoadAll() []types.Student {
	var body string
	err := s.Db.QueryRow(
		"SELECT body FROM documents WHERE name = ? LIMIT 1", documentName,
	).Scan(&body)

	if errors.Is(err, sql.ErrNoRows) {
		seed := storage.Seed(s.now())
		slog.Info("seeding students document", slog.String("backend", "sqlite"))
		if err := s.upsert(seed); err != nil {
			slog.Error("error seeding students document", slog.String("error", err.Error()))
			return []types.Student{}
		}
		return seed
	}
	if err != nil {
		slog.Error("error reading students document", slog.String("error", err.Error()))
		return []types.Student{}
	}

	students, err := storage.Decode([]byte(body))
	if err != nil {
		slog.Error("error parsing students document", slog.String("error", err.Error()))
		return []types.Student{}
	}
	return students
}

// SaveAll replaces the stored document with students.
func (s *SQLite) SaveAll(students []types.Student) error {
	if err := s.upsert(students); err != nil {
		slog.Error("error writing students document", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (s *SQLite) upsert(students []types.Student) error {
	b, err := storage.Encode(students)
	if err != nil {
		return err
	}

	stmt, err := s.Db.Prepare(`
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("upsert: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(documentName, string(b), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert: exec: %w", err)
	}
	return nil
}
