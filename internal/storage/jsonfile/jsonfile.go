// Package jsonfile keeps the roster as a single pretty-printed JSON array
// in one file on disk. It implements storage.Document.
//
// The file is always replaced in full: SaveAll writes a temporary file in
// the same directory and renames it over the original, so a reader never
// sees a half-written document.
package jsonfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aanand-mishra/students-roster/internal/config"
	"github.com/aanand-mishra/students-roster/internal/storage"
	"github.com/aanand-mishra/students-roster/internal/types"
)

// Store is the file-backed storage.Document.
type Store struct {
	path string
	now  func() time.Time
}

// New returns a Store for cfg.StoragePath. Nothing is touched on disk
// until the first LoadAll or SaveAll.
func New(cfg *config.Config) (*Store, error) {
	if cfg.StoragePath == "" {
		return nil, errors.New("jsonfile.New: storage path is empty")
	}
	return &Store{path: cfg.StoragePath, now: time.Now}, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string { return s.path }

// LoadAll reads the whole document, creating the directory and the seeded
// file when they are missing. Any failure is logged and an empty slice
// returned.
func (s *Store) LoadAll() []types.Student {
	if err := s.ensureSeeded(); err != nil {
		slog.Error("error initialising students file",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return []types.Student{}
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		slog.Error("error reading students file",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return []types.Student{}
	}

	students, err := storage.Decode(b)
	if err != nil {
		slog.Error("error parsing students file",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return []types.Student{}
	}

	return students
}

// SaveAll overwrites the file with students. The error is logged here and
// also returned; whether it reaches the client is the repository's call.
func (s *Store) SaveAll(students []types.Student) error {
	if err := s.write(students); err != nil {
		slog.Error("error writing students file",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (s *Store) ensureSeeded() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat students file: %w", err)
	}

	slog.Info("seeding students file", slog.String("path", s.path))
	return s.write(storage.Seed(s.now()))
}

func (s *Store) write(students []types.Student) error {
	b, err := storage.Encode(students)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace students file: %w", err)
	}
	return nil
}
