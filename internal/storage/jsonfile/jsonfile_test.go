package jsonfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aanand-mishra/students-roster/internal/config"
	"github.com/aanand-mishra/students-roster/internal/types"
)

func newStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := New(&config.Config{StoragePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_EmptyPath(t *testing.T) {
	if _, err := New(&config.Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadAll_SeedsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "students.json")
	s := newStore(t, path)

	students := s.LoadAll()
	if len(students) != 3 {
		t.Fatalf("expected 3 seeded students, got %d", len(students))
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("seed file not written: %v", err)
	}
	if !strings.HasPrefix(string(b), "[\n  {\n    \"id\": 1,") {
		t.Errorf("seed file not pretty-printed with two spaces:\n%s", b)
	}
}

func TestLoadAll_DoesNotReseedExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newStore(t, path)
	if got := s.LoadAll(); len(got) != 0 {
		t.Errorf("expected empty roster, got %d records", len(got))
	}
}

func TestLoadAll_InvalidContentYieldsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newStore(t, path)
	got := s.LoadAll()
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSaveAll_ThenLoadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	s := newStore(t, path)

	now := types.NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	want := []types.Student{
		{ID: 5, Name: "A", RegistrationNumber: "R1", Major: "M", DateOfBirth: "2000-01-01", GPA: 3, CreatedAt: now, UpdatedAt: now},
		{ID: 2, Name: "B", RegistrationNumber: "R2", Major: "M", DateOfBirth: "2001-01-01", GPA: 0, CreatedAt: now, UpdatedAt: now},
	}
	if err := s.SaveAll(want); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	got := s.LoadAll()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Name != want[i].Name || !got[i].CreatedAt.Equal(want[i].CreatedAt.Time) {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestSaveAll_LoadAll_RoundTripKeepsBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	s := newStore(t, path)

	s.LoadAll() // seeds
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SaveAll(s.LoadAll()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(before, after) {
		t.Errorf("saveAll(loadAll()) changed the file:\n%s\n---\n%s", before, after)
	}
}

func TestSaveAll_ReportsWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newStore(t, filepath.Join(blocker, "students.json"))
	if err := s.SaveAll(nil); err == nil {
		t.Fatal("expected error when parent is a regular file")
	}
	if got := s.LoadAll(); len(got) != 0 {
		t.Errorf("expected empty roster on unusable path, got %d", len(got))
	}
}
