// Package storage defines the contracts between the HTTP layer, the
// record repository and the backends that persist the roster document.
//
// Handlers depend only on Storage; the repository depends only on
// Document. Swapping the file backend for SQLite is one line in main.go.
package storage

import (
	"errors"

	"github.com/aanand-mishra/students-roster/internal/types"
)

// Errors returned by Storage implementations. Match them with errors.Is.
var (
	// ErrNotFound means no record carries the requested id.
	ErrNotFound = errors.New("student not found")

	// ErrInvalidInput means a mandatory creation field is missing.
	ErrInvalidInput = errors.New("invalid student input")

	// ErrPersistence means the document could not be written back.
	// Only surfaced when the repository runs with strict writes.
	ErrPersistence = errors.New("persisting students failed")
)

// Storage is the CRUD contract consumed by the HTTP handlers.
type Storage interface {
	// GetStudents returns every record in insertion order.
	// Returns an empty slice (not nil) if there are none.
	GetStudents() ([]types.Student, error)

	// GetStudentByID returns the first record with the given id, or ErrNotFound.
	GetStudentByID(id int64) (types.Student, error)

	// CreateStudent validates input, assigns the next id and stamps
	// timestamps. Returns ErrInvalidInput on a missing field.
	CreateStudent(input types.StudentInput) (types.Student, error)

	// UpdateStudentByID merges patch into the record and refreshes updatedAt.
	UpdateStudentByID(id int64, patch types.StudentPatch) (types.Student, error)

	// DeleteStudentByID removes the record and returns it.
	DeleteStudentByID(id int64) (types.Student, error)
}

// Document is a backend holding the entire roster as one JSON array.
type Document interface {
	// LoadAll returns the full record set, seeding the document on first
	// access. Unreadable or invalid content yields an empty slice.
	LoadAll() []types.Student

	// SaveAll replaces the whole document with students.
	SaveAll(students []types.Student) error
}
