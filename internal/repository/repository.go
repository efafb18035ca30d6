// Package repository implements storage.Storage on top of a
// storage.Document.
//
// The repository keeps no cache: every call loads the full roster, works
// on it in memory and, for mutations, writes the full roster back. The
// whole cycle runs under one mutex so concurrent requests in this process
// cannot overwrite each other's changes.
package repository

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aanand-mishra/students-roster/internal/storage"
	"github.com/aanand-mishra/students-roster/internal/types"
)

// Repository is the Storage implementation used by the HTTP handlers.
type Repository struct {
	mu  sync.Mutex
	doc storage.Document

	// strict reports save failures to callers as storage.ErrPersistence.
	// When false a failed save is only logged.
	strict bool
	now    func() time.Time
}

// New returns a Repository over doc.
func New(doc storage.Document, strictWrites bool) *Repository {
	return &Repository{doc: doc, strict: strictWrites, now: time.Now}
}

// GetStudents returns the full roster in stored order.
func (r *Repository) GetStudents() ([]types.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.doc.LoadAll(), nil
}

// GetStudentByID returns the first record whose id matches.
func (r *Repository) GetStudentByID(id int64) (types.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	students := r.doc.LoadAll()
	i := indexOf(students, id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("GetStudentByID %d: %w", id, storage.ErrNotFound)
	}
	return students[i], nil
}

// CreateStudent appends a new record with id = max(existing ids) + 1.
// A deleted record that held the maximum id frees that id for reuse.
func (r *Repository) CreateStudent(input types.StudentInput) (types.Student, error) {
	if err := input.Validate(); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w: %v", storage.ErrInvalidInput, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	students := r.doc.LoadAll()

	student := input.ToStudent()
	student.ID = nextID(students)
	student.CreatedAt = r.timestamp()
	student.UpdatedAt = student.CreatedAt

	students = append(students, student)
	if err := r.save(students); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}
	return student, nil
}

// UpdateStudentByID merges patch into the stored record and refreshes
// updatedAt. See types.StudentPatch.Apply for the merge rules.
func (r *Repository) UpdateStudentByID(id int64, patch types.StudentPatch) (types.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	students := r.doc.LoadAll()
	i := indexOf(students, id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("UpdateStudentByID %d: %w", id, storage.ErrNotFound)
	}

	patch.Apply(&students[i])
	students[i].UpdatedAt = r.timestamp()

	if err := r.save(students); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID %d: %w", id, err)
	}
	return students[i], nil
}

// DeleteStudentByID removes the first matching record. No tombstone is kept.
func (r *Repository) DeleteStudentByID(id int64) (types.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	students := r.doc.LoadAll()
	i := indexOf(students, id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("DeleteStudentByID %d: %w", id, storage.ErrNotFound)
	}

	removed := students[i]
	students = append(students[:i], students[i+1:]...)

	if err := r.save(students); err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID %d: %w", id, err)
	}
	return removed, nil
}

func (r *Repository) save(students []types.Student) error {
	err := r.doc.SaveAll(students)
	if err == nil {
		return nil
	}
	if r.strict {
		return fmt.Errorf("%w: %v", storage.ErrPersistence, err)
	}
	slog.Warn("save failed, returning unsaved result",
		slog.String("error", err.Error()))
	return nil
}

func (r *Repository) timestamp() types.Timestamp {
	return types.NewTimestamp(r.now())
}

func indexOf(students []types.Student, id int64) int {
	for i := range students {
		if students[i].ID == id {
			return i
		}
	}
	return -1
}

func nextID(students []types.Student) int64 {
	if len(students) == 0 {
		return 1
	}
	highest := students[0].ID
	for _, s := range students[1:] {
		highest = max(highest, s.ID)
	}
	return highest + 1
}
