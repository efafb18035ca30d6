// Package student contains all HTTP handlers related to the Student resource.
//
// Each exported function is a factory: it receives its dependencies once,
// at route registration, and returns the http.HandlerFunc that runs on
// every request.
//
//	router.HandleFunc("POST /api/students", student.New(store))
//
// Every response is a response.Envelope. Unexpected failures are logged
// with their cause and answered with a generic 500 message.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/students-roster/internal/storage"
	"github.com/aanand-mishra/students-roster/internal/types"
	"github.com/aanand-mishra/students-roster/internal/utils/response"
)

const maxBodyBytes = 1 << 20

const (
	msgNotFound    = "Student not found"
	msgInvalidBody = "Invalid request body"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON), every field required; gpa may be a number or a
// numeric string:
//
//	{ "name": "A", "registrationNumber": "R1", "major": "M",
//	  "dateOfBirth": "2000-01-01", "gpa": 3.0 }
//
// 201 with the created record, 400 on a missing field or bad JSON, 500 otherwise.
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var input types.StudentInput
		err := decode(w, r, &input)
		if err != nil && !errors.Is(err, io.EOF) {
			slog.Debug("rejecting create body", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusBadRequest, response.Fail(msgInvalidBody))
			return
		}

		// An empty body decodes to a zero input, which fails every
		// required rule below.
		if err := input.Validate(); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.Fail(response.RequiredFieldsMessage))
			return
		}

		created, err := store.CreateStudent(input)
		if errors.Is(err, storage.ErrInvalidInput) {
			response.WriteJSON(w, http.StatusBadRequest, response.Fail(response.RequiredFieldsMessage))
			return
		}
		if err != nil {
			internalError(w, "Error creating student", err)
			return
		}

		slog.Info("student created", slog.Int64("id", created.ID))
		response.WriteJSON(w, http.StatusCreated,
			response.OK(created, "Student created successfully"))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// A non-numeric id cannot match any record and is answered like any other
// unknown id: 404.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a student", slog.String("id", id))

		intID, ok := parseID(id)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.Fail(msgNotFound))
			return
		}

		student, err := store.GetStudentByID(intID)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.Fail(msgNotFound))
			return
		}
		if err != nil {
			internalError(w, "Error retrieving student", err)
			return
		}

		response.WriteJSON(w, http.StatusOK,
			response.OK(student, "Student retrieved successfully"))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
//
// Optional query parameters narrow the result, outside the store:
//
//	search — case-insensitive substring of name or registrationNumber
//	major  — case-insensitive substring of major
//
// Always answers with an array, [] when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := store.GetStudents()
		if err != nil {
			internalError(w, "Error retrieving students", err)
			return
		}

		q := r.URL.Query()
		students = filter(students, q.Get("search"), q.Get("major"))

		response.WriteJSON(w, http.StatusOK,
			response.OK(students, "Students retrieved successfully"))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
//
// Any subset of the mutable fields may be sent. Empty strings keep the
// stored value; gpa is overwritten whenever it is present, 0 included.
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a student", slog.String("id", id))

		intID, ok := parseID(id)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.Fail(msgNotFound))
			return
		}

		var patch types.StudentPatch
		if err := decode(w, r, &patch); err != nil && !errors.Is(err, io.EOF) {
			slog.Debug("rejecting update body", slog.String("error", err.Error()))
			// An unknown id wins over a bad body.
			if _, lookupErr := store.GetStudentByID(intID); errors.Is(lookupErr, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.Fail(msgNotFound))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.Fail(msgInvalidBody))
			return
		}

		updated, err := store.UpdateStudentByID(intID, patch)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.Fail(msgNotFound))
			return
		}
		if err != nil {
			internalError(w, "Error updating student", err)
			return
		}

		slog.Info("student updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK,
			response.OK(updated, "Student updated successfully"))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
// Answers with the removed record.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", id))

		intID, ok := parseID(id)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.Fail(msgNotFound))
			return
		}

		removed, err := store.DeleteStudentByID(intID)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.Fail(msgNotFound))
			return
		}
		if err != nil {
			internalError(w, "Error deleting student", err)
			return
		}

		slog.Info("student deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK,
			response.OK(removed, "Student deleted successfully"))
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

func internalError(w http.ResponseWriter, message string, err error) {
	slog.Error(strings.ToLower(message), slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.Fail(message))
}

func filter(students []types.Student, search, major string) []types.Student {
	search = strings.ToLower(strings.TrimSpace(search))
	major = strings.ToLower(strings.TrimSpace(major))
	if search == "" && major == "" {
		return students
	}

	out := make([]types.Student, 0, len(students))
	for _, s := range students {
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(strings.ToLower(s.RegistrationNumber), search) {
			continue
		}
		if major != "" && !strings.Contains(strings.ToLower(s.Major), major) {
			continue
		}
		out = append(out, s)
	}
	return out
}
