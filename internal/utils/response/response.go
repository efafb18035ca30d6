// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every endpoint answers with the same envelope:
//
//	{ "success": true,  "data": {...}, "message": "Student created successfully" }
//	{ "success": false,                "message": "Student not found" }
//
// so API consumers always know where to look for the payload and for the
// human-readable outcome.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequiredFieldsMessage is returned when a create request lacks a field.
const RequiredFieldsMessage = "All fields (name, registrationNumber, major, dateOfBirth, gpa) are required"

// Envelope is the body of every API response. Data is omitted on failure.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK wraps a successful payload.
func OK(data any, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

// Fail builds a failure envelope. Callers pass a message meant for the
// client, never a raw internal error.
func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}

// ValidationError turns validator field errors into a failure envelope
// naming every missing field.
//
// Example output:
//
//	{ "success": false, "message": "All fields (...) are required: missing gpa, major" }
func ValidationError(errs validator.ValidationErrors) Envelope {
	var fields []string
	var other []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			fields = append(fields, e.Field())
		default:
			other = append(other, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	msg := RequiredFieldsMessage
	if len(fields) > 0 {
		msg += ": missing " + strings.Join(fields, ", ")
	}
	if len(other) > 0 {
		msg += "; " + strings.Join(other, ", ")
	}
	return Fail(msg)
}
