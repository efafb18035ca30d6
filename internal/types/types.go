// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, storage, and the repository can all import types without
// depending on each other.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Student is one roster record as stored in the JSON document.
// Field order here is the key order on disk and on the wire.
type Student struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	RegistrationNumber string    `json:"registrationNumber"`
	Major              string    `json:"major"`
	DateOfBirth        string    `json:"dateOfBirth"`
	GPA                float64   `json:"gpa"`
	CreatedAt          Timestamp `json:"createdAt"`
	UpdatedAt          Timestamp `json:"updatedAt"`
}

// timestampLayout is ISO-8601 in UTC with exactly three fractional digits,
// the shape JavaScript's Date.toISOString produces.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is a UTC instant at millisecond precision. It always encodes
// with a fixed-width fraction, so documents written by other tools keep
// their bytes across a load and save.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to milliseconds in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ts.UTC().Format(timestampLayout) + `"`), nil
}

// UnmarshalJSON accepts any RFC 3339 timestamp.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		*ts = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*ts = NewTimestamp(t)
	return nil
}

// StudentInput is the body of a create request. All fields are mandatory;
// GPA is a pointer so that an explicit 0 is distinguishable from "missing".
type StudentInput struct {
	Name               string `json:"name"               validate:"required"`
	RegistrationNumber string `json:"registrationNumber" validate:"required"`
	Major              string `json:"major"              validate:"required"`
	DateOfBirth        string `json:"dateOfBirth"        validate:"required"`
	GPA                *GPA   `json:"gpa"                validate:"required"`
}

// StudentPatch is the body of an update request. Empty strings and a nil
// GPA leave the stored value untouched.
type StudentPatch struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registrationNumber"`
	Major              string `json:"major"`
	DateOfBirth        string `json:"dateOfBirth"`
	GPA                *GPA   `json:"gpa"`
}

// Apply merges p into s. Text fields are only overwritten when non-empty,
// gpa whenever it was supplied (including 0).
func (p StudentPatch) Apply(s *Student) {
	if p.Name != "" {
		s.Name = p.Name
	}
	if p.RegistrationNumber != "" {
		s.RegistrationNumber = p.RegistrationNumber
	}
	if p.Major != "" {
		s.Major = p.Major
	}
	if p.DateOfBirth != "" {
		s.DateOfBirth = p.DateOfBirth
	}
	if p.GPA != nil {
		s.GPA = float64(*p.GPA)
	}
}

// GPA accepts either a JSON number or a numeric JSON string, since form
// clients often post the raw text of an input field.
type GPA float64

// UnmarshalJSON implements json.Unmarshaler.
func (g *GPA) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("gpa: %q is not a number", s)
		}
		// ParseFloat accepts "NaN" and "Inf", which JSON cannot encode.
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("gpa: %q is not a finite number", s)
		}
		*g = GPA(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("gpa: %w", err)
	}
	*g = GPA(f)
	return nil
}

// NewGPA returns a pointer to v, handy when building inputs in code.
func NewGPA(v float64) *GPA {
	g := GPA(v)
	return &g
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name ("registrationNumber") rather than
	// the Go field name, so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the validate:"..." tags on in. On failure the returned
// error is a validator.ValidationErrors.
func (in StudentInput) Validate() error {
	return validate.Struct(in)
}

// ToStudent converts a validated input into a record without id or
// timestamps.
func (in StudentInput) ToStudent() Student {
	s := Student{
		Name:               in.Name,
		RegistrationNumber: in.RegistrationNumber,
		Major:              in.Major,
		DateOfBirth:        in.DateOfBirth,
	}
	if in.GPA != nil {
		s.GPA = float64(*in.GPA)
	}
	return s
}
