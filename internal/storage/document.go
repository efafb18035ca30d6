package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aanand-mishra/students-roster/internal/types"
)

// Seed returns the records a brand-new document starts with.
func Seed(now time.Time) []types.Student {
	ts := types.NewTimestamp(now)
	return []types.Student{
		{
			ID:                 1,
			Name:               "Faith Adegoke",
			RegistrationNumber: "2024001",
			Major:              "Computer Science",
			DateOfBirth:        "2002-03-15",
			GPA:                3.8,
			CreatedAt:          ts,
			UpdatedAt:          ts,
		},
		{
			ID:                 2,
			Name:               "Cynthia Mgbakogu",
			RegistrationNumber: "2024002",
			Major:              "Engineering",
			DateOfBirth:        "2001-07-22",
			GPA:                3.9,
			CreatedAt:          ts,
			UpdatedAt:          ts,
		},
		{
			ID:                 3,
			Name:               "Habibat Mohammed",
			RegistrationNumber: "2024003",
			Major:              "Human resource",
			DateOfBirth:        "2002-11-08",
			GPA:                3.6,
			CreatedAt:          ts,
			UpdatedAt:          ts,
		},
	}
}

// Encode renders students as a JSON array indented with two spaces.
// A nil slice is written as [] rather than null.
func Encode(students []types.Student) ([]byte, error) {
	if students == nil {
		students = []types.Student{}
	}
	b, err := json.MarshalIndent(students, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode students: %w", err)
	}
	return b, nil
}

// Decode parses a document body. A literal null decodes to an empty slice.
func Decode(b []byte) ([]types.Student, error) {
	var students []types.Student
	if err := json.Unmarshal(bytes.TrimSpace(b), &students); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	if students == nil {
		students = []types.Student{}
	}
	return students, nil
}
