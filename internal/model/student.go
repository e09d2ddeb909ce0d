package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const MinBirthYear = 1900

var (
	ErrMissingFields    = errors.New("please fill in all fields")
	ErrInvalidBirthYear = errors.New("please enter a valid birth year")
)

// StudentID is server-assigned and opaque. The API may encode it as a JSON
// string or number.
type StudentID string

func (id *StudentID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = StudentID(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = StudentID(n.String())
	return nil
}

func (id StudentID) String() string {
	return string(id)
}

// Timestamp accepts RFC 3339 as well as zone-less ISO 8601 values, which
// are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

type Student struct {
	ID        StudentID `json:"id"`
	Name      string    `json:"name"`
	BirthYear int       `json:"birthYear"`
	Class     string    `json:"class"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Input returns the editable fields of the record.
func (s Student) Input() StudentInput {
	return StudentInput{
		Name:      s.Name,
		BirthYear: s.BirthYear,
		Class:     s.Class,
	}
}

// StudentInput is the request body for create and replace.
type StudentInput struct {
	Name      string `json:"name"`
	BirthYear int    `json:"birthYear"`
	Class     string `json:"class"`
}

func (in StudentInput) Normalize() StudentInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Class = strings.TrimSpace(in.Class)
	return in
}

func (in StudentInput) IsZero() bool {
	return in == StudentInput{}
}

// Validate checks the input against the record invariants. now supplies the
// current calendar year.
func (in StudentInput) Validate(now time.Time) error {
	in = in.Normalize()
	if in.Name == "" || in.Class == "" || in.BirthYear == 0 {
		return ErrMissingFields
	}
	if in.BirthYear < MinBirthYear || in.BirthYear > now.Year() {
		return ErrInvalidBirthYear
	}
	return nil
}
