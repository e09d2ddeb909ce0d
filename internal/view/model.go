package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/ghaggin/students/internal/model"
)

const createdLayout = "2006-01-02 15:04:05"

type AuthForm int

const (
	FormLogin AuthForm = iota
	FormRegister
)

// ListState is the record list controller's state.
type ListState struct {
	Loading bool
	// Failure is the diagnostic shown in place of the list when fetching
	// failed.
	Failure string
	Records []model.Student
	Filter  string
	Draft   model.StudentInput
	Editing *model.Student
}

type Auth struct {
	LoggedIn bool
	Username string
	Role     string
	IsAdmin  bool
	Form     AuthForm
}

type Record struct {
	ID        string
	Name      string
	BirthYear int
	Class     string
	Created   string
	Visible   bool
	// ShowActions controls the edit and delete buttons.
	ShowActions bool
}

// Text is the rendered text of the record as a filter sees it.
func (r Record) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nBirth Year: %d\nClass: %s", r.Name, r.BirthYear, r.Class)
	if r.Created != "" {
		fmt.Fprintf(&b, "\nCreated: %s", r.Created)
	}
	return b.String()
}

func (r Record) Matches(term string) bool {
	return strings.Contains(strings.ToLower(r.Text()), strings.ToLower(term))
}

type Model struct {
	Auth       Auth
	Capability model.Capability

	Loading bool
	Failure string
	Records []Record
	// Empty is set when the server returned no records at all.
	Empty bool
	// NoMatches is set when a non-empty filter hid every record.
	NoMatches bool
	Filter    string
	Visible   int

	Draft   model.StudentInput
	Editing *Record
}

// Build maps state to a view model. It has no side effects.
func Build(s model.Session, form AuthForm, list ListState, loc *time.Location) *Model {
	capability := s.Capability()

	m := &Model{
		Auth:       Auth{Form: form},
		Capability: capability,
		Loading:    list.Loading,
		Failure:    list.Failure,
		Filter:     list.Filter,
		Draft:      list.Draft,
	}
	if s.Authenticated() {
		m.Auth.LoggedIn = true
		m.Auth.Username = s.Identity.Username
		m.Auth.Role = string(s.Identity.Role)
		m.Auth.IsAdmin = s.Identity.IsAdmin()
	}

	if list.Loading || list.Failure != "" {
		return m
	}

	m.Records = make([]Record, 0, len(list.Records))
	for _, st := range list.Records {
		r := newRecord(st, capability, loc)
		r.Visible = list.Filter == "" || r.Matches(list.Filter)
		if r.Visible {
			m.Visible++
		}
		m.Records = append(m.Records, r)
	}
	m.Empty = len(list.Records) == 0
	m.NoMatches = !m.Empty && list.Filter != "" && m.Visible == 0

	if list.Editing != nil {
		r := newRecord(*list.Editing, capability, loc)
		r.Visible = true
		m.Editing = &r
	}

	return m
}

func newRecord(s model.Student, c model.Capability, loc *time.Location) Record {
	r := Record{
		ID:          s.ID.String(),
		Name:        s.Name,
		BirthYear:   s.BirthYear,
		Class:       s.Class,
		ShowActions: c.CanWrite,
	}
	if !s.CreatedAt.IsZero() {
		if loc == nil {
			loc = time.Local
		}
		r.Created = s.CreatedAt.In(loc).Format(createdLayout)
	}
	return r
}
