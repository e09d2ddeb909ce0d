// Package students implements the record list: fetching, filtering and
// admin-only mutations against the remote API.
package students

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ghaggin/students/internal/api"
	"github.com/ghaggin/students/internal/model"
	"github.com/ghaggin/students/internal/view"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

var ErrAdminRequired = errors.New("admin role required")

const (
	msgUnauthorized = "Unauthorized - Please login again"
	msgForbidden    = "Forbidden - Admin role required"
	msgConfirm      = "Are you sure you want to delete this student?"
	msgLoadForEdit  = "Failed to load student data for editing."
	msgDeleteDenied = "Admin role required to delete students"
)

// API is the subset of the remote API used by the controller.
type API interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	GetStudent(ctx context.Context, id model.StudentID) (*model.Student, error)
	CreateStudent(ctx context.Context, token string, in model.StudentInput) (*model.Student, error)
	UpdateStudent(ctx context.Context, token string, id model.StudentID, in model.StudentInput) error
	DeleteStudent(ctx context.Context, token string, id model.StudentID) error
}

// SessionReader exposes the current session.
type SessionReader interface {
	Current() model.Session
}

// Renderer redraws the whole view from current state.
type Renderer interface {
	Render(ctx context.Context)
}

type Controller struct {
	api      API
	sessions SessionReader
	sink     view.Sink
	ui       Renderer
	clock    clockwork.Clock
	log      *zap.Logger

	// used in the troubleshooting panel
	endpoint     string
	// skip the list fetch after mutations; the caller fetches it later
	deferRefetch bool

	state view.ListState
}

type Params struct {
	API      API
	Sessions SessionReader
	Sink     view.Sink
	UI       Renderer
	Clock    clockwork.Clock
	Log      *zap.Logger
	// Endpoint is the collection URL named in diagnostics.
	Endpoint string

	// DeferRefetch leaves the list fetch after a successful mutation to the
	// caller. The view is still rendered.
	DeferRefetch bool
}

func NewController(p Params) *Controller {
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	return &Controller{
		api:          p.API,
		sessions:     p.Sessions,
		sink:         p.Sink,
		ui:           p.UI,
		clock:        p.Clock,
		log:          p.Log,
		endpoint:     p.Endpoint,
		deferRefetch: p.DeferRefetch,
	}
}

// State returns a copy of the list state.
func (c *Controller) State() view.ListState {
	s := c.state
	s.Records = append([]model.Student(nil), c.state.Records...)
	if c.state.Editing != nil {
		e := *c.state.Editing
		s.Editing = &e
	}
	return s
}

// SetDraft restores unsubmitted create form values.
func (c *Controller) SetDraft(in model.StudentInput) {
	c.state.Draft = in
}

func (c *Controller) Draft() model.StudentInput {
	return c.state.Draft
}

// List fetches all records and renders them in server order. On failure a
// diagnostic panel replaces the list.
func (c *Controller) List(ctx context.Context) error {
	c.state.Loading = true
	c.state.Failure = ""
	c.ui.Render(ctx)

	c.log.Debug("fetching students", zap.String("endpoint", c.endpoint))
	records, err := c.api.ListStudents(ctx)
	c.state.Loading = false
	if err != nil {
		c.log.Error("error loading students", zap.Error(err))
		c.state.Records = nil
		c.state.Failure = c.troubleshooting(err)
		c.ui.Render(ctx)
		return err
	}

	c.log.Debug("loaded students", zap.Int("count", len(records)))
	c.state.Records = records
	c.ui.Render(ctx)
	return nil
}

func (c *Controller) troubleshooting(err error) string {
	return fmt.Sprintf(`Failed to load students: %v.

Troubleshooting:
1. Make sure your API is running and reachable at %s
2. Check the client configuration for the API base URL and TLS settings
3. Try opening %s directly in your browser`, err, c.endpoint, c.endpoint)
}

// Filter shows only records whose rendered text contains term, ignoring
// case. It never touches the network and never drops records, so an empty
// term shows everything again.
func (c *Controller) Filter(ctx context.Context, term string) {
	c.state.Filter = term
	c.ui.Render(ctx)
}

func (c *Controller) Create(ctx context.Context, in model.StudentInput) error {
	if err := c.requireAdmin(ctx, "Admin role required to add students"); err != nil {
		return err
	}

	in = in.Normalize()
	c.state.Draft = in
	if err := c.validate(ctx, in); err != nil {
		return err
	}

	session := c.sessions.Current()
	c.log.Debug("adding student", zap.String("name", in.Name))
	created, err := c.api.CreateStudent(ctx, session.Token, in)
	if err != nil {
		c.log.Error("error adding student", zap.Error(err))
		c.sink.Notify(ctx, view.Error(failureMessage("add", err)))
		return err
	}
	if created != nil {
		c.log.Debug("student created", zap.Stringer("id", created.ID))
	}

	c.state.Draft = model.StudentInput{}
	c.refetch(ctx)
	c.sink.Notify(ctx, view.Success("Student added successfully!"))
	return nil
}

// BeginEdit loads a single record into the edit state.
func (c *Controller) BeginEdit(ctx context.Context, id model.StudentID) error {
	if err := c.requireAdmin(ctx, "Admin role required to edit students"); err != nil {
		return err
	}

	student, err := c.api.GetStudent(ctx, id)
	if err != nil {
		c.log.Error("error loading student for edit", zap.Stringer("id", id), zap.Error(err))
		c.sink.Notify(ctx, view.Error(msgLoadForEdit))
		return err
	}

	c.state.Editing = student
	c.ui.Render(ctx)
	return nil
}

// BeginDelete checks that the session may delete before any confirmation
// is shown.
func (c *Controller) BeginDelete(ctx context.Context) error {
	return c.requireAdmin(ctx, msgDeleteDenied)
}

func (c *Controller) CancelEdit(ctx context.Context) {
	c.state.Editing = nil
	c.ui.Render(ctx)
}

func (c *Controller) Update(ctx context.Context, id model.StudentID, in model.StudentInput) error {
	if err := c.requireAdmin(ctx, "Admin role required to update students"); err != nil {
		return err
	}

	in = in.Normalize()
	if err := c.validate(ctx, in); err != nil {
		c.keepEditing(ctx, id, in)
		return err
	}

	session := c.sessions.Current()
	err := c.api.UpdateStudent(ctx, session.Token, id, in)
	if err != nil {
		c.log.Error("error updating student", zap.Stringer("id", id), zap.Error(err))
		c.sink.Notify(ctx, view.Error(failureMessage("update", err)))
		c.keepEditing(ctx, id, in)
		return err
	}

	c.state.Editing = nil
	c.refetch(ctx)
	c.sink.Notify(ctx, view.Success("Student updated successfully!"))
	return nil
}

// Delete removes a record after the user confirms. Declining is not an
// error.
func (c *Controller) Delete(ctx context.Context, id model.StudentID) error {
	if err := c.requireAdmin(ctx, msgDeleteDenied); err != nil {
		return err
	}

	if !c.sink.Confirm(ctx, msgConfirm) {
		return nil
	}

	session := c.sessions.Current()
	c.log.Debug("deleting student", zap.Stringer("id", id))
	err := c.api.DeleteStudent(ctx, session.Token, id)
	if err != nil {
		c.log.Error("error deleting student", zap.Stringer("id", id), zap.Error(err))
		c.sink.Notify(ctx, view.Error(failureMessage("delete", err)))
		return err
	}

	c.refetch(ctx)
	c.sink.Notify(ctx, view.Success("Student deleted successfully!"))
	return nil
}

// keepEditing leaves the edit UI open with the submitted values.
func (c *Controller) keepEditing(ctx context.Context, id model.StudentID, in model.StudentInput) {
	s := model.Student{ID: id}
	if c.state.Editing != nil && c.state.Editing.ID == id {
		s = *c.state.Editing
	}
	s.Name, s.BirthYear, s.Class = in.Name, in.BirthYear, in.Class
	c.state.Editing = &s
	c.ui.Render(ctx)
}

func (c *Controller) refetch(ctx context.Context) {
	if c.deferRefetch {
		c.ui.Render(ctx)
		return
	}
	_ = c.List(ctx)
}

func (c *Controller) requireAdmin(ctx context.Context, msg string) error {
	if c.sessions.Current().Capability().CanWrite {
		return nil
	}
	c.sink.Notify(ctx, view.Error(msg))
	return ErrAdminRequired
}

func (c *Controller) validate(ctx context.Context, in model.StudentInput) error {
	err := in.Validate(c.clock.Now())
	switch {
	case errors.Is(err, model.ErrMissingFields):
		c.sink.Notify(ctx, view.Error("Please fill in all fields"))
	case errors.Is(err, model.ErrInvalidBirthYear):
		c.sink.Notify(ctx, view.Error(fmt.Sprintf("Please enter a valid birth year (%d-%d)", model.MinBirthYear, c.clock.Now().Year())))
	}
	return err
}

func failureMessage(action string, err error) string {
	var se *api.StatusError
	if !errors.As(err, &se) {
		return fmt.Sprintf("Failed to %s student: %v", action, err)
	}
	switch se.StatusCode {
	case http.StatusUnauthorized:
		return msgUnauthorized
	case http.StatusForbidden:
		return msgForbidden
	default:
		return fmt.Sprintf("Failed to %s student: Server returned %d: %s", action, se.StatusCode, se.Text())
	}
}
