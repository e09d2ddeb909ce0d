package students

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ghaggin/students/internal/api"
	"github.com/ghaggin/students/internal/model"
	"github.com/ghaggin/students/internal/view"
	"github.com/ghaggin/students/internal/view/viewtest"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	records []model.Student
	listErr error
	mutErr  error
	getErr  error

	calls  []string
	tokens []string
	inputs []model.StudentInput
}

func (f *fakeAPI) ListStudents(context.Context) ([]model.Student, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Student(nil), f.records...), nil
}

func (f *fakeAPI) GetStudent(_ context.Context, id model.StudentID) (*model.Student, error) {
	f.calls = append(f.calls, "get")
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, r := range f.records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, &api.StatusError{StatusCode: http.StatusNotFound}
}

func (f *fakeAPI) CreateStudent(_ context.Context, token string, in model.StudentInput) (*model.Student, error) {
	f.calls = append(f.calls, "create")
	f.tokens = append(f.tokens, token)
	f.inputs = append(f.inputs, in)
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	s := model.Student{ID: "new", Name: in.Name, BirthYear: in.BirthYear, Class: in.Class}
	f.records = append(f.records, s)
	return &s, nil
}

func (f *fakeAPI) UpdateStudent(_ context.Context, token string, id model.StudentID, in model.StudentInput) error {
	f.calls = append(f.calls, "update")
	f.tokens = append(f.tokens, token)
	f.inputs = append(f.inputs, in)
	if f.mutErr != nil {
		return f.mutErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Name = in.Name
			f.records[i].BirthYear = in.BirthYear
			f.records[i].Class = in.Class
		}
	}
	return nil
}

func (f *fakeAPI) DeleteStudent(_ context.Context, token string, id model.StudentID) error {
	f.calls = append(f.calls, "delete")
	f.tokens = append(f.tokens, token)
	if f.mutErr != nil {
		return f.mutErr
	}
	kept := f.records[:0]
	for _, r := range f.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

type harness struct {
	ctrl    *Controller
	api     *fakeAPI
	sink    *viewtest.Recorder
	session model.Session
}

func (h *harness) Current() model.Session { return h.session }

func (h *harness) Render(ctx context.Context) {
	h.sink.Render(ctx, view.Build(h.session, view.FormLogin, h.ctrl.State(), time.UTC))
}

func newHarness(session model.Session) *harness {
	h := &harness{
		api: &fakeAPI{records: []model.Student{
			{ID: "1", Name: "Ana", BirthYear: 2005, Class: "5A"},
			{ID: "2", Name: "Ben", BirthYear: 2004, Class: "6B"},
		}},
		sink:    &viewtest.Recorder{},
		session: session,
	}
	h.ctrl = NewController(Params{
		API:      h.api,
		Sessions: h,
		Sink:     h.sink,
		UI:       h,
		Clock:    clockwork.NewFakeClockAt(time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC)),
		Endpoint: "https://localhost:7247/api/students",
	})
	return h
}

var (
	anonymous = model.Session{}
	admin     = model.Session{Token: "admintok", Identity: &model.Identity{Username: "root", Role: model.RoleAdmin}}
	nonAdmin  = model.Session{Token: "usertok", Identity: &model.Identity{Username: "joe", Role: "User"}}
)

func TestListAnonymous(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	h := newHarness(anonymous)

	require.NoError(h.ctrl.List(context.Background()))

	require.Len(h.sink.Models, 2)
	assert.True(h.sink.Models[0].Loading)

	m := h.sink.Last()
	require.Len(m.Records, 2)
	assert.Equal("Ana", m.Records[0].Name)
	assert.Equal("Ben", m.Records[1].Name)
	for _, r := range m.Records {
		assert.True(r.Visible)
		assert.False(r.ShowActions)
	}
}

func TestListFailureShowsPanel(t *testing.T) {
	h := newHarness(anonymous)
	h.api.listErr = &api.StatusError{StatusCode: http.StatusInternalServerError, Status: "Internal Server Error"}

	err := h.ctrl.List(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"list"}, h.api.calls)

	m := h.sink.Last()
	assert.Contains(t, m.Failure, "status: 500")
	assert.Contains(t, m.Failure, "Troubleshooting:")
	assert.Contains(t, m.Failure, "https://localhost:7247/api/students")
	assert.Empty(t, h.sink.Notices)
}

func TestCreateAsAdmin(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	h := newHarness(admin)
	require.NoError(h.ctrl.List(ctx))
	h.api.calls = nil

	err := h.ctrl.Create(ctx, model.StudentInput{Name: " Ana ", BirthYear: 2005, Class: "5A"})
	require.NoError(err)

	assert.Equal([]string{"create", "list"}, h.api.calls)
	assert.Equal([]string{"admintok"}, h.api.tokens)
	assert.Equal(model.StudentInput{Name: "Ana", BirthYear: 2005, Class: "5A"}, h.api.inputs[0])
	assert.True(h.ctrl.Draft().IsZero())
	assert.Len(h.sink.Last().Records, 3)
	assert.Equal(view.Success("Student added successfully!"), h.sink.LastNotice())
}

func TestMutationsRejectedForNonAdmin(t *testing.T) {
	for _, session := range []model.Session{anonymous, nonAdmin} {
		t.Run(session.State().String(), func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(session)
			h.sink.Answer = true

			in := model.StudentInput{Name: "Ana", BirthYear: 2005, Class: "5A"}
			assert.ErrorIs(t, h.ctrl.Create(ctx, in), ErrAdminRequired)
			assert.ErrorIs(t, h.ctrl.Update(ctx, "1", in), ErrAdminRequired)
			assert.ErrorIs(t, h.ctrl.Delete(ctx, "1"), ErrAdminRequired)
			assert.ErrorIs(t, h.ctrl.BeginEdit(ctx, "1"), ErrAdminRequired)

			assert.Empty(t, h.api.calls)
			assert.Empty(t, h.sink.Prompts)
			require.Len(t, h.sink.Notices, 4)
			for _, n := range h.sink.Notices {
				assert.Equal(t, view.NoticeError, n.Kind)
				assert.Contains(t, n.Message, "Admin role required")
			}
		})
	}
}

func TestValidationRejectsLocally(t *testing.T) {
	tests := []struct {
		name string
		in   model.StudentInput
		msg  string
	}{
		{"blank name", model.StudentInput{Name: " ", BirthYear: 2005, Class: "5A"}, "Please fill in all fields"},
		{"too old", model.StudentInput{Name: "Ana", BirthYear: 1899, Class: "5A"}, "Please enter a valid birth year (1900-2026)"},
		{"future", model.StudentInput{Name: "Ana", BirthYear: 2027, Class: "5A"}, "Please enter a valid birth year (1900-2026)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(admin)

			assert.Error(t, h.ctrl.Create(ctx, tt.in))
			assert.Error(t, h.ctrl.Update(ctx, "1", tt.in))
			assert.Empty(t, h.api.calls)
			assert.Equal(t, view.Error(tt.msg), h.sink.LastNotice())
		})
	}
}

func TestCreateFailureKeepsDraft(t *testing.T) {
	h := newHarness(admin)
	h.api.mutErr = &api.StatusError{StatusCode: http.StatusBadRequest, Body: "Class is too long"}

	in := model.StudentInput{Name: "Ana", BirthYear: 2005, Class: "5A"}
	err := h.ctrl.Create(context.Background(), in)
	assert.Error(t, err)
	assert.Equal(t, in, h.ctrl.Draft())
	assert.Equal(t, []string{"create"}, h.api.calls)
	assert.Equal(t, view.Error("Failed to add student: Server returned 400: Class is too long"), h.sink.LastNotice())
}

func TestFailureTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"unauthorized", &api.StatusError{StatusCode: http.StatusUnauthorized}, "Unauthorized - Please login again"},
		{"forbidden", &api.StatusError{StatusCode: http.StatusForbidden}, "Forbidden - Admin role required"},
		{"other", &api.StatusError{StatusCode: http.StatusInternalServerError, Status: "Internal Server Error"},
			"Failed to delete student: Server returned 500: Internal Server Error"},
		{"transport", api.ErrTransport, "Failed to delete student: " + api.ErrTransport.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(admin)
			h.sink.Answer = true
			h.api.mutErr = tt.err

			err := h.ctrl.Delete(context.Background(), "1")
			assert.True(t, errors.Is(err, tt.err))
			// no refetch after a failed mutation
			assert.Equal(t, []string{"delete"}, h.api.calls)
			assert.Equal(t, view.Error(tt.msg), h.sink.LastNotice())
		})
	}
}

func TestDeleteConfirmed(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	h := newHarness(admin)
	h.sink.Answer = true

	require.NoError(h.ctrl.Delete(ctx, "1"))
	assert.Equal([]string{"Are you sure you want to delete this student?"}, h.sink.Prompts)
	assert.Equal([]string{"delete", "list"}, h.api.calls)
	require.Len(h.sink.Last().Records, 1)
	assert.Equal("Ben", h.sink.Last().Records[0].Name)
	assert.Equal(view.Success("Student deleted successfully!"), h.sink.LastNotice())
}

func TestDeleteDeclined(t *testing.T) {
	h := newHarness(admin)
	h.sink.Answer = false

	assert.NoError(t, h.ctrl.Delete(context.Background(), "1"))
	assert.Len(t, h.sink.Prompts, 1)
	assert.Empty(t, h.api.calls)
	assert.Empty(t, h.sink.Notices)
}

func TestEditFlow(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	h := newHarness(admin)

	require.NoError(h.ctrl.BeginEdit(ctx, "2"))
	m := h.sink.Last()
	require.NotNil(m.Editing)
	assert.Equal("Ben", m.Editing.Name)

	require.NoError(h.ctrl.Update(ctx, "2", model.StudentInput{Name: "Benjamin", BirthYear: 2004, Class: "6B"}))
	assert.Equal([]string{"get", "update", "list"}, h.api.calls)
	assert.Equal([]string{"admintok"}, h.api.tokens)
	assert.Nil(h.ctrl.State().Editing)
	assert.Equal("Benjamin", h.sink.Last().Records[1].Name)
	assert.Equal(view.Success("Student updated successfully!"), h.sink.LastNotice())
}

func TestBeginEditFailure(t *testing.T) {
	h := newHarness(admin)
	h.api.getErr = &api.StatusError{StatusCode: http.StatusNotFound}

	assert.Error(t, h.ctrl.BeginEdit(context.Background(), "9"))
	assert.Nil(t, h.ctrl.State().Editing)
	assert.Equal(t, view.Error("Failed to load student data for editing."), h.sink.LastNotice())
}

func TestCancelEdit(t *testing.T) {
	ctx := context.Background()
	h := newHarness(admin)
	require.NoError(t, h.ctrl.BeginEdit(ctx, "1"))

	h.ctrl.CancelEdit(ctx)
	assert.Nil(t, h.sink.Last().Editing)
	assert.Equal(t, []string{"get"}, h.api.calls)
}

func TestFilterIsLocalAndRecoverable(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	h := newHarness(anonymous)
	require.NoError(h.ctrl.List(ctx))
	h.api.calls = nil

	h.ctrl.Filter(ctx, "ANA")
	m := h.sink.Last()
	assert.Equal(1, m.Visible)
	assert.True(m.Records[0].Visible)

	h.ctrl.Filter(ctx, "nobody")
	m = h.sink.Last()
	assert.True(m.NoMatches)
	assert.Zero(m.Visible)

	h.ctrl.Filter(ctx, "")
	m = h.sink.Last()
	assert.False(m.NoMatches)
	assert.Equal(2, m.Visible)
	assert.Len(m.Records, 2)

	assert.Empty(h.api.calls)
}

func TestUpdateFailureKeepsEditing(t *testing.T) {
	tests := []struct {
		name   string
		mutErr error
		in     model.StudentInput
		calls  []string
	}{
		{"invalid year", nil, model.StudentInput{Name: "Benny", BirthYear: 1850, Class: "6B"}, []string{"get"}},
		{"server error", &api.StatusError{StatusCode: http.StatusInternalServerError},
			model.StudentInput{Name: "Benny", BirthYear: 2004, Class: "7C"}, []string{"get", "update"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(admin)
			require.NoError(t, h.ctrl.BeginEdit(ctx, "2"))
			h.api.mutErr = tt.mutErr

			assert.Error(t, h.ctrl.Update(ctx, "2", tt.in))
			assert.Equal(t, tt.calls, h.api.calls)

			editing := h.sink.Last().Editing
			require.NotNil(t, editing)
			assert.Equal(t, "2", editing.ID)
			assert.Equal(t, tt.in.Name, editing.Name)
			assert.Equal(t, tt.in.BirthYear, editing.BirthYear)
			assert.Equal(t, tt.in.Class, editing.Class)
		})
	}
}

func TestDeferRefetch(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	h := newHarness(admin)
	h.ctrl = NewController(Params{
		API:          h.api,
		Sessions:     h,
		Sink:         h.sink,
		UI:           h,
		Clock:        clockwork.NewFakeClockAt(time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC)),
		DeferRefetch: true,
	})
	h.sink.Answer = true

	require.NoError(h.ctrl.Create(ctx, model.StudentInput{Name: "Cleo", BirthYear: 2006, Class: "4C"}))
	require.NoError(h.ctrl.Delete(ctx, "1"))
	assert.Equal([]string{"create", "delete"}, h.api.calls)
	assert.Equal(view.Success("Student deleted successfully!"), h.sink.LastNotice())
	assert.NotEmpty(h.sink.Models)
}

func TestBeginDelete(t *testing.T) {
	ctx := context.Background()

	h := newHarness(anonymous)
	assert.ErrorIs(t, h.ctrl.BeginDelete(ctx), ErrAdminRequired)
	assert.Equal(t, view.Error("Admin role required to delete students"), h.sink.LastNotice())
	assert.Empty(t, h.sink.Prompts)

	h = newHarness(admin)
	assert.NoError(t, h.ctrl.BeginDelete(ctx))
	assert.Empty(t, h.sink.Notices)
	assert.Empty(t, h.api.calls)
}
