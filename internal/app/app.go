// Package app assembles one client: a session store, the auth controller and
// the record list controller sharing a single presentation sink.
package app

import (
	"context"
	"time"

	"github.com/ghaggin/students/internal/api"
	"github.com/ghaggin/students/internal/auth"
	"github.com/ghaggin/students/internal/repository"
	"github.com/ghaggin/students/internal/session"
	"github.com/ghaggin/students/internal/students"
	"github.com/ghaggin/students/internal/view"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// API is the remote API as used by both controllers.
type API interface {
	auth.Authenticator
	students.API
}

type App struct {
	Session  *session.Store
	Auth     *auth.Controller
	Students *students.Controller

	sink view.Sink
	loc  *time.Location
	log  *zap.Logger

	deferRefetch bool
}

type Params struct {
	API        API
	Repository repository.Repository
	Sink       view.Sink
	Clock      clockwork.Clock
	Log        *zap.Logger
	// Endpoint is the students collection URL shown in diagnostics.
	Endpoint string
	// Location for displayed timestamps; defaults to time.Local.
	Location *time.Location
	// DeferRefetch makes refreshes render only. The caller fetches the list
	// itself, e.g. on the page a form post redirects to.
	DeferRefetch bool
}

func New(p Params) *App {
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	if p.Location == nil {
		p.Location = time.Local
	}

	a := &App{
		sink: p.Sink,
		loc:  p.Location,
		log:  p.Log,

		deferRefetch: p.DeferRefetch,
	}
	a.Session = session.NewStore(p.Repository, p.Log.Named("session"))
	a.Students = students.NewController(students.Params{
		API:      p.API,
		Sessions: a.Session,
		Sink:     p.Sink,
		UI:       a,
		Clock:    p.Clock,
		Log:      p.Log.Named("students"),
		Endpoint: p.Endpoint,

		DeferRefetch: p.DeferRefetch,
	})
	a.Auth = auth.NewController(auth.Params{
		API:      p.API,
		Sessions: a.Session,
		Notifier: p.Sink,
		UI:       a,
		Log:      p.Log.Named("auth"),
	})
	return a
}

// NewFromClient is New for the HTTP API client.
func NewFromClient(c *api.Client, p Params) *App {
	p.API = c
	if p.Endpoint == "" {
		p.Endpoint = c.StudentsURL()
	}
	return New(p)
}

// Model builds the current view model.
func (a *App) Model() *view.Model {
	return view.Build(a.Session.Current(), a.Auth.Form(), a.Students.State(), a.loc)
}

func (a *App) Render(ctx context.Context) {
	a.sink.Render(ctx, a.Model())
}

// Refresh redraws the auth widgets and re-fetches the record list under the
// current role.
func (a *App) Refresh(ctx context.Context) {
	if a.deferRefetch {
		a.Render(ctx)
		return
	}
	_ = a.Students.List(ctx)
}
