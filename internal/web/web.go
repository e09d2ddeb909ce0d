// Package web serves the student client as server-rendered HTML.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ghaggin/students/internal/api"
	"github.com/ghaggin/students/internal/config"
	"github.com/ghaggin/students/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	log      *zap.Logger
	api      *api.Client
	sessions *middleware.SessionManager
	clock    clockwork.Clock
	server   *http.Server
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	API      *api.Client
	Sessions *middleware.SessionManager
	Clock    clockwork.Clock
}

func New(p Params) (*Server, error) {
	s := &Server{
		log:      p.Log,
		api:      p.API,
		sessions: p.Sessions,
		clock:    p.Clock,
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", p.Config.Web.Port),
		Handler: s.Handler(),
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	root := chi.NewRouter()
	root.Use(s.sessions.Wrap)

	root.Get("/", s.index)

	root.Post("/login", s.login)
	root.Post("/register", s.register)
	root.Post("/logout", s.logout)

	root.Route("/students", func(r chi.Router) {
		r.Post("/", s.create)
		r.Get("/{id}/edit", s.edit)
		r.Post("/{id}", s.update)
		r.Get("/{id}/delete", s.confirmDelete)
		r.Post("/{id}/delete", s.delete)
	})

	return root
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.server.Shutdown,
	})
}

func (s *Server) Start(_ context.Context) error {
	s.log.Info("serving student client", zap.String("addr", "http://"+s.server.Addr), zap.String("api", s.api.BaseURL()))
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error starting server", zap.Error(err))
		}
	}()
	return nil
}
