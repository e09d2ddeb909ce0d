package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/ghaggin/students/internal/app"
	"github.com/ghaggin/students/internal/model"
	"github.com/ghaggin/students/internal/template"
	"github.com/ghaggin/students/internal/view"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// newApp builds a client whose durable storage is the browser session of
// the current request. The persisted session is not loaded yet. With
// deferRefetch the list is not fetched after changes; form posts redirect
// to the index, which fetches it.
func (s *Server) newApp(deferRefetch bool) (*app.App, *requestSink) {
	sink := &requestSink{}
	a := app.NewFromClient(s.api, app.Params{
		Repository:   s.sessions.Repository(),
		Sink:         sink,
		Clock:        s.clock,
		Log:          s.log,
		DeferRefetch: deferRefetch,
	})
	return a, sink
}

// loadApp is newApp with the persisted session loaded, for form posts.
func (s *Server) loadApp(w http.ResponseWriter, r *http.Request) (*app.App, *requestSink, bool) {
	a, sink := s.newApp(true)
	if err := a.Session.Load(r.Context()); err != nil {
		s.log.Error("failed loading session", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, nil, false
	}
	return a, sink, true
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, sink := s.newApp(false)

	if r.URL.Query().Get("form") == "register" {
		a.Auth.ShowForm(ctx, view.FormRegister)
	}
	a.Students.SetDraft(s.sessions.PopDraft(ctx))
	_ = a.Auth.Restore(ctx)
	if q := r.URL.Query().Get("q"); q != "" {
		a.Students.Filter(ctx, q)
	}

	notices := append(s.sessions.PopNotices(ctx), sink.notices...)
	s.render(w, r, "index.html", &template.Data{
		PageTitle: "Students",
		Model:     a.Model(),
		Notices:   notices,
		MaxYear:   s.clock.Now().Year(),
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	a, sink, ok := s.loadApp(w, r)
	if !ok {
		return
	}
	_ = a.Auth.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	s.redirect(w, r, sink, "/")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	a, sink, ok := s.loadApp(w, r)
	if !ok {
		return
	}
	a.Auth.ShowForm(r.Context(), view.FormRegister)
	_ = a.Auth.Register(r.Context(), r.FormValue("username"), r.FormValue("password"))

	target := "/"
	if a.Auth.Form() == view.FormRegister {
		target = "/?form=register"
	}
	s.redirect(w, r, sink, target)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	a, sink, ok := s.loadApp(w, r)
	if !ok {
		return
	}
	_ = a.Auth.Logout(r.Context())
	s.redirect(w, r, sink, "/")
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	a, sink, ok := s.loadApp(w, r)
	if !ok {
		return
	}
	err := a.Students.Create(r.Context(), studentInput(r))
	if err != nil {
		s.sessions.PutDraft(r.Context(), a.Students.Draft())
	}
	s.redirect(w, r, sink, "/")
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	a, sink, ok := s.loadApp(w, r)
	if !ok {
		return
	}
	err := a.Students.BeginEdit(r.Context(), studentID(r))
	if err != nil {
		s.redirect(w, r, sink, "/")
		return
	}

	s.renderEdit(w, r, a, sink)
}

// update re-renders the edit form with the submitted values when the update
// fails, so nothing typed is lost.
func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	a, sink, ok := s.loadApp(w, r)
	if !ok {
		return
	}
	err := a.Students.Update(r.Context(), studentID(r), studentInput(r))
	if err != nil && a.Students.State().Editing != nil {
		s.renderEdit(w, r, a, sink)
		return
	}
	s.redirect(w, r, sink, "/")
}

func (s *Server) renderEdit(w http.ResponseWriter, r *http.Request, a *app.App, sink *requestSink) {
	s.render(w, r, "edit.html", &template.Data{
		PageTitle: "Edit Student",
		Model:     a.Model(),
		Notices:   sink.notices,
		MaxYear:   s.clock.Now().Year(),
	})
}

func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	a, sink, ok := s.loadApp(w, r)
	if !ok {
		return
	}
	if err := a.Students.BeginDelete(r.Context()); err != nil {
		s.redirect(w, r, sink, "/")
		return
	}
	s.render(w, r, "confirm.html", &template.Data{
		PageTitle: "Delete Student",
		Model:     a.Model(),
		ID:        studentID(r).String(),
	})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	a, sink, ok := s.loadApp(w, r)
	if !ok {
		return
	}
	sink.confirmed = r.FormValue("confirm") == "yes"
	_ = a.Students.Delete(r.Context(), studentID(r))
	s.redirect(w, r, sink, "/")
}

// redirect flashes the request's notices and sends the browser back to a
// page that re-fetches the list.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, sink *requestSink, target string) {
	s.sessions.AddNotices(r.Context(), sink.notices...)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, tmpl string, data *template.Data) {
	err := template.Render(w, r, tmpl, data)
	if err != nil {
		s.log.Error("error rendering template", zap.String("template", tmpl), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// studentID reads the id path segment. chi matches on the escaped path, so
// the segment is unescaped here.
func studentID(r *http.Request) model.StudentID {
	id := chi.URLParam(r, "id")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	return model.StudentID(id)
}

// studentInput reads the form; an unparsable birth year reads as missing.
func studentInput(r *http.Request) model.StudentInput {
	year, _ := strconv.Atoi(r.FormValue("birthYear"))
	return model.StudentInput{
		Name:      r.FormValue("name"),
		BirthYear: year,
		Class:     r.FormValue("class"),
	}
}
