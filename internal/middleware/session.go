package middleware

import (
	"context"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/students/internal/config"
	"github.com/ghaggin/students/internal/model"
	"github.com/ghaggin/students/internal/repository"
	"github.com/ghaggin/students/internal/view"
)

const (
	noticesKey = "notices"
	draftKey   = "draft"
)

// SessionManager holds per-browser state in an scs session: the durable
// session entries, flashed notices and unsubmitted form drafts.
type SessionManager struct {
	impl *scs.SessionManager
}

func NewSessionManager(cfg *config.Config) (*SessionManager, error) {
	gob.Register([]view.Notice{})
	gob.Register(model.StudentInput{})

	sm := &SessionManager{}
	sm.impl = scs.New()
	sm.impl.Cookie.Name = "students_session"
	sm.impl.Cookie.HttpOnly = true
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode
	if cfg != nil && cfg.Web.SessionLifetime > 0 {
		sm.impl.Lifetime = cfg.Web.SessionLifetime
	}

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

// Repository returns durable storage bound to the request session carried
// by ctx.
func (s *SessionManager) Repository() repository.Repository {
	return scsRepo{impl: s.impl}
}

func (s *SessionManager) AddNotices(ctx context.Context, notices ...view.Notice) {
	if len(notices) == 0 {
		return
	}
	existing, _ := s.impl.Get(ctx, noticesKey).([]view.Notice)
	s.impl.Put(ctx, noticesKey, append(existing, notices...))
}

func (s *SessionManager) PopNotices(ctx context.Context) []view.Notice {
	notices, _ := s.impl.Pop(ctx, noticesKey).([]view.Notice)
	return notices
}

func (s *SessionManager) PutDraft(ctx context.Context, in model.StudentInput) {
	if in.IsZero() {
		s.impl.Remove(ctx, draftKey)
		return
	}
	s.impl.Put(ctx, draftKey, in)
}

func (s *SessionManager) PopDraft(ctx context.Context) model.StudentInput {
	in, _ := s.impl.Pop(ctx, draftKey).(model.StudentInput)
	return in
}

type scsRepo struct {
	impl *scs.SessionManager
}

func (r scsRepo) Get(ctx context.Context, key string) (string, error) {
	v := r.impl.GetString(ctx, key)
	if v == "" {
		return "", repository.ErrNotFound
	}
	return v, nil
}

// Put writes all entries into the request session. scs commits them
// together when the response is written.
func (r scsRepo) Put(ctx context.Context, entries map[string]string) error {
	// a new login gets a new session token
	if err := r.impl.RenewToken(ctx); err != nil {
		return err
	}
	for k, v := range entries {
		r.impl.Put(ctx, k, v)
	}
	return nil
}

func (r scsRepo) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		r.impl.Remove(ctx, k)
	}
	return nil
}
