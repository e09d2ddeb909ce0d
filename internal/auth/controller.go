// Package auth drives login, registration and logout and keeps the session
// store in step with them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ghaggin/students/internal/api"
	"github.com/ghaggin/students/internal/model"
	"github.com/ghaggin/students/internal/view"
	"go.uber.org/zap"
)

var (
	ErrMissingCredentials   = errors.New("username and password are required")
	ErrInvalidLoginResponse = errors.New("login response is missing token or username")
)

type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (*model.LoginResult, error)
	Register(ctx context.Context, creds model.Credentials) error
}

// SessionStore is the durable session the controller writes to.
type SessionStore interface {
	Load(ctx context.Context) error
	Save(ctx context.Context, token string, identity model.Identity) error
	Clear(ctx context.Context) error
	Current() model.Session
}

// UI is notified after state changes. Refresh runs once per session change
// and redraws both the auth widgets and the record list; Render only
// redraws.
type UI interface {
	Render(ctx context.Context)
	Refresh(ctx context.Context)
}

type Controller struct {
	api      Authenticator
	sessions SessionStore
	notifier view.Notifier
	ui       UI
	log      *zap.Logger

	form view.AuthForm
}

type Params struct {
	API      Authenticator
	Sessions SessionStore
	Notifier view.Notifier
	UI       UI
	Log      *zap.Logger
}

func NewController(p Params) *Controller {
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	return &Controller{
		api:      p.API,
		sessions: p.Sessions,
		notifier: p.Notifier,
		ui:       p.UI,
		log:      p.Log,
	}
}

// Form is the auth form currently presented to anonymous users.
func (c *Controller) Form() view.AuthForm {
	return c.form
}

func (c *Controller) ShowForm(ctx context.Context, f view.AuthForm) {
	c.form = f
	c.ui.Render(ctx)
}

// Restore loads the persisted session at startup and refreshes the UI with
// whatever was found.
func (c *Controller) Restore(ctx context.Context) error {
	err := c.sessions.Load(ctx)
	if err != nil {
		c.log.Warn("failed restoring session", zap.Error(err))
	}
	c.ui.Refresh(ctx)
	return err
}

// Login exchanges credentials for a token. The session is left unchanged on
// any failure.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	creds, err := credentials(username, password)
	if err != nil {
		c.notifier.Notify(ctx, view.Error("Please enter username and password"))
		return err
	}

	res, err := c.api.Login(ctx, creds)
	if err == nil && (res == nil || res.Token == "" || res.Username == "") {
		err = ErrInvalidLoginResponse
	}
	if err != nil {
		c.log.Warn("login failed", zap.String("username", creds.Username), zap.Error(err))
		c.notifier.Notify(ctx, view.Error(loginFailure(err)))
		return err
	}

	identity := model.Identity{Username: res.Username, Role: res.Role}
	if err := c.sessions.Save(ctx, res.Token, identity); err != nil {
		c.log.Error("failed saving session", zap.Error(err))
		c.notifier.Notify(ctx, view.Error("Login failed: could not store session"))
		return err
	}

	c.log.Info("logged in", zap.String("username", identity.Username), zap.String("role", string(identity.Role)))
	c.form = view.FormLogin
	c.ui.Refresh(ctx)
	return nil
}

func loginFailure(err error) string {
	if api.StatusCode(err) != 0 {
		return "Login failed: invalid username or password"
	}
	return fmt.Sprintf("Login failed: %v", err)
}

// Register creates an account. On success the login form is presented.
func (c *Controller) Register(ctx context.Context, username, password string) error {
	creds, err := credentials(username, password)
	if err != nil {
		c.notifier.Notify(ctx, view.Error("Please enter username and password"))
		return err
	}

	err = c.api.Register(ctx, creds)
	if err != nil {
		c.log.Warn("registration failed", zap.String("username", creds.Username), zap.Error(err))
		c.notifier.Notify(ctx, view.Error("Registration failed: "+registerFailure(err)))
		return err
	}

	c.notifier.Notify(ctx, view.Success("Registration successful! Please login."))
	c.ShowForm(ctx, view.FormLogin)
	return nil
}

func registerFailure(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		return se.Text()
	}
	return err.Error()
}

// Logout is local only: the session is cleared and no server call is made.
func (c *Controller) Logout(ctx context.Context) error {
	err := c.sessions.Clear(ctx)
	if err != nil {
		c.log.Error("failed clearing session", zap.Error(err))
	}
	c.ui.Refresh(ctx)
	return err
}

func credentials(username, password string) (model.Credentials, error) {
	creds := model.Credentials{
		Username: strings.TrimSpace(username),
		Password: password,
	}
	if creds.Username == "" || creds.Password == "" {
		return model.Credentials{}, ErrMissingCredentials
	}
	return creds, nil
}
