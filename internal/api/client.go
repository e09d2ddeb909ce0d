// Package api is a client for the remote students REST API.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ghaggin/students/internal/config"
	"github.com/ghaggin/students/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	studentsPath = "/api/students"
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"

	maxErrorBody = 64 << 10
)

type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     *zap.Logger
}

type Params struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

func New(p Params) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if p.Config.API.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return NewClient(p.Config.API.BaseURL, &http.Client{Transport: transport}, p.Log)
}

// NewClient creates a client for the API rooted at baseURL. No timeout is
// applied beyond what hc carries.
func NewClient(baseURL string, hc *http.Client, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}
	if hc == nil {
		hc = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	wrapped := new(http.Client)
	*wrapped = *hc
	wrapped.Transport = newLoggingRoundTripper(hc.Transport, log)

	return &Client{
		baseURL: u,
		http:    wrapped,
		log:     log,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// StudentsURL is the absolute URL of the collection endpoint.
func (c *Client) StudentsURL() string {
	return c.url(studentsPath)
}

func (c *Client) ListStudents(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := c.do(ctx, http.MethodGet, studentsPath, "", nil, &students)
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (c *Client) GetStudent(ctx context.Context, id model.StudentID) (*model.Student, error) {
	var student model.Student
	err := c.do(ctx, http.MethodGet, studentPath(id), "", nil, &student)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (c *Client) CreateStudent(ctx context.Context, token string, in model.StudentInput) (*model.Student, error) {
	var student model.Student
	err := c.do(ctx, http.MethodPost, studentsPath, token, in, &student)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (c *Client) UpdateStudent(ctx context.Context, token string, id model.StudentID, in model.StudentInput) error {
	return c.do(ctx, http.MethodPut, studentPath(id), token, in, nil)
}

func (c *Client) DeleteStudent(ctx context.Context, token string, id model.StudentID) error {
	return c.do(ctx, http.MethodDelete, studentPath(id), token, nil, nil)
}

func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.LoginResult, error) {
	var res model.LoginResult
	err := c.do(ctx, http.MethodPost, loginPath, "", creds, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, creds model.Credentials) error {
	return c.do(ctx, http.MethodPost, registerPath, "", creds, nil)
}

func studentPath(id model.StudentID) string {
	return studentsPath + "/" + url.PathEscape(id.String())
}

func (c *Client) url(path string) string {
	return c.baseURL.String() + path
}

// do issues one request. A non-empty token is sent as a bearer credential.
// out is decoded from 2xx bodies when both are non-empty.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrTransport, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &StatusError{
			StatusCode: res.StatusCode,
			Status:     http.StatusText(res.StatusCode),
			Body:       strings.TrimSpace(string(b)),
		}
	}

	if out == nil {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrTransport, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
