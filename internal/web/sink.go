package web

import (
	"context"

	"github.com/ghaggin/students/internal/view"
)

// requestSink collects what one request rendered. Notices are flashed to
// the browser session by the handler.
type requestSink struct {
	model     *view.Model
	notices   []view.Notice
	confirmed bool
}

func (s *requestSink) Render(_ context.Context, m *view.Model) {
	s.model = m
}

func (s *requestSink) Notify(_ context.Context, n view.Notice) {
	s.notices = append(s.notices, n)
}

// Confirm reports whether the request came from the confirmation page.
func (s *requestSink) Confirm(_ context.Context, _ string) bool {
	return s.confirmed
}
