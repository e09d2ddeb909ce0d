// Package viewtest provides a recording view.Sink for headless tests.
package viewtest

import (
	"context"
	"sync"

	"github.com/ghaggin/students/internal/view"
)

type Recorder struct {
	mu sync.Mutex

	// Answer is returned from Confirm.
	Answer bool

	Models  []*view.Model
	Notices []view.Notice
	Prompts []string
}

func (r *Recorder) Render(_ context.Context, m *view.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Models = append(r.Models, m)
}

func (r *Recorder) Notify(_ context.Context, n view.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notices = append(r.Notices, n)
}

func (r *Recorder) Confirm(_ context.Context, prompt string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts = append(r.Prompts, prompt)
	return r.Answer
}

// Last returns the most recently rendered model, or nil.
func (r *Recorder) Last() *view.Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Models) == 0 {
		return nil
	}
	return r.Models[len(r.Models)-1]
}

// LastNotice returns the most recent notice, or the zero Notice.
func (r *Recorder) LastNotice() view.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Notices) == 0 {
		return view.Notice{}
	}
	return r.Notices[len(r.Notices)-1]
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Models = nil
	r.Notices = nil
	r.Prompts = nil
}
