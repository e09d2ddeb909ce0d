// Package view maps client state to a presentation model and defines the
// sink that displays it.
package view

import "context"

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "success"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a user-facing message. Error notices block further interaction
// until dismissed where the sink supports it.
type Notice struct {
	Kind    NoticeKind
	Message string
}

func Success(msg string) Notice { return Notice{Kind: NoticeSuccess, Message: msg} }
func Error(msg string) Notice   { return Notice{Kind: NoticeError, Message: msg} }
func Info(msg string) Notice    { return Notice{Kind: NoticeInfo, Message: msg} }

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Sink is the presentation layer.
type Sink interface {
	Notifier
	Render(ctx context.Context, m *Model)
	// Confirm asks the user to approve a destructive action.
	Confirm(ctx context.Context, prompt string) bool
}
