package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ghaggin/students/internal/view"
)

// Sink is a terminal presentation sink. Notices are written as they happen;
// the rendered model is kept and printed once the command finishes.
type Sink struct {
	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader

	// AssumeYes answers every confirmation prompt with yes.
	AssumeYes bool

	last *view.Model
}

func NewSink(in io.Reader, out, errOut io.Writer) *Sink {
	return &Sink{
		out:    out,
		errOut: errOut,
		in:     bufio.NewReader(in),
	}
}

func (s *Sink) Render(_ context.Context, m *view.Model) {
	s.last = m
}

func (s *Sink) Notify(_ context.Context, n view.Notice) {
	prefix := "info:"
	switch n.Kind {
	case view.NoticeSuccess:
		prefix = "ok:"
	case view.NoticeError:
		prefix = "error:"
	}
	fmt.Fprintln(s.errOut, prefix, n.Message)
}

func (s *Sink) Confirm(_ context.Context, prompt string) bool {
	if s.AssumeYes {
		return true
	}
	fmt.Fprintf(s.out, "%s [y/N] ", prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(s.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// Flush prints the last rendered record list, if any.
func (s *Sink) Flush() {
	m := s.last
	if m == nil || m.Loading {
		return
	}

	if m.Failure != "" {
		fmt.Fprintln(s.errOut, m.Failure)
		return
	}
	if m.Empty {
		fmt.Fprintln(s.out, "No students found.")
		return
	}
	if m.NoMatches {
		fmt.Fprintln(s.out, "No students match your search.")
		return
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBIRTH YEAR\tCLASS\tCREATED")
	for _, r := range m.Records {
		if !r.Visible {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.ID, r.Name, r.BirthYear, r.Class, r.Created)
	}
	_ = tw.Flush()

	if m.Capability.CanWrite {
		fmt.Fprintln(s.out, "\nactions: edit -id <id>, delete -id <id>")
	}
}
