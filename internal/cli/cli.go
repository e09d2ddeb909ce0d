// Package cli runs the student client as terminal subcommands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ghaggin/students/internal/api"
	"github.com/ghaggin/students/internal/app"
	"github.com/ghaggin/students/internal/model"
	"github.com/ghaggin/students/internal/repository"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var ErrUsage = errors.New("usage")

const usage = `usage: students -mode cli <command> [flags]

commands:
  list     [-q term]                        list students
  whoami                                    show the stored identity
  login    -u user [-p password]            log in and store the session
  register -u user [-p password]            create an account
  logout                                    forget the stored session
  add      -name n -year y -class c         add a student (Admin)
  edit     -id id [-name n] [-year y] [-class c]  update a student (Admin)
  delete   -id id [-y]                      delete a student (Admin)
`

type Runner struct {
	api   *api.Client
	repo  repository.Repository
	clock clockwork.Clock
	log   *zap.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// readPassword prompts for a password when -p is not given.
	readPassword func() (string, error)
}

type Params struct {
	fx.In

	API        *api.Client
	Repository repository.Repository
	Clock      clockwork.Clock
	Log        *zap.Logger
}

func NewRunner(p Params) *Runner {
	r := &Runner{
		api:    p.API,
		repo:   p.Repository,
		clock:  p.Clock,
		log:    p.Log,
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	r.readPassword = r.promptPassword
	return r
}

func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(r.errOut, usage)
		return ErrUsage
	}

	sink := NewSink(r.in, r.out, r.errOut)
	a := app.NewFromClient(r.api, app.Params{
		Repository: r.repo,
		Sink:       sink,
		Clock:      r.clock,
		Log:        r.log,
	})

	cmd, args := args[0], args[1:]
	var err error
	switch cmd {
	case "list":
		err = r.list(ctx, a, args)
	case "whoami":
		err = r.whoami(ctx, a)
	case "login":
		err = r.login(ctx, a, args)
	case "register":
		err = r.register(ctx, a, args)
	case "logout":
		err = r.logout(ctx, a)
	case "add":
		err = r.add(ctx, a, args)
	case "edit":
		err = r.edit(ctx, a, args)
	case "delete":
		err = r.delete(ctx, a, sink, args)
	case "help", "-h", "--help":
		fmt.Fprint(r.out, usage)
		return nil
	default:
		fmt.Fprintf(r.errOut, "unknown command %q\n\n%s", cmd, usage)
		return ErrUsage
	}

	sink.Flush()
	return err
}

func (r *Runner) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.errOut)
	return fs
}

func (r *Runner) load(ctx context.Context, a *app.App) error {
	return a.Session.Load(ctx)
}

func (r *Runner) list(ctx context.Context, a *app.App, args []string) error {
	fs := r.flags("list")
	q := fs.String("q", "", "case-insensitive search term")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.Auth.Restore(ctx); err != nil {
		return err
	}
	if *q != "" {
		a.Students.Filter(ctx, *q)
	}
	if a.Model().Failure != "" {
		return errors.New("failed to load students")
	}
	return nil
}

func (r *Runner) whoami(ctx context.Context, a *app.App) error {
	if err := r.load(ctx, a); err != nil {
		return err
	}
	s := a.Session.Current()
	if !s.Authenticated() {
		fmt.Fprintln(r.out, "not logged in")
		return nil
	}
	fmt.Fprintf(r.out, "%s (%s)\n", s.Identity.Username, s.Identity.Role)
	return nil
}

func (r *Runner) credentials(name string, args []string) (string, string, error) {
	fs := r.flags(name)
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}

	password := *pass
	if password == "" && *user != "" {
		var err error
		password, err = r.readPassword()
		if err != nil {
			return "", "", err
		}
	}
	return *user, password, nil
}

func (r *Runner) login(ctx context.Context, a *app.App, args []string) error {
	user, pass, err := r.credentials("login", args)
	if err != nil {
		return err
	}
	if err := r.load(ctx, a); err != nil {
		return err
	}
	return a.Auth.Login(ctx, user, pass)
}

func (r *Runner) register(ctx context.Context, a *app.App, args []string) error {
	user, pass, err := r.credentials("register", args)
	if err != nil {
		return err
	}
	return a.Auth.Register(ctx, user, pass)
}

func (r *Runner) logout(ctx context.Context, a *app.App) error {
	if err := r.load(ctx, a); err != nil {
		return err
	}
	return a.Auth.Logout(ctx)
}

func (r *Runner) add(ctx context.Context, a *app.App, args []string) error {
	fs := r.flags("add")
	name := fs.String("name", "", "student name")
	year := fs.Int("year", 0, "birth year")
	class := fs.String("class", "", "class")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := r.load(ctx, a); err != nil {
		return err
	}
	return a.Students.Create(ctx, model.StudentInput{Name: *name, BirthYear: *year, Class: *class})
}

func (r *Runner) edit(ctx context.Context, a *app.App, args []string) error {
	fs := r.flags("edit")
	id := fs.String("id", "", "student id")
	name := fs.String("name", "", "new name")
	year := fs.Int("year", 0, "new birth year")
	class := fs.String("class", "", "new class")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fmt.Fprintln(r.errOut, "-id is required")
		return ErrUsage
	}

	if err := r.load(ctx, a); err != nil {
		return err
	}
	if err := a.Students.BeginEdit(ctx, model.StudentID(*id)); err != nil {
		return err
	}

	editing := a.Students.State().Editing
	if editing == nil {
		return errors.New("no student loaded for editing")
	}
	in := editing.Input()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			in.Name = *name
		case "year":
			in.BirthYear = *year
		case "class":
			in.Class = *class
		}
	})
	return a.Students.Update(ctx, editing.ID, in)
}

func (r *Runner) delete(ctx context.Context, a *app.App, sink *Sink, args []string) error {
	fs := r.flags("delete")
	id := fs.String("id", "", "student id")
	yes := fs.Bool("y", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fmt.Fprintln(r.errOut, "-id is required")
		return ErrUsage
	}
	sink.AssumeYes = *yes

	if err := r.load(ctx, a); err != nil {
		return err
	}
	return a.Students.Delete(ctx, model.StudentID(*id))
}

func (r *Runner) promptPassword() (string, error) {
	fmt.Fprint(r.errOut, "Password: ")
	if f, ok := r.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(r.errOut)
		return string(b), err
	}

	line, err := bufio.NewReader(r.in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
