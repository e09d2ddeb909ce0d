package main

import (
	"context"
	"flag"
	"os"

	"github.com/ghaggin/students/internal/cli"
	"github.com/ghaggin/students/internal/config"
	"github.com/ghaggin/students/internal/web"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	var (
		mode    = flag.String("mode", "web", "either web or cli")
		cfgPath = flag.String("config", "", "path to a yaml config file")
		verbose = flag.Bool("v", false, "log debug output in cli mode")
	)
	flag.Parse()

	newPath := func() config.Path {
		return config.Path(*cfgPath)
	}

	deps := fx.Options(
		fx.Provide(
			config.New,
			clockwork.NewRealClock,
			newPath,
		),
	)

	switch *mode {
	case "web":
		app := fx.New(
			deps,
			fx.Provide(zap.NewDevelopment),
			web.Module,
			fx.Invoke(web.RegisterHooks),
		)
		app.Run()
	case "cli":
		os.Exit(runCLI(deps, *verbose, flag.Args()))
	default:
		panic("unrecognized mode")
	}
}

func runCLI(deps fx.Option, verbose bool, args []string) int {
	newLogger := zap.NewNop
	if verbose {
		newLogger = func() *zap.Logger {
			log, err := zap.NewDevelopment()
			if err != nil {
				return zap.NewNop()
			}
			return log
		}
	}

	var runner *cli.Runner
	app := fx.New(
		deps,
		fx.Provide(newLogger),
		fx.NopLogger,
		cli.Module,
		fx.Populate(&runner),
	)
	if err := app.Err(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		return 1
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		return 1
	}
	defer app.Stop(ctx)

	if err := runner.Run(ctx, args); err != nil {
		return 1
	}
	return 0
}
