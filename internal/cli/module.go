package cli

import (
	"github.com/ghaggin/students/internal/api"
	"github.com/ghaggin/students/internal/repository"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		api.New,
		repository.NewJSON,
		NewRunner,
	),
)
