package web

import (
	"github.com/ghaggin/students/internal/api"
	"github.com/ghaggin/students/internal/middleware"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		api.New,
		middleware.NewSessionManager,
		New,
	),
)
