package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/auto-compose/composectl/internal/app"
	"github.com/auto-compose/composectl/internal/config"
	"github.com/auto-compose/composectl/internal/dispatch"
	"github.com/auto-compose/composectl/internal/engine"
	"github.com/auto-compose/composectl/internal/runner"
)

type application interface {
	Run(ctx context.Context, req dispatch.Request) runner.Result
	Details(ctx context.Context) ([]engine.ContainerDetail, error)
	Close() error
}

// newApplication is a hook for tests.
var newApplication = func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (application, error) {
	return app.New(ctx, cfg, logger)
}
