package app

import (
	"context"
	"fmt"

	dockerCli "github.com/docker/docker/client"
	"github.com/rs/zerolog"

	"github.com/auto-compose/composectl/internal/config"
	"github.com/auto-compose/composectl/internal/dispatch"
	"github.com/auto-compose/composectl/internal/engine"
	"github.com/auto-compose/composectl/internal/runner"
)

type App struct {
	dockerClient *dockerCli.Client
	engine       *engine.DockerEngine
	runner       *runner.Runner
	logger       zerolog.Logger
}

// New creates a new App by wiring up all dependencies: the docker
// client, the resolved compose project, the engine and the runner.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if cfg.Compose.File == "" {
		return nil, fmt.Errorf("no compose manifest given (set --file or compose.file)")
	}

	// Docker CLI
	opts := []dockerCli.Opt{dockerCli.FromEnv, dockerCli.WithAPIVersionNegotiation()}
	if cfg.Docker.Host != "" {
		opts = append(opts, dockerCli.WithHost(cfg.Docker.Host))
	}
	dockerClient, err := dockerCli.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}

	// Compose project
	project, err := engine.LoadProject(ctx, cfg.Compose.File, cfg.Compose.ProjectName)
	if err != nil {
		dockerClient.Close()
		return nil, err
	}
	logger.Debug().Str("project", project.Name).Strs("services", project.ServiceNames()).Msg("Resolved compose project")

	// Engine and runner
	eng := engine.NewDockerEngine(dockerClient, project, logger)
	run := runner.New(eng, logger)

	return &App{
		dockerClient: dockerClient,
		engine:       eng,
		runner:       run,
		logger:       logger,
	}, nil
}

// Run executes one verb invocation and reports its outcome.
func (a *App) Run(ctx context.Context, req dispatch.Request) runner.Result {
	return a.runner.Run(ctx, req)
}

// Details lists the project's containers for display.
func (a *App) Details(ctx context.Context) ([]engine.ContainerDetail, error) {
	if err := a.engine.Ping(ctx); err != nil {
		return nil, err
	}
	return a.engine.ContainerDetails(ctx)
}

func (a *App) Close() error {
	if a.dockerClient != nil {
		if err := a.dockerClient.Close(); err != nil {
			return fmt.Errorf("close docker client: %w", err)
		}
	}
	return nil
}
