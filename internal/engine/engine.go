package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	composetypes "github.com/compose-spec/compose-go/v2/types"
	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	units "github.com/docker/go-units"
	"github.com/rs/zerolog"

	"github.com/auto-compose/composectl/internal/snapshot"
	"github.com/auto-compose/composectl/internal/util"
)

// DockerEngine executes lifecycle operations for one compose project
// against the docker daemon.
type DockerEngine struct {
	cli     dockerClient
	project *composetypes.Project
	logger  zerolog.Logger
}

func NewDockerEngine(cli dockerClient, project *composetypes.Project, logger zerolog.Logger) *DockerEngine {
	return &DockerEngine{
		cli:     cli,
		project: project,
		logger:  logger,
	}
}

// Ping verifies the docker daemon is reachable.
func (e *DockerEngine) Ping(ctx context.Context) error {
	if _, err := e.cli.Ping(ctx); err != nil {
		return fmt.Errorf("pinging docker daemon: %w", err)
	}
	return nil
}

func (e *DockerEngine) Close() error {
	return e.cli.Close()
}

func (e *DockerEngine) projectFilter() filters.Args {
	return filters.NewArgs(filters.Arg("label", labelProject+"="+e.project.Name))
}

func (e *DockerEngine) listProject(ctx context.Context) ([]container.Summary, error) {
	summaries, err := e.cli.ContainerList(ctx, container.ListOptions{All: true, Filters: e.projectFilter()})
	if err != nil {
		return nil, fmt.Errorf("listing project containers: %w", err)
	}
	return summaries, nil
}

func (e *DockerEngine) listServices(ctx context.Context, services []string) ([]container.Summary, error) {
	summaries, err := e.listProject(ctx)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return summaries, nil
	}
	wanted := make(map[string]bool, len(services))
	for _, svc := range services {
		wanted[svc] = true
	}
	return util.Filter(summaries, func(c container.Summary) bool {
		return wanted[c.Labels[labelService]]
	}), nil
}

func (e *DockerEngine) containersByService(ctx context.Context) (map[string][]container.Summary, error) {
	summaries, err := e.listProject(ctx)
	if err != nil {
		return nil, err
	}
	byService := make(map[string][]container.Summary)
	for _, c := range summaries {
		service := c.Labels[labelService]
		if service == "" {
			continue
		}
		byService[service] = append(byService[service], c)
	}
	return byService, nil
}

func summaryName(c container.Summary) string {
	if len(c.Names) > 0 {
		return strings.TrimPrefix(c.Names[0], "/")
	}
	return ""
}

// statusLine prefers the daemon's status column. When a daemon omits
// it, a running container gets an "Up <age>" line in the daemon's own
// format; any other state falls back to the capitalized state name,
// which carries no duration.
func statusLine(c container.Summary) string {
	if c.Status != "" {
		return c.Status
	}
	if c.State == "running" {
		return "Up " + units.HumanDuration(time.Since(time.Unix(c.Created, 0)))
	}
	if c.State == "" {
		return ""
	}
	return strings.ToUpper(c.State[:1]) + c.State[1:]
}

func containersByNumber(summaries []container.Summary) map[int]container.Summary {
	byNumber := make(map[int]container.Summary, len(summaries))
	for _, c := range summaries {
		number, err := strconv.Atoi(c.Labels[labelContainerNumber])
		if err != nil {
			continue
		}
		byNumber[number] = c
	}
	return byNumber
}

// Containers returns one record per project container, running or not.
func (e *DockerEngine) Containers(ctx context.Context) ([]snapshot.ContainerRecord, error) {
	summaries, err := e.listProject(ctx)
	if err != nil {
		return nil, err
	}
	return util.Map(summaries, func(c container.Summary) snapshot.ContainerRecord {
		return snapshot.ContainerRecord{
			Name:    summaryName(c),
			Created: time.Unix(c.Created, 0),
			Status:  statusLine(c),
		}
	}), nil
}

// ContainerDetail is the listing row shown by the ps command.
type ContainerDetail struct {
	Name    string
	Service string
	State   string
	Status  string
	Created time.Time
}

// ContainerDetails returns the project's containers sorted by name.
func (e *DockerEngine) ContainerDetails(ctx context.Context) ([]ContainerDetail, error) {
	summaries, err := e.listProject(ctx)
	if err != nil {
		return nil, err
	}
	details := util.Map(summaries, func(c container.Summary) ContainerDetail {
		return ContainerDetail{
			Name:    summaryName(c),
			Service: c.Labels[labelService],
			State:   c.State,
			Status:  statusLine(c),
			Created: time.Unix(c.Created, 0),
		}
	})
	sort.Slice(details, func(i, j int) bool { return details[i].Name < details[j].Name })
	return details, nil
}

// ContainerNamesFor resolves a service filter to the names of the
// services' existing containers, sorted. Services without containers
// contribute nothing.
func (e *DockerEngine) ContainerNamesFor(ctx context.Context, services []string) ([]string, error) {
	summaries, err := e.listServices(ctx, services)
	if err != nil {
		return nil, err
	}
	names := util.Map(summaries, summaryName)
	sort.Strings(names)
	return names, nil
}

// Start starts the services' stopped containers. Containers that are
// already running are left alone; services without containers are a
// no-op.
func (e *DockerEngine) Start(ctx context.Context, services []string) error {
	summaries, err := e.listServices(ctx, services)
	if err != nil {
		return err
	}
	for _, c := range summaries {
		if c.State == "running" {
			continue
		}
		name := summaryName(c)
		e.logger.Debug().Str("container", name).Msg("Starting container")
		if err := e.cli.ContainerStart(ctx, c.ID, container.StartOptions{}); err != nil {
			return fmt.Errorf("starting container %s: %w", name, err)
		}
	}
	return nil
}

// Stop stops the services' running containers. A nil timeout uses the
// daemon default.
func (e *DockerEngine) Stop(ctx context.Context, services []string, timeout *time.Duration) error {
	summaries, err := e.listServices(ctx, services)
	if err != nil {
		return err
	}
	opts := stopOptions(timeout)
	for _, c := range summaries {
		switch c.State {
		case "running", "restarting", "paused":
		default:
			continue
		}
		name := summaryName(c)
		e.logger.Debug().Str("container", name).Msg("Stopping container")
		if err := e.cli.ContainerStop(ctx, c.ID, opts); err != nil && !errdefs.IsNotFound(err) {
			return fmt.Errorf("stopping container %s: %w", name, err)
		}
	}
	return nil
}

// Restart restarts all of the services' containers, running or not.
func (e *DockerEngine) Restart(ctx context.Context, services []string, timeout *time.Duration) error {
	summaries, err := e.listServices(ctx, services)
	if err != nil {
		return err
	}
	opts := stopOptions(timeout)
	for _, c := range summaries {
		name := summaryName(c)
		e.logger.Debug().Str("container", name).Msg("Restarting container")
		if err := e.cli.ContainerRestart(ctx, c.ID, opts); err != nil {
			return fmt.Errorf("restarting container %s: %w", name, err)
		}
	}
	return nil
}

// Kill sends the given signal to the services' running containers.
func (e *DockerEngine) Kill(ctx context.Context, services []string, signal string) error {
	summaries, err := e.listServices(ctx, services)
	if err != nil {
		return err
	}
	for _, c := range summaries {
		if c.State != "running" {
			continue
		}
		name := summaryName(c)
		e.logger.Debug().Str("container", name).Str("signal", signal).Msg("Killing container")
		if err := e.cli.ContainerKill(ctx, c.ID, signal); err != nil && !errdefs.IsNotFound(err) {
			return fmt.Errorf("killing container %s: %w", name, err)
		}
	}
	return nil
}

// RemoveStopped removes the services' containers that are not running.
// Running containers are left alone; already-gone ones are not an
// error.
func (e *DockerEngine) RemoveStopped(ctx context.Context, services []string) error {
	summaries, err := e.listServices(ctx, services)
	if err != nil {
		return err
	}
	for _, c := range summaries {
		switch c.State {
		case "exited", "created", "dead":
		default:
			continue
		}
		name := summaryName(c)
		e.logger.Debug().Str("container", name).Msg("Removing container")
		if err := e.cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{}); err != nil && !errdefs.IsNotFound(err) {
			return fmt.Errorf("removing container %s: %w", name, err)
		}
	}
	return nil
}

func (e *DockerEngine) removeContainer(ctx context.Context, c container.Summary) error {
	name := summaryName(c)
	switch c.State {
	case "running", "restarting", "paused":
		if err := e.cli.ContainerStop(ctx, c.ID, container.StopOptions{}); err != nil && !errdefs.IsNotFound(err) {
			return fmt.Errorf("stopping container %s: %w", name, err)
		}
	}
	if err := e.cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("removing container %s: %w", name, err)
	}
	return nil
}

func stopOptions(timeout *time.Duration) container.StopOptions {
	opts := container.StopOptions{}
	if timeout != nil {
		seconds := int(timeout.Seconds())
		opts.Timeout = &seconds
	}
	return opts
}
