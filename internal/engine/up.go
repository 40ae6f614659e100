package engine

import (
	"context"
	"fmt"
	"sort"

	composetypes "github.com/compose-spec/compose-go/v2/types"
	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
)

// UpOptions control how Up converges each service.
type UpOptions struct {
	NoBuild          bool
	NoRecreate       bool
	InsecureRegistry bool
}

// Up converges every given service onto its declared state: missing
// containers are created and started, stale ones recreated, stopped
// ones started, excess replicas removed. It returns the names of all
// containers it touched, including the ones touched before a failure.
func (e *DockerEngine) Up(ctx context.Context, services []string, opts UpOptions) ([]string, error) {
	if opts.InsecureRegistry {
		// Registry trust is daemon-level configuration; the flag is
		// accepted and logged, nothing more.
		e.logger.Debug().Msg("Insecure registry requested, relying on daemon registry configuration")
	}

	byService, err := e.containersByService(ctx)
	if err != nil {
		return nil, err
	}

	var touched []string
	for _, name := range services {
		svc, err := e.project.GetService(name)
		if err != nil {
			return touched, NewUnknownServiceError(name)
		}
		svcTouched, err := e.upService(ctx, svc, byService[name], opts)
		touched = append(touched, svcTouched...)
		if err != nil {
			return touched, err
		}
	}
	sort.Strings(touched)
	return touched, nil
}

func (e *DockerEngine) upService(ctx context.Context, svc composetypes.ServiceConfig, existing []container.Summary, opts UpOptions) ([]string, error) {
	if err := e.ensureImage(ctx, svc, opts.NoBuild); err != nil {
		return nil, err
	}

	replicas := 1
	if svc.Scale != nil {
		replicas = *svc.Scale
	}

	wantHash := configHash(svc)
	byNumber := containersByNumber(existing)

	var touched []string
	for index := 1; index <= replicas; index++ {
		name := containerName(e.project.Name, svc, index)
		current, exists := byNumber[index]

		if exists && !opts.NoRecreate && current.Labels[labelConfigHash] != wantHash {
			e.logger.Info().Str("container", name).Msg("Configuration changed, recreating container")
			if err := e.removeContainer(ctx, current); err != nil {
				return touched, err
			}
			exists = false
		}

		if !exists {
			if err := e.createAndStart(ctx, svc, index, name); err != nil {
				return touched, err
			}
			touched = append(touched, name)
			continue
		}

		if current.State != "running" {
			e.logger.Debug().Str("container", name).Msg("Starting existing container")
			if err := e.cli.ContainerStart(ctx, current.ID, container.StartOptions{}); err != nil {
				return touched, fmt.Errorf("starting container %s: %w", name, err)
			}
			touched = append(touched, name)
		}
	}

	removed, err := e.removeExcess(ctx, byNumber, replicas)
	touched = append(touched, removed...)
	return touched, err
}

// Scale converges one service onto the requested replica count and
// returns the names of the containers it created or removed. Services
// publishing host ports refuse to scale.
func (e *DockerEngine) Scale(ctx context.Context, service string, replicas int) ([]string, error) {
	svc, err := e.project.GetService(service)
	if err != nil {
		return nil, NewUnknownServiceError(service)
	}
	if publishesHostPorts(svc) {
		return nil, NewPortConflictError(service)
	}

	existing, err := e.listServices(ctx, []string{service})
	if err != nil {
		return nil, err
	}
	byNumber := containersByNumber(existing)

	var touched []string
	for index := 1; index <= replicas; index++ {
		if _, exists := byNumber[index]; exists {
			continue
		}
		name := containerName(e.project.Name, svc, index)
		if err := e.createAndStart(ctx, svc, index, name); err != nil {
			return touched, err
		}
		touched = append(touched, name)
	}

	removed, err := e.removeExcess(ctx, byNumber, replicas)
	touched = append(touched, removed...)
	if err != nil {
		return touched, err
	}
	sort.Strings(touched)
	return touched, nil
}

// removeExcess drops containers numbered above the desired replica
// count, highest numbers first.
func (e *DockerEngine) removeExcess(ctx context.Context, byNumber map[int]container.Summary, replicas int) ([]string, error) {
	var indices []int
	for index := range byNumber {
		if index > replicas {
			indices = append(indices, index)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))

	var removed []string
	for _, index := range indices {
		c := byNumber[index]
		e.logger.Info().Str("container", summaryName(c)).Msg("Removing excess container")
		if err := e.removeContainer(ctx, c); err != nil {
			return removed, err
		}
		removed = append(removed, summaryName(c))
	}
	return removed, nil
}

// createAndStart creates the numbered container for a service and
// starts it. A missing image triggers one pull and a single retry.
func (e *DockerEngine) createAndStart(ctx context.Context, svc composetypes.ServiceConfig, index int, name string) error {
	cfg, hostCfg := containerConfig(e.project, svc, index)

	e.logger.Info().Str("container", name).Str("image", cfg.Image).Msg("Creating container")
	created, err := e.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	if err != nil {
		if !errdefs.IsNotFound(err) {
			return fmt.Errorf("creating container %s: %w", name, err)
		}
		if svc.Image == "" {
			return fmt.Errorf("creating container %s: %w", name, err)
		}
		if err := e.pullImage(ctx, svc.Image); err != nil {
			return err
		}
		if created, err = e.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name); err != nil {
			return fmt.Errorf("creating container %s after pull: %w", name, err)
		}
	}

	if err := e.cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("starting container %s: %w", name, err)
	}
	return nil
}

func publishesHostPorts(svc composetypes.ServiceConfig) bool {
	for _, p := range svc.Ports {
		if p.Published != "" {
			return true
		}
	}
	return false
}
