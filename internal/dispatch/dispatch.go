package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/auto-compose/composectl/internal/engine"
	"github.com/auto-compose/composectl/internal/util"
)

// Engine is the orchestration surface the dispatcher drives.
type Engine interface {
	SelectServices(names []string, withDeps bool) ([]string, error)
	ContainerNamesFor(ctx context.Context, services []string) ([]string, error)
	Build(ctx context.Context, services []string, noCache bool) error
	Pull(ctx context.Context, services []string, insecureRegistry bool) error
	Start(ctx context.Context, services []string) error
	Stop(ctx context.Context, services []string, timeout *time.Duration) error
	Restart(ctx context.Context, services []string, timeout *time.Duration) error
	Kill(ctx context.Context, services []string, signal string) error
	RemoveStopped(ctx context.Context, services []string) error
	Scale(ctx context.Context, service string, replicas int) ([]string, error)
	Up(ctx context.Context, services []string, opts engine.UpOptions) ([]string, error)
}

var _ Engine = (*engine.DockerEngine)(nil)

// handler executes one verb and returns the names of the containers
// the operation targeted, for change detection.
type handler func(ctx context.Context, eng Engine, req Request) ([]string, error)

// handlers is the closed verb table. Every verb resolves here or the
// request is rejected before anything executes.
var handlers = map[Verb]handler{
	VerbBuild:   dispatchBuild,
	VerbKill:    dispatchKill,
	VerbPull:    dispatchPull,
	VerbRemove:  dispatchRemove,
	VerbRestart: dispatchRestart,
	VerbScale:   dispatchScale,
	VerbStart:   dispatchStart,
	VerbStop:    dispatchStop,
	VerbUp:      dispatchUp,
}

// Dispatch executes the requested verb against the engine. The
// returned names are the operation's targets; on failure they cover
// everything targeted up to the point of the error.
func Dispatch(ctx context.Context, eng Engine, req Request) ([]string, error) {
	h, ok := handlers[req.Verb]
	if !ok {
		return nil, fmt.Errorf("unknown verb %q", req.Verb)
	}
	return h(ctx, eng, req)
}

// affectedThen resolves the services' container names before running
// the operation, so containers the operation removes still count as
// affected.
func affectedThen(ctx context.Context, eng Engine, services []string, op func() error) ([]string, error) {
	affected, err := eng.ContainerNamesFor(ctx, services)
	if err != nil {
		return nil, err
	}
	return affected, op()
}

func dispatchBuild(ctx context.Context, eng Engine, req Request) ([]string, error) {
	services, err := eng.SelectServices(req.Services, false)
	if err != nil {
		return nil, err
	}
	return affectedThen(ctx, eng, services, func() error {
		return eng.Build(ctx, services, req.NoCache)
	})
}

func dispatchPull(ctx context.Context, eng Engine, req Request) ([]string, error) {
	services, err := eng.SelectServices(req.Services, false)
	if err != nil {
		return nil, err
	}
	return affectedThen(ctx, eng, services, func() error {
		return eng.Pull(ctx, services, req.InsecureRegistry)
	})
}

func dispatchStart(ctx context.Context, eng Engine, req Request) ([]string, error) {
	services, err := eng.SelectServices(req.Services, false)
	if err != nil {
		return nil, err
	}
	return affectedThen(ctx, eng, services, func() error {
		return eng.Start(ctx, services)
	})
}

func dispatchStop(ctx context.Context, eng Engine, req Request) ([]string, error) {
	services, err := eng.SelectServices(req.Services, false)
	if err != nil {
		return nil, err
	}
	return affectedThen(ctx, eng, services, func() error {
		return eng.Stop(ctx, services, req.Timeout)
	})
}

func dispatchRestart(ctx context.Context, eng Engine, req Request) ([]string, error) {
	services, err := eng.SelectServices(req.Services, false)
	if err != nil {
		return nil, err
	}
	return affectedThen(ctx, eng, services, func() error {
		return eng.Restart(ctx, services, req.Timeout)
	})
}

func dispatchKill(ctx context.Context, eng Engine, req Request) ([]string, error) {
	services, err := eng.SelectServices(req.Services, false)
	if err != nil {
		return nil, err
	}
	return affectedThen(ctx, eng, services, func() error {
		return eng.Kill(ctx, services, req.Signal)
	})
}

// dispatchRemove stops the services' containers, then removes the
// stopped ones. The phases are not atomic: a failure between them
// leaves containers stopped but present.
func dispatchRemove(ctx context.Context, eng Engine, req Request) ([]string, error) {
	services, err := eng.SelectServices(req.Services, false)
	if err != nil {
		return nil, err
	}
	return affectedThen(ctx, eng, services, func() error {
		if err := eng.Stop(ctx, services, req.Timeout); err != nil {
			return fmt.Errorf("stop phase: %w", err)
		}
		if err := eng.RemoveStopped(ctx, services); err != nil {
			return fmt.Errorf("remove phase, containers left stopped: %w", err)
		}
		return nil
	})
}

// dispatchScale converges each requested service independently. A
// failure on one service does not roll back or skip its siblings; all
// failures are collected into the returned error.
func dispatchScale(ctx context.Context, eng Engine, req Request) ([]string, error) {
	var affected []string
	var errs []error
	for _, service := range util.SortedKeys(req.Scale) {
		value := req.Scale[service]
		replicas, err := strconv.Atoi(value)
		if err != nil || replicas < 0 {
			errs = append(errs, NewInvalidScaleValueError(service, value))
			continue
		}
		touched, err := eng.Scale(ctx, service, replicas)
		affected = append(affected, touched...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	sort.Strings(affected)
	return affected, errors.Join(errs...)
}

// dispatchUp reports the containers the engine created, recreated,
// started or removed as the affected set, including the ones touched
// before a failure.
func dispatchUp(ctx context.Context, eng Engine, req Request) ([]string, error) {
	services, err := eng.SelectServices(req.Services, !req.NoDeps)
	if err != nil {
		return nil, err
	}
	return eng.Up(ctx, services, engine.UpOptions{
		NoBuild:          req.NoBuild,
		NoRecreate:       req.NoRecreate,
		InsecureRegistry: req.InsecureRegistry,
	})
}
