package engine

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	composetypes "github.com/compose-spec/compose-go/v2/types"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/moby/go-archive"
)

// Build builds images for the selected services that declare a build
// section. Services without one are skipped.
func (e *DockerEngine) Build(ctx context.Context, services []string, noCache bool) error {
	for _, name := range services {
		svc, err := e.project.GetService(name)
		if err != nil {
			return NewUnknownServiceError(name)
		}
		if svc.Build == nil {
			e.logger.Debug().Str("service", name).Msg("Service has no build section, skipping")
			continue
		}
		if err := e.buildService(ctx, svc, noCache); err != nil {
			return err
		}
	}
	return nil
}

func (e *DockerEngine) buildService(ctx context.Context, svc composetypes.ServiceConfig, noCache bool) error {
	contextDir := svc.Build.Context
	if contextDir == "" {
		contextDir = "."
	}
	if !filepath.IsAbs(contextDir) {
		contextDir = filepath.Join(e.project.WorkingDir, contextDir)
	}

	dockerfile := svc.Build.Dockerfile
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}

	tag := imageTag(e.project.Name, svc)
	e.logger.Info().Str("service", svc.Name).Str("tag", tag).Str("context", contextDir).Msg("Building image")

	buildCtx, err := archive.TarWithOptions(contextDir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("preparing build context for %s: %w", svc.Name, err)
	}
	defer buildCtx.Close()

	resp, err := e.cli.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: dockerfile,
		NoCache:    noCache,
		Remove:     true,
		BuildArgs:  svc.Build.Args,
	})
	if err != nil {
		return fmt.Errorf("building image for %s: %w", svc.Name, err)
	}
	defer resp.Body.Close()

	// The build API reports failures inside the response stream.
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, io.Discard, 0, false, nil); err != nil {
		return fmt.Errorf("building image for %s: %w", svc.Name, err)
	}
	return nil
}

// Pull pulls images for the selected services that reference one.
// Build-only services are skipped.
func (e *DockerEngine) Pull(ctx context.Context, services []string, insecureRegistry bool) error {
	if insecureRegistry {
		// Registry trust is daemon-level configuration; the flag is
		// accepted and logged, nothing more.
		e.logger.Debug().Msg("Insecure registry requested, relying on daemon registry configuration")
	}
	for _, name := range services {
		svc, err := e.project.GetService(name)
		if err != nil {
			return NewUnknownServiceError(name)
		}
		if svc.Image == "" {
			e.logger.Debug().Str("service", name).Msg("Service has no image reference, skipping pull")
			continue
		}
		if err := e.pullImage(ctx, svc.Image); err != nil {
			return err
		}
	}
	return nil
}

func (e *DockerEngine) pullImage(ctx context.Context, ref string) error {
	e.logger.Info().Str("image", ref).Msg("Pulling image")
	resp, err := e.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pulling image %s: %w", ref, err)
	}
	defer resp.Close()
	if err := jsonmessage.DisplayJSONMessagesStream(resp, io.Discard, 0, false, nil); err != nil {
		return fmt.Errorf("pulling image %s: %w", ref, err)
	}
	return nil
}

func (e *DockerEngine) imageExists(ctx context.Context, ref string) (bool, error) {
	summaries, err := e.cli.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", ref)),
	})
	if err != nil {
		return false, fmt.Errorf("listing images matching %s: %w", ref, err)
	}
	return len(summaries) > 0, nil
}

// ensureImage makes the service's image available locally: building it
// when the service declares a build section, pulling it otherwise.
// Existing images are left untouched.
func (e *DockerEngine) ensureImage(ctx context.Context, svc composetypes.ServiceConfig, noBuild bool) error {
	ref := imageTag(e.project.Name, svc)
	exists, err := e.imageExists(ctx, ref)
	if err != nil || exists {
		return err
	}
	if svc.Build != nil && !noBuild {
		return e.buildService(ctx, svc, false)
	}
	if svc.Image != "" {
		return e.pullImage(ctx, svc.Image)
	}
	return nil
}
