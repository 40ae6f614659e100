package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	composetypes "github.com/compose-spec/compose-go/v2/types"
)

// LoadProject parses the manifest at path into a compose project. The
// project name comes from nameOverride when set, otherwise from the
// directory holding the manifest.
func LoadProject(ctx context.Context, path, nameOverride string) (*composetypes.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest path %s: %w", path, err)
	}
	workingDir := filepath.Dir(absPath)

	name := nameOverride
	if name == "" {
		name = filepath.Base(workingDir)
	}
	name = normalizeProjectName(name)
	if name == "" {
		return nil, fmt.Errorf("cannot derive a project name from %s", path)
	}

	details := composetypes.ConfigDetails{
		WorkingDir: workingDir,
		ConfigFiles: []composetypes.ConfigFile{
			{Filename: absPath, Content: data},
		},
	}
	project, err := loader.LoadWithContext(ctx, details, func(opts *loader.Options) {
		opts.SetProjectName(name, true)
	})
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(project.Services) == 0 {
		return nil, fmt.Errorf("manifest %s declares no services", path)
	}

	return project, nil
}

var projectNameDisallowed = regexp.MustCompile(`[^a-z0-9_-]`)

// normalizeProjectName applies the compose naming rules: lowercase,
// restricted to [a-z0-9_-], must not start with "-" or "_".
func normalizeProjectName(name string) string {
	name = strings.ToLower(name)
	name = projectNameDisallowed.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "-_")
}

// ServiceNames returns every service declared by the project, sorted.
func (e *DockerEngine) ServiceNames() []string {
	return e.project.ServiceNames()
}

// SelectServices validates a service filter against the project and
// returns the services to operate on. An empty filter selects every
// service. With withDeps, the transitive depends_on closure is added
// and the result is ordered dependencies-first.
func (e *DockerEngine) SelectServices(names []string, withDeps bool) ([]string, error) {
	if len(names) == 0 {
		return e.dependencyOrder(e.project.ServiceNames()), nil
	}

	for _, name := range names {
		if _, err := e.project.GetService(name); err != nil {
			return nil, NewUnknownServiceError(name)
		}
	}

	if withDeps {
		return e.dependencyOrder(names), nil
	}

	// keep the given order, drop duplicates
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

// dependencyOrder expands roots with their depends_on closure and
// returns the result with every service after its dependencies. The
// loader rejects dependency cycles, so the walk terminates.
func (e *DockerEngine) dependencyOrder(roots []string) []string {
	var order []string
	visited := make(map[string]bool)

	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true

		svc, err := e.project.GetService(name)
		if err != nil {
			return
		}
		deps := make([]string, 0, len(svc.DependsOn))
		for dep := range svc.DependsOn {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		for _, dep := range deps {
			visit(dep)
		}

		order = append(order, name)
	}

	for _, name := range roots {
		visit(name)
	}
	return order
}
