package supervisor

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Program declares one long-running agent process under supervision.
// Purely declarative; restart policy details beyond autorestart are
// left to the supervisor itself.
type Program struct {
	Name          string   `yaml:"name"`
	Command       string   `yaml:"command"`
	Directory     string   `yaml:"directory,omitempty"`
	Priority      int      `yaml:"priority"`      // lower starts earlier
	StartSeconds  int      `yaml:"start_seconds"` // grace period before the process counts as started
	AutoRestart   bool     `yaml:"auto_restart"`
	StdoutLogfile string   `yaml:"stdout_logfile,omitempty"`
	StderrLogfile string   `yaml:"stderr_logfile,omitempty"`
	Environment   []string `yaml:"environment,omitempty"` // KEY=value pairs
}

// Config is the declared set of supervised agent programs.
type Config struct {
	Programs []Program `yaml:"programs"`
}

// DefaultConfig declares the agent processes a managed host runs
// alongside its compose projects.
func DefaultConfig() Config {
	return Config{
		Programs: []Program{
			{
				Name:          "docker-events-agent",
				Command:       "/usr/local/bin/docker-events-agent --reconnect",
				Priority:      10,
				StartSeconds:  5,
				AutoRestart:   true,
				StdoutLogfile: "/var/log/supervisor/docker-events-agent.log",
				StderrLogfile: "/var/log/supervisor/docker-events-agent.err",
			},
			{
				Name:          "node-metrics-agent",
				Command:       "/usr/local/bin/node-metrics-agent",
				Priority:      20,
				StartSeconds:  10,
				AutoRestart:   true,
				StdoutLogfile: "/var/log/supervisor/node-metrics-agent.log",
				StderrLogfile: "/var/log/supervisor/node-metrics-agent.err",
			},
		},
	}
}

// Load reads a program set from a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading supervisor config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing supervisor config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("supervisor config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	seen := make(map[string]bool, len(c.Programs))
	for _, p := range c.Programs {
		if p.Name == "" {
			return fmt.Errorf("program with empty name")
		}
		if p.Command == "" {
			return fmt.Errorf("program %s has no command", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate program name %s", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Render emits the program set as supervisord configuration sections,
// ordered by priority, then name.
func (c Config) Render() string {
	programs := make([]Program, len(c.Programs))
	copy(programs, c.Programs)
	sort.Slice(programs, func(i, j int) bool {
		if programs[i].Priority != programs[j].Priority {
			return programs[i].Priority < programs[j].Priority
		}
		return programs[i].Name < programs[j].Name
	})

	var b strings.Builder
	for i, p := range programs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[program:%s]\n", p.Name)
		fmt.Fprintf(&b, "command=%s\n", p.Command)
		if p.Directory != "" {
			fmt.Fprintf(&b, "directory=%s\n", p.Directory)
		}
		fmt.Fprintf(&b, "priority=%d\n", p.Priority)
		fmt.Fprintf(&b, "startsecs=%d\n", p.StartSeconds)
		fmt.Fprintf(&b, "autorestart=%t\n", p.AutoRestart)
		if p.StdoutLogfile != "" {
			fmt.Fprintf(&b, "stdout_logfile=%s\n", p.StdoutLogfile)
		}
		if p.StderrLogfile != "" {
			fmt.Fprintf(&b, "stderr_logfile=%s\n", p.StderrLogfile)
		}
		if len(p.Environment) > 0 {
			fmt.Fprintf(&b, "environment=%s\n", renderEnvironment(p.Environment))
		}
	}
	return b.String()
}

// renderEnvironment joins KEY=value pairs into the supervisord
// environment syntax: KEY="value",OTHER="value".
func renderEnvironment(pairs []string) string {
	quoted := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			quoted = append(quoted, fmt.Sprintf("%s=\"\"", key))
			continue
		}
		quoted = append(quoted, fmt.Sprintf("%s=%q", key, value))
	}
	return strings.Join(quoted, ",")
}
