package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ComposeConfig holds manifest resolution and lifecycle defaults.
type ComposeConfig struct {
	File        string `mapstructure:"file"`
	ProjectName string `mapstructure:"project_name"`
	StopTimeout int    `mapstructure:"stop_timeout"`
}

// StopTimeoutDuration returns the stop timeout as a duration.
func (c ComposeConfig) StopTimeoutDuration() time.Duration {
	return time.Duration(c.StopTimeout) * time.Second
}

// DockerConfig holds daemon connection configuration.
type DockerConfig struct {
	Host string `mapstructure:"host"`
}

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig holds result rendering configuration.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Config is the top-level configuration struct.
type Config struct {
	Compose ComposeConfig `mapstructure:"compose"`
	Docker  DockerConfig  `mapstructure:"docker"`
	Logging LoggingConfig `mapstructure:"log"`
	Output  OutputConfig  `mapstructure:"output"`
}

// InitConfig performs the initial configuration: setting defaults,
// locating the config file, and reading it. An empty cfgFile falls
// back to the search path; a named file must exist.
func InitConfig(cfgFile string) error {
	// Set defaults for each sub-configuration.
	viper.SetDefault("compose.file", "")
	viper.SetDefault("compose.project_name", "")
	viper.SetDefault("compose.stop_timeout", 10)
	viper.SetDefault("docker.host", "")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("output.format", "text")

	// Specify the config file details.
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config") // Looks for config.yaml
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/composectl")
	}

	// Read the config file if available.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// If the file is not found, just continue with defaults and env vars.
	}

	// Enable automatic environment variable binding.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return nil
}

// Load unmarshals the configuration into the Config struct.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &config, nil
}
