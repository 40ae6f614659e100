package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auto-compose/composectl/internal/config"
)

type contextKey string

const configKey = contextKey("config")

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "composectl",
	Short:         "Idempotency-aware lifecycle commands for compose projects",
	Long:          "composectl drives a compose-style project through its lifecycle and reports, for every command, whether container state actually changed.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(cfgFile); err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
}

// configFrom pulls the loaded configuration out of the command context.
// PersistentPreRunE has always run by the time a RunE executes, so the
// assertion cannot fail.
func configFrom(ctx context.Context) *config.Config {
	return ctx.Value(configKey).(*config.Config)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringP("file", "f", "", "compose manifest path")
	rootCmd.PersistentFlags().String("project-name", "", "project name override (default derives from the manifest directory)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("output", "text", "output format (text or json)")
	rootCmd.PersistentFlags().String("docker-host", "", "docker daemon address (overrides DOCKER_HOST)")

	viper.BindPFlag("compose.file", rootCmd.PersistentFlags().Lookup("file"))
	viper.BindPFlag("compose.project_name", rootCmd.PersistentFlags().Lookup("project-name"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("docker.host", rootCmd.PersistentFlags().Lookup("docker-host"))

	rootCmd.AddCommand(
		newBuildCmd(),
		newKillCmd(),
		newPullCmd(),
		newRemoveCmd(),
		newRestartCmd(),
		newScaleCmd(),
		newStartCmd(),
		newStopCmd(),
		newUpCmd(),
		newPsCmd(),
		newSupervisorCmd(),
		newVersionCmd(),
	)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		}
		os.Exit(1)
	}
}
