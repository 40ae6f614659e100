package main

import (
	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/internal/logger"
)

func newPsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ps",
		Short: "List the project's containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())
			log := logger.SetupLogger(&cfg.Logging)

			application, err := newApplication(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer application.Close()

			details, err := application.Details(cmd.Context())
			if err != nil {
				return err
			}
			return renderDetails(cmd, cfg.Output.Format, details)
		},
	}
}
