package main

import (
	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/internal/dispatch"
)

func newStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop [service...]",
		Short: "Stop running containers without removing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, dispatch.Request{
				Verb:     dispatch.VerbStop,
				Services: args,
				Timeout:  resolveTimeout(cmd, configFrom(cmd.Context())),
			})
		},
	}

	cmd.Flags().Int("timeout", 0, "seconds to wait before killing (defaults to compose.stop_timeout)")

	return cmd
}
