package main

import (
	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/internal/dispatch"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove [service...]",
		Aliases: []string{"rm", "down"},
		Short:   "Stop and remove containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, dispatch.Request{
				Verb:     dispatch.VerbRemove,
				Services: args,
				Timeout:  resolveTimeout(cmd, configFrom(cmd.Context())),
			})
		},
	}

	cmd.Flags().Int("timeout", 0, "seconds to wait before killing (defaults to compose.stop_timeout)")

	return cmd
}
