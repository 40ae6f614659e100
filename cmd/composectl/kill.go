package main

import (
	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/internal/dispatch"
)

func newKillCmd() *cobra.Command {
	var signal string

	cmd := &cobra.Command{
		Use:   "kill [service...]",
		Short: "Send a signal to running containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, dispatch.Request{
				Verb:     dispatch.VerbKill,
				Services: args,
				Signal:   signal,
			})
		},
	}

	cmd.Flags().StringVarP(&signal, "signal", "s", "SIGKILL", "signal to send")

	return cmd
}
