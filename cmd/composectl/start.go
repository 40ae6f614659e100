package main

import (
	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/internal/dispatch"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [service...]",
		Short: "Start existing stopped containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, dispatch.Request{
				Verb:     dispatch.VerbStart,
				Services: args,
			})
		},
	}
}
