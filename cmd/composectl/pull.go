package main

import (
	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/internal/dispatch"
)

func newPullCmd() *cobra.Command {
	var insecureRegistry bool

	cmd := &cobra.Command{
		Use:   "pull [service...]",
		Short: "Pull service images from their registries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, dispatch.Request{
				Verb:             dispatch.VerbPull,
				Services:         args,
				InsecureRegistry: insecureRegistry,
			})
		},
	}

	cmd.Flags().BoolVar(&insecureRegistry, "insecure-registry", false, "tolerate registries without TLS verification")

	return cmd
}
