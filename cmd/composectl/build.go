package main

import (
	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/internal/dispatch"
)

func newBuildCmd() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "build [service...]",
		Short: "Build images for services that declare a build section",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, dispatch.Request{
				Verb:     dispatch.VerbBuild,
				Services: args,
				NoCache:  noCache,
			})
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "build without reusing cached layers")

	return cmd
}
