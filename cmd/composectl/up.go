package main

import (
	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/internal/dispatch"
)

func newUpCmd() *cobra.Command {
	var (
		noBuild          bool
		noRecreate       bool
		noDeps           bool
		insecureRegistry bool
	)

	cmd := &cobra.Command{
		Use:   "up [service...]",
		Short: "Create and start containers, converging on the manifest",
		Long:  "up brings the selected services to their declared state: missing images are pulled or built, missing containers are created, stopped ones are started, and containers whose configuration drifted from the manifest are recreated.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, dispatch.Request{
				Verb:             dispatch.VerbUp,
				Services:         args,
				NoBuild:          noBuild,
				NoRecreate:       noRecreate,
				NoDeps:           noDeps,
				InsecureRegistry: insecureRegistry,
			})
		},
	}

	cmd.Flags().BoolVar(&noBuild, "no-build", false, "never build images, even when missing")
	cmd.Flags().BoolVar(&noRecreate, "no-recreate", false, "keep existing containers even when their configuration drifted")
	cmd.Flags().BoolVar(&noDeps, "no-deps", false, "do not expand the selection to dependent services")
	cmd.Flags().BoolVar(&insecureRegistry, "insecure-registry", false, "tolerate registries without TLS verification")

	return cmd
}
