package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/cmd/composectl/ui"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the composectl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Accent("composectl"), version)
		},
	}
}
