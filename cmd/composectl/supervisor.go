package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/internal/supervisor"
)

func newSupervisorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supervisor",
		Short: "Work with the supervised host agent programs",
	}
	cmd.AddCommand(newSupervisorRenderCmd())
	return cmd
}

func newSupervisorRenderCmd() *cobra.Command {
	var programs string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the agent program set as supervisord configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := supervisor.DefaultConfig()
			if programs != "" {
				loaded, err := supervisor.Load(programs)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.Render())
			return nil
		},
	}

	cmd.Flags().StringVar(&programs, "programs", "", "program set YAML (defaults to the built-in agent set)")

	return cmd
}
