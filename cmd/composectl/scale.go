package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/internal/dispatch"
)

func newScaleCmd() *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:   "scale [service=count...]",
		Short: "Set the number of containers per service",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := parseScaleArgs(append(args, pairs...))
			if err != nil {
				return err
			}
			if len(mapping) == 0 {
				return fmt.Errorf("nothing to scale: pass at least one service=count argument")
			}
			return runVerb(cmd, dispatch.Request{
				Verb:  dispatch.VerbScale,
				Scale: mapping,
			})
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "scale", nil, "service replica count as service=count, repeatable")

	return cmd
}

// parseScaleArgs splits service=count arguments into a mapping. Only
// the shape is checked here; count validation happens during dispatch
// so that a bad count surfaces as an operation failure, not a usage
// error.
func parseScaleArgs(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	mapping := make(map[string]string, len(args))
	for _, arg := range args {
		service, count, found := strings.Cut(arg, "=")
		if !found || service == "" {
			return nil, fmt.Errorf("malformed scale argument %q: expected service=count", arg)
		}
		mapping[service] = count
	}
	return mapping, nil
}
