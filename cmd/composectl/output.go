package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/auto-compose/composectl/cmd/composectl/ui"
	"github.com/auto-compose/composectl/internal/config"
	"github.com/auto-compose/composectl/internal/dispatch"
	"github.com/auto-compose/composectl/internal/engine"
	"github.com/auto-compose/composectl/internal/logger"
	"github.com/auto-compose/composectl/internal/runner"
)

// errFailed signals a non-zero exit for a result that has already been
// rendered. Execute suppresses it so the failure is not printed twice.
var errFailed = errors.New("operation failed")

// runVerb wires one lifecycle verb end to end: build the application,
// run the request, render the result. A failed result exits non-zero
// after rendering, including in JSON mode.
func runVerb(cmd *cobra.Command, req dispatch.Request) error {
	cfg := configFrom(cmd.Context())
	log := logger.SetupLogger(&cfg.Logging)

	application, err := newApplication(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	res := application.Run(cmd.Context(), req)
	if err := renderResult(cmd, cfg.Output.Format, res); err != nil {
		return err
	}
	if res.Failed {
		return errFailed
	}
	return nil
}

func renderResult(cmd *cobra.Command, format string, res runner.Result) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return json.NewEncoder(out).Encode(res)
	case "", "text":
		switch {
		case res.Failed:
			fmt.Fprintln(out, ui.ErrorMsg("%s", res.Message))
		case res.Changed:
			fmt.Fprintln(out, ui.SuccessMsg("%s", res.Message))
		default:
			fmt.Fprintln(out, ui.InfoMsg("%s", res.Message))
		}
		fmt.Fprint(out, ui.KeyValues("  ",
			ui.KV("changed", strconv.FormatBool(res.Changed)),
			ui.KV("failed", strconv.FormatBool(res.Failed)),
		))
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderDetails(cmd *cobra.Command, format string, details []engine.ContainerDetail) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return json.NewEncoder(out).Encode(details)
	case "", "text":
		if len(details) == 0 {
			fmt.Fprintln(out, ui.InfoMsg("no containers found for this project"))
			return nil
		}
		rows := make([][]string, 0, len(details))
		for _, d := range details {
			rows = append(rows, []string{
				d.Name,
				d.Service,
				d.State,
				d.Status,
				units.HumanDuration(time.Since(d.Created)) + " ago",
			})
		}
		fmt.Fprintln(out, ui.Table([]string{"NAME", "SERVICE", "STATE", "STATUS", "CREATED"}, rows))
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// resolveTimeout picks the per-command timeout flag when set, falling
// back to the configured stop timeout.
func resolveTimeout(cmd *cobra.Command, cfg *config.Config) *time.Duration {
	seconds := cfg.Compose.StopTimeout
	if cmd.Flags().Changed("timeout") {
		if v, err := cmd.Flags().GetInt("timeout"); err == nil {
			seconds = v
		}
	}
	d := time.Duration(seconds) * time.Second
	return &d
}
