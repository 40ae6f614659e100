package runner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/auto-compose/composectl/internal/detect"
	"github.com/auto-compose/composectl/internal/dispatch"
	"github.com/auto-compose/composectl/internal/snapshot"
)

// Result is the outcome reported to the invoking configuration engine.
// Changed answers "did system state move", independently of Failed:
// a failed operation may well have mutated state before it broke.
type Result struct {
	Changed bool   `json:"changed"`
	Failed  bool   `json:"failed"`
	Message string `json:"message"`
}

// Runner executes one verb between a pre and post snapshot and turns
// the three outcomes (operation, snapshots, detection) into a Result.
type Runner struct {
	eng    orchestrator
	logger zerolog.Logger
}

func New(eng orchestrator, logger zerolog.Logger) *Runner {
	return &Runner{
		eng:    eng,
		logger: logger,
	}
}

// Run performs the capability check, the verb, and change detection.
// It never returns an error: every failure mode is folded into the
// Result so the caller always gets a usable changed verdict.
func (r *Runner) Run(ctx context.Context, req dispatch.Request) Result {
	if err := r.eng.Ping(ctx); err != nil {
		missing := NewDependencyMissingError(err)
		r.logger.Error().Err(missing).Msg("Capability check failed")
		return Result{Failed: true, Message: missing.Error()}
	}

	pre, err := r.capture(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("Pre-operation snapshot failed")
		return Result{Failed: true, Message: fmt.Sprintf("pre-operation snapshot: %v", err)}
	}

	r.logger.Info().Str("verb", string(req.Verb)).Strs("services", req.Services).Msg("Executing operation")
	affected, opErr := dispatch.Dispatch(ctx, r.eng, req)
	if opErr != nil {
		r.logger.Error().Err(opErr).Str("verb", string(req.Verb)).Msg("Operation failed")
	}

	// The post snapshot and the verdict are computed even when the
	// operation failed: a partial failure can still have moved state,
	// and the caller must never see a false "nothing changed".
	changed, detectErr := r.verdict(ctx, pre, affected)
	if detectErr != nil {
		r.logger.Warn().Err(detectErr).Msg("Change detection failed, assuming changed")
		changed = true
	}

	res := Result{Changed: changed, Failed: opErr != nil}
	switch {
	case opErr != nil:
		res.Message = opErr.Error()
	case detectErr != nil:
		res.Message = fmt.Sprintf("%s completed, assuming changed: %v", req.Verb, detectErr)
	case changed:
		res.Message = fmt.Sprintf("%s changed state (%d containers affected)", req.Verb, len(affected))
	default:
		res.Message = fmt.Sprintf("%s left state unchanged", req.Verb)
	}

	r.logger.Info().Bool("changed", res.Changed).Bool("failed", res.Failed).Msg(res.Message)
	return res
}

func (r *Runner) capture(ctx context.Context) (snapshot.Snapshot, error) {
	records, err := r.eng.Containers(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.FromRecords(records, r.logger), nil
}

func (r *Runner) verdict(ctx context.Context, pre snapshot.Snapshot, affected []string) (bool, error) {
	post, err := r.capture(ctx)
	if err != nil {
		return false, fmt.Errorf("post-operation snapshot: %w", err)
	}
	return detect.Changed(pre, post, affected, r.logger)
}
