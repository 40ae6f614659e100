package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/auto-compose/composectl/internal/dispatch"
	"github.com/auto-compose/composectl/internal/engine"
	"github.com/auto-compose/composectl/internal/snapshot"
)

type listing struct {
	records []snapshot.ContainerRecord
	err     error
}

// fakeOrchestrator serves queued listings and records which operations
// ran.
type fakeOrchestrator struct {
	pingErr   error
	listings  []listing
	listCalls int

	services []string
	names    []string
	namesErr error

	ops []string

	stopErr   error
	upTouched []string
	upErr     error
}

var _ orchestrator = (*fakeOrchestrator)(nil)

func (f *fakeOrchestrator) Ping(_ context.Context) error {
	return f.pingErr
}

func (f *fakeOrchestrator) Containers(_ context.Context) ([]snapshot.ContainerRecord, error) {
	if f.listCalls >= len(f.listings) {
		return nil, nil
	}
	l := f.listings[f.listCalls]
	f.listCalls++
	return l.records, l.err
}

func (f *fakeOrchestrator) SelectServices(names []string, _ bool) ([]string, error) {
	if len(names) == 0 {
		return f.services, nil
	}
	return names, nil
}

func (f *fakeOrchestrator) ContainerNamesFor(_ context.Context, _ []string) ([]string, error) {
	return f.names, f.namesErr
}

func (f *fakeOrchestrator) Build(_ context.Context, _ []string, _ bool) error {
	f.ops = append(f.ops, "build")
	return nil
}

func (f *fakeOrchestrator) Pull(_ context.Context, _ []string, _ bool) error {
	f.ops = append(f.ops, "pull")
	return nil
}

func (f *fakeOrchestrator) Start(_ context.Context, _ []string) error {
	f.ops = append(f.ops, "start")
	return nil
}

func (f *fakeOrchestrator) Stop(_ context.Context, _ []string, _ *time.Duration) error {
	f.ops = append(f.ops, "stop")
	return f.stopErr
}

func (f *fakeOrchestrator) Restart(_ context.Context, _ []string, _ *time.Duration) error {
	f.ops = append(f.ops, "restart")
	return nil
}

func (f *fakeOrchestrator) Kill(_ context.Context, _ []string, _ string) error {
	f.ops = append(f.ops, "kill")
	return nil
}

func (f *fakeOrchestrator) RemoveStopped(_ context.Context, _ []string) error {
	f.ops = append(f.ops, "remove-stopped")
	return nil
}

func (f *fakeOrchestrator) Scale(_ context.Context, service string, _ int) ([]string, error) {
	f.ops = append(f.ops, "scale "+service)
	return nil, nil
}

func (f *fakeOrchestrator) Up(_ context.Context, _ []string, _ engine.UpOptions) ([]string, error) {
	f.ops = append(f.ops, "up")
	return f.upTouched, f.upErr
}

func rec(name, statusText string, created time.Time) snapshot.ContainerRecord {
	return snapshot.ContainerRecord{Name: name, Created: created, Status: statusText}
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newRunner(eng *fakeOrchestrator) *Runner {
	return New(eng, zerolog.Nop())
}

func TestRun_DependencyMissing(t *testing.T) {
	eng := &fakeOrchestrator{pingErr: errors.New("connection refused")}

	res := newRunner(eng).Run(context.Background(), dispatch.Request{Verb: dispatch.VerbUp})

	assert.True(t, res.Failed)
	assert.False(t, res.Changed)
	assert.Contains(t, res.Message, "container runtime unavailable")
	assert.Empty(t, eng.ops)
	assert.Zero(t, eng.listCalls)
}

func TestRun_PreSnapshotFailure(t *testing.T) {
	eng := &fakeOrchestrator{
		listings: []listing{{err: errors.New("daemon busy")}},
	}

	res := newRunner(eng).Run(context.Background(), dispatch.Request{Verb: dispatch.VerbStop})

	assert.True(t, res.Failed)
	assert.False(t, res.Changed)
	assert.Contains(t, res.Message, "pre-operation snapshot")
	assert.Empty(t, eng.ops)
}

func TestRun_UnchangedWhenSnapshotsMatch(t *testing.T) {
	running := []snapshot.ContainerRecord{rec("app-web-1", "Up 5 minutes", t0)}
	eng := &fakeOrchestrator{
		names:    []string{"app-web-1"},
		listings: []listing{{records: running}, {records: running}},
	}

	res := newRunner(eng).Run(context.Background(), dispatch.Request{
		Verb:     dispatch.VerbStart,
		Services: []string{"web"},
	})

	assert.False(t, res.Failed)
	assert.False(t, res.Changed)
	assert.Contains(t, res.Message, "left state unchanged")
	assert.Equal(t, []string{"start"}, eng.ops)
}

func TestRun_ChangedOnPhaseTransition(t *testing.T) {
	eng := &fakeOrchestrator{
		upTouched: []string{"app-web-1"},
		listings: []listing{
			{records: []snapshot.ContainerRecord{rec("app-web-1", "Exited (0) 2 hours ago", t0)}},
			{records: []snapshot.ContainerRecord{rec("app-web-1", "Up 10 seconds", t0)}},
		},
	}

	res := newRunner(eng).Run(context.Background(), dispatch.Request{Verb: dispatch.VerbUp})

	assert.False(t, res.Failed)
	assert.True(t, res.Changed)
	assert.Contains(t, res.Message, "changed state")
}

func TestRun_FailedOperationStillReportsVerdict(t *testing.T) {
	eng := &fakeOrchestrator{
		names:   []string{"app-web-1"},
		stopErr: errors.New("daemon hiccup"),
		listings: []listing{
			{records: []snapshot.ContainerRecord{rec("app-web-1", "Up 5 minutes", t0)}},
			{records: []snapshot.ContainerRecord{rec("app-web-1", "Exited (137) 2 seconds ago", t0)}},
		},
	}

	res := newRunner(eng).Run(context.Background(), dispatch.Request{Verb: dispatch.VerbStop})

	assert.True(t, res.Failed)
	assert.True(t, res.Changed)
	assert.Contains(t, res.Message, "daemon hiccup")
	assert.Equal(t, 2, eng.listCalls)
}

func TestRun_FailedOperationWithoutStateChange(t *testing.T) {
	running := []snapshot.ContainerRecord{rec("app-web-1", "Up 5 minutes", t0)}
	eng := &fakeOrchestrator{
		names:    []string{"app-web-1"},
		stopErr:  errors.New("permission denied"),
		listings: []listing{{records: running}, {records: running}},
	}

	res := newRunner(eng).Run(context.Background(), dispatch.Request{Verb: dispatch.VerbStop})

	assert.True(t, res.Failed)
	assert.False(t, res.Changed)
}

func TestRun_DetectionFailureAssumesChanged(t *testing.T) {
	eng := &fakeOrchestrator{
		names: []string{"app-web-1"},
		listings: []listing{
			{records: []snapshot.ContainerRecord{rec("app-web-1", "Up 5 minutes", t0)}},
			{records: []snapshot.ContainerRecord{rec("app-web-1", "Up 3 days", t0)}},
		},
	}

	res := newRunner(eng).Run(context.Background(), dispatch.Request{Verb: dispatch.VerbRestart})

	assert.False(t, res.Failed)
	assert.True(t, res.Changed)
	assert.Contains(t, res.Message, "assuming changed")
}

func TestRun_DoubleFailureFallsBackToChanged(t *testing.T) {
	eng := &fakeOrchestrator{
		names:   []string{"app-web-1"},
		stopErr: errors.New("daemon hiccup"),
		listings: []listing{
			{records: []snapshot.ContainerRecord{rec("app-web-1", "Up 5 minutes", t0)}},
			{err: errors.New("daemon gone")},
		},
	}

	res := newRunner(eng).Run(context.Background(), dispatch.Request{Verb: dispatch.VerbStop})

	assert.True(t, res.Failed)
	assert.True(t, res.Changed)
	assert.Contains(t, res.Message, "daemon hiccup")
}

func TestRun_EmptyAffectedSetIsUnchanged(t *testing.T) {
	// The service has no containers, so even a wildly different post
	// snapshot cannot flip the verdict.
	eng := &fakeOrchestrator{
		names: nil,
		listings: []listing{
			{records: []snapshot.ContainerRecord{rec("app-db-1", "Up 5 minutes", t0)}},
			{records: nil},
		},
	}

	res := newRunner(eng).Run(context.Background(), dispatch.Request{
		Verb:     dispatch.VerbStop,
		Services: []string{"web"},
	})

	assert.False(t, res.Failed)
	assert.False(t, res.Changed)
}
