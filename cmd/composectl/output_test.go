package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-compose/composectl/internal/config"
	"github.com/auto-compose/composectl/internal/dispatch"
	"github.com/auto-compose/composectl/internal/engine"
	"github.com/auto-compose/composectl/internal/runner"
)

type fakeApplication struct {
	result     runner.Result
	details    []engine.ContainerDetail
	detailsErr error

	lastReq dispatch.Request
	closed  bool
}

func (f *fakeApplication) Run(_ context.Context, req dispatch.Request) runner.Result {
	f.lastReq = req
	return f.result
}

func (f *fakeApplication) Details(_ context.Context) ([]engine.ContainerDetail, error) {
	return f.details, f.detailsErr
}

func (f *fakeApplication) Close() error {
	f.closed = true
	return nil
}

func withFakeApplication(t *testing.T, fake *fakeApplication) {
	t.Helper()
	orig := newApplication
	newApplication = func(_ context.Context, _ *config.Config, _ zerolog.Logger) (application, error) {
		return fake, nil
	}
	t.Cleanup(func() { newApplication = orig })
}

func testConfig(format string) *config.Config {
	return &config.Config{
		Compose: config.ComposeConfig{StopTimeout: 10},
		Logging: config.LoggingConfig{Level: "error"},
		Output:  config.OutputConfig{Format: format},
	}
}

func testCommand(t *testing.T, cfg *config.Config) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(context.WithValue(context.Background(), configKey, cfg))
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd, buf
}

func TestRunVerb_JSONResult(t *testing.T) {
	fake := &fakeApplication{result: runner.Result{
		Changed: true,
		Message: "up changed state (2 containers affected)",
	}}
	withFakeApplication(t, fake)
	cmd, buf := testCommand(t, testConfig("json"))

	err := runVerb(cmd, dispatch.Request{Verb: dispatch.VerbUp, Services: []string{"web"}})

	require.NoError(t, err)
	var res runner.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.True(t, res.Changed)
	assert.False(t, res.Failed)
	assert.Equal(t, "up changed state (2 containers affected)", res.Message)
	assert.Equal(t, dispatch.VerbUp, fake.lastReq.Verb)
	assert.Equal(t, []string{"web"}, fake.lastReq.Services)
	assert.True(t, fake.closed)
}

func TestRunVerb_FailedResultExitsNonZero(t *testing.T) {
	fake := &fakeApplication{result: runner.Result{
		Changed: true,
		Failed:  true,
		Message: "stopping container app-web-1: boom",
	}}
	withFakeApplication(t, fake)
	cmd, buf := testCommand(t, testConfig("text"))

	err := runVerb(cmd, dispatch.Request{Verb: dispatch.VerbStop})

	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, buf.String(), "stopping container app-web-1: boom")
	assert.True(t, fake.closed)
}

func TestRunVerb_FailedJSONStillRendersBeforeExit(t *testing.T) {
	fake := &fakeApplication{result: runner.Result{Failed: true, Message: "boom"}}
	withFakeApplication(t, fake)
	cmd, buf := testCommand(t, testConfig("json"))

	err := runVerb(cmd, dispatch.Request{Verb: dispatch.VerbKill})

	assert.ErrorIs(t, err, errFailed)
	var res runner.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.True(t, res.Failed)
}

func TestRenderResult_TextShowsVerdict(t *testing.T) {
	cmd, buf := testCommand(t, testConfig("text"))

	err := renderResult(cmd, "text", runner.Result{Changed: false, Message: "start left state unchanged"})

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "start left state unchanged")
	assert.Contains(t, out, "changed")
	assert.Contains(t, out, "false")
}

func TestRenderResult_UnknownFormat(t *testing.T) {
	cmd, _ := testCommand(t, testConfig("text"))

	err := renderResult(cmd, "yaml", runner.Result{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "yaml"`)
}

func TestRenderDetails_Empty(t *testing.T) {
	cmd, buf := testCommand(t, testConfig("text"))

	require.NoError(t, renderDetails(cmd, "text", nil))

	assert.Contains(t, buf.String(), "no containers found")
}

func TestRenderDetails_JSON(t *testing.T) {
	cmd, buf := testCommand(t, testConfig("json"))
	details := []engine.ContainerDetail{{
		Name:    "app-web-1",
		Service: "web",
		State:   "running",
		Status:  "Up 5 minutes",
		Created: time.Now().Add(-5 * time.Minute),
	}}

	require.NoError(t, renderDetails(cmd, "json", details))

	var decoded []engine.ContainerDetail
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "app-web-1", decoded[0].Name)
}

func TestRenderDetails_TextTable(t *testing.T) {
	cmd, buf := testCommand(t, testConfig("text"))
	details := []engine.ContainerDetail{{
		Name:    "app-web-1",
		Service: "web",
		State:   "running",
		Status:  "Up 5 minutes",
		Created: time.Now().Add(-5 * time.Minute),
	}}

	require.NoError(t, renderDetails(cmd, "text", details))

	out := buf.String()
	assert.Contains(t, out, "app-web-1")
	assert.Contains(t, out, "Up 5 minutes")
	assert.Contains(t, out, "SERVICE")
}

func TestResolveTimeout(t *testing.T) {
	cfg := testConfig("text")
	cmd := &cobra.Command{}
	cmd.Flags().Int("timeout", 0, "")

	d := resolveTimeout(cmd, cfg)
	require.NotNil(t, d)
	assert.Equal(t, 10*time.Second, *d)

	require.NoError(t, cmd.Flags().Set("timeout", "3"))
	d = resolveTimeout(cmd, cfg)
	require.NotNil(t, d)
	assert.Equal(t, 3*time.Second, *d)
}

func TestParseScaleArgs(t *testing.T) {
	mapping, err := parseScaleArgs([]string{"web=3", "db=0"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"web": "3", "db": "0"}, mapping)

	mapping, err = parseScaleArgs(nil)
	require.NoError(t, err)
	assert.Nil(t, mapping)

	_, err = parseScaleArgs([]string{"web"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `malformed scale argument "web"`)

	_, err = parseScaleArgs([]string{"=3"})
	require.Error(t, err)
}
