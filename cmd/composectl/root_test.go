package main

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-compose/composectl/internal/dispatch"
	"github.com/auto-compose/composectl/internal/runner"
)

func executeRoot(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	viper.Reset()
	t.Chdir(t.TempDir())

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	return buf, rootCmd.Execute()
}

func TestRootCommand_DispatchesUp(t *testing.T) {
	fake := &fakeApplication{result: runner.Result{
		Changed: true,
		Message: "up changed state (1 containers affected)",
	}}
	withFakeApplication(t, fake)

	buf, err := executeRoot(t, "up", "--no-deps", "web")

	require.NoError(t, err)
	assert.Equal(t, dispatch.VerbUp, fake.lastReq.Verb)
	assert.Equal(t, []string{"web"}, fake.lastReq.Services)
	assert.True(t, fake.lastReq.NoDeps)
	assert.False(t, fake.lastReq.NoBuild)
	assert.Contains(t, buf.String(), "up changed state")
}

func TestRootCommand_KillSignalFlag(t *testing.T) {
	fake := &fakeApplication{result: runner.Result{Message: "kill left state unchanged"}}
	withFakeApplication(t, fake)

	_, err := executeRoot(t, "kill", "--signal", "SIGHUP")

	require.NoError(t, err)
	assert.Equal(t, dispatch.VerbKill, fake.lastReq.Verb)
	assert.Equal(t, "SIGHUP", fake.lastReq.Signal)
}

func TestRootCommand_SupervisorRender(t *testing.T) {
	buf, err := executeRoot(t, "supervisor", "render")

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "[program:docker-events-agent]")
	assert.Contains(t, out, "autorestart=true")
}

func TestRootCommand_UnknownVerbFails(t *testing.T) {
	_, err := executeRoot(t, "bounce")

	require.Error(t, err)
}
