package microvm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeBinary writes an executable shell script that ignores its
// argv (real Firecracker argv isn't meaningful to /bin/sh) and either
// sleeps or exits immediately, standing in for the real firecracker
// binary in Boot/Stop tests.
func writeFakeBinary(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-firecracker")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestBootTransitionsToStarted(t *testing.T) {
	bin := writeFakeBinary(t, "sleep 5")
	s := New(WithBinaryPath(bin), WithTmpDir(t.TempDir()))

	require.NoError(t, s.Boot(t.Context()))
	assert.Equal(t, StateStarted, s.State())

	require.NoError(t, s.Stop(t.Context()))
	assert.Equal(t, StateExited, s.State())
}

func TestBootReportsStartupErrorOnImmediateExit(t *testing.T) {
	bin := writeFakeBinary(t, "exit 1")
	s := New(WithBinaryPath(bin), WithTmpDir(t.TempDir()))

	err := s.Boot(t.Context())
	var startupErr *StartupError
	assert.ErrorAs(t, err, &startupErr)
	assert.Equal(t, StateInitial, s.State())
}

func TestBootRejectsNonInitialState(t *testing.T) {
	bin := writeFakeBinary(t, "sleep 5")
	s := New(WithBinaryPath(bin), WithTmpDir(t.TempDir()))
	s.state = StateRunning

	err := s.Boot(t.Context())
	var invalidState *InvalidStateError
	assert.ErrorAs(t, err, &invalidState)
}

func TestPauseRequiresRunningState(t *testing.T) {
	rt := &fakeRoundTripper{}
	s := newTestSpecWithClient(rt)

	err := s.Pause(t.Context())
	var invalidState *InvalidStateError
	assert.ErrorAs(t, err, &invalidState)
}

func TestPauseThenResume(t *testing.T) {
	rt := &fakeRoundTripper{}
	s := newTestSpecWithClient(rt)
	s.state = StateRunning

	require.NoError(t, s.Pause(t.Context()))
	assert.Equal(t, StatePaused, s.State())

	require.NoError(t, s.Resume(t.Context()))
	assert.Equal(t, StateRunning, s.State())
}

func TestFlushMetricsRejectsStartedState(t *testing.T) {
	rt := &fakeRoundTripper{}
	s := newTestSpecWithClient(rt)

	err := s.FlushMetrics(t.Context())
	var invalidState *InvalidStateError
	assert.ErrorAs(t, err, &invalidState)
}

func TestStopCleansUpAPISocket(t *testing.T) {
	bin := writeFakeBinary(t, "sleep 5")
	sockDir := t.TempDir()
	sockPath := filepath.Join(sockDir, "fc.sock")
	require.NoError(t, os.WriteFile(sockPath, []byte("x"), 0644))

	s := New(WithBinaryPath(bin), WithAPISocketPath(sockPath), WithTmpDir(t.TempDir()))
	require.NoError(t, s.Boot(t.Context()))
	require.NoError(t, s.Stop(t.Context()))

	_, err := os.Stat(sockPath)
	assert.True(t, os.IsNotExist(err))
}

func TestShutdownRequiresRunningOrPaused(t *testing.T) {
	rt := &fakeRoundTripper{}
	s := newTestSpecWithClient(rt)

	err := s.Shutdown(t.Context())
	var invalidState *InvalidStateError
	assert.ErrorAs(t, err, &invalidState)
}

func TestShutdownWaitsForProcessExitThenMarksShutdown(t *testing.T) {
	bin := writeFakeBinary(t, "sleep 0.5")
	s := New(WithBinaryPath(bin), WithTmpDir(t.TempDir()))

	require.NoError(t, s.Boot(t.Context()))
	s.state = StateRunning

	require.NoError(t, s.Shutdown(t.Context()))
	assert.Equal(t, StateShutdown, s.State())

	require.NoError(t, s.Stop(t.Context()))
	assert.Equal(t, StateExited, s.State())
}

func TestStartIsIdempotentOnceRunning(t *testing.T) {
	rt := &fakeRoundTripper{}
	s := newTestSpecWithClient(rt)
	s.state = StateRunning

	require.NoError(t, s.Start(t.Context()))
	assert.Equal(t, StateRunning, s.State())
	assert.Empty(t, rt.requests)
}

func TestBootIsIdempotentOnceStarted(t *testing.T) {
	bin := writeFakeBinary(t, "sleep 5")
	s := New(WithBinaryPath(bin), WithTmpDir(t.TempDir()))

	require.NoError(t, s.Boot(t.Context()))
	process := s.process

	require.NoError(t, s.Boot(t.Context()))
	assert.Equal(t, StateStarted, s.State())
	assert.Same(t, process, s.process)

	require.NoError(t, s.Stop(t.Context()))
}

func TestBootAllowsReStartFromShutdown(t *testing.T) {
	bin := writeFakeBinary(t, "sleep 5")
	s := New(WithBinaryPath(bin), WithTmpDir(t.TempDir()))
	s.state = StateShutdown

	require.NoError(t, s.Boot(t.Context()))
	assert.Equal(t, StateStarted, s.State())

	require.NoError(t, s.Stop(t.Context()))
	assert.Equal(t, StateExited, s.State())
}

func TestNoAPIBootWritesAutoGeneratedConfigFile(t *testing.T) {
	bin := writeFakeBinary(t, "sleep 5")
	tmp := t.TempDir()
	s := New(WithBinaryPath(bin), WithNoAPI(""), WithTmpDir(tmp))

	require.NoError(t, s.Boot(t.Context()))
	defer s.Stop(t.Context())

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	found := false
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			found = true
		}
	}
	assert.True(t, found, "expected an auto-generated config file in tmpDir")
}
