package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnAndWaitObservesExitCode(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fc.log")

	h, err := Spawn(context.Background(), "/bin/sh", []string{"-c", "exit 7"}, logPath)
	require.NoError(t, err)

	status := h.Wait()
	assert.Equal(t, 7, status.ExitCode)
	assert.False(t, h.IsAlive())
}

func TestIsAliveWhileRunning(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fc.log")

	h, err := Spawn(context.Background(), "/bin/sh", []string{"-c", "sleep 5"}, logPath)
	require.NoError(t, err)
	defer h.Stop(2 * time.Second)

	time.Sleep(50 * time.Millisecond)
	assert.True(t, h.IsAlive())
}

func TestStopEscalatesFromSigtermToSigkill(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fc.log")

	// Ignores SIGTERM so Stop must escalate to SIGKILL within the grace
	// window to reap it.
	h, err := Spawn(context.Background(), "/bin/sh", []string{"-c", "trap '' TERM; sleep 30"}, logPath)
	require.NoError(t, err)

	status := h.Stop(200 * time.Millisecond)
	assert.True(t, status.Signaled || status.ExitCode != 0, "expected the escalated kill to be observed")
}

func TestStopOnNormalSigtermExit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fc.log")

	h, err := Spawn(context.Background(), "/bin/sh", []string{"-c", "sleep 30"}, logPath)
	require.NoError(t, err)

	status := h.Stop(2 * time.Second)
	assert.True(t, status.Signaled)
	assert.Equal(t, 128+int(syscall.SIGTERM), status.ExitCode)
	assert.False(t, h.IsAlive())
}

func TestSignalIsNoopAfterExit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fc.log")

	h, err := Spawn(context.Background(), "/bin/sh", []string{"-c", "exit 0"}, logPath)
	require.NoError(t, err)
	h.Wait()

	err = h.Signal(syscall.SIGTERM)
	assert.NoError(t, err)
}

func TestSpawnWritesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fc.log")

	h, err := Spawn(context.Background(), "/bin/sh", []string{"-c", "echo hello"}, logPath)
	require.NoError(t, err)
	h.Wait()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
