package microvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreBootWindow(t *testing.T) {
	assert.True(t, StateInitial.preBootWindow())
	assert.True(t, StateStarted.preBootWindow())
	assert.False(t, StateRunning.preBootWindow())
	assert.False(t, StatePaused.preBootWindow())
	assert.False(t, StateShutdown.preBootWindow())
	assert.False(t, StateExited.preBootWindow())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
}
