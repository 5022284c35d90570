package microvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRequiresPausedState(t *testing.T) {
	rt := &fakeRoundTripper{}
	s := newTestSpecWithClient(rt)
	s.state = StateRunning

	err := s.Save(t.Context(), SnapshotDescriptor{SnapshotPath: "/snap/state"})
	var invalidState *InvalidStateError
	assert.ErrorAs(t, err, &invalidState)
}

func TestSaveIssuesCreateSnapshot(t *testing.T) {
	rt := &fakeRoundTripper{}
	s := newTestSpecWithClient(rt)
	s.state = StatePaused

	err := s.Save(t.Context(), SnapshotDescriptor{SnapshotPath: "/snap/state", MemFilePath: "/snap/mem", Diff: true})
	require.NoError(t, err)

	require.Len(t, rt.requests, 1)
	assert.Equal(t, "/snapshot/create", rt.requests[0].URL.Path)
}

func TestLoadRequiresStartedState(t *testing.T) {
	rt := &fakeRoundTripper{}
	s := newTestSpecWithClient(rt)
	s.state = StateInitial

	err := s.Load(t.Context(), SnapshotDescriptor{SnapshotPath: "/snap/state"})
	var invalidState *InvalidStateError
	assert.ErrorAs(t, err, &invalidState)
}

func TestLoadWithResumeVMTransitionsToRunning(t *testing.T) {
	rt := &fakeRoundTripper{}
	s := newTestSpecWithClient(rt)
	s.state = StateStarted

	err := s.Load(t.Context(), SnapshotDescriptor{SnapshotPath: "/snap/state", ResumeVM: true})
	require.NoError(t, err)
	assert.Equal(t, StateRunning, s.State())
}

func TestLoadWithoutResumeVMTransitionsToPaused(t *testing.T) {
	rt := &fakeRoundTripper{}
	s := newTestSpecWithClient(rt)
	s.state = StateStarted

	err := s.Load(t.Context(), SnapshotDescriptor{SnapshotPath: "/snap/state"})
	require.NoError(t, err)
	assert.Equal(t, StatePaused, s.State())
}
