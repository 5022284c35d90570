package microvm

import (
	"context"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

// SnapshotDescriptor describes a save or load operation.
type SnapshotDescriptor struct {
	SnapshotPath     string
	MemFilePath      string
	Diff             bool
	MemoryBackend    *fcapi.MemoryBackend
	NetworkOverrides map[string]string // iface_id -> host_dev_name
	ResumeVM         bool
	TrackDirtyPages  bool
}

// Save snapshots the microVM to disk. Legal only while state = paused.
func (s *Spec) Save(ctx context.Context, d SnapshotDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return &InvalidStateError{State: s.state, Operation: "save"}
	}
	if s.client == nil {
		return &InvalidStateError{State: s.state, Operation: "save (no_api)"}
	}

	snapshotType := fcapi.SnapshotTypeFull
	if d.Diff {
		snapshotType = fcapi.SnapshotTypeDiff
	}

	body := fcapi.SnapshotCreate{
		SnapshotPath: d.SnapshotPath,
		MemFilePath:  d.MemFilePath,
		SnapshotType: snapshotType,
	}

	if err := s.client.CreateSnapshot(ctx, body); err != nil {
		s.recordError("snapshot", err.Error())
		return err
	}
	return nil
}

// Load restores a microVM from a prior snapshot. Legal only while
// state = started (process spawned, guest not yet booted). On success
// with ResumeVM set, the spec transitions directly to running;
// otherwise it lands in paused.
func (s *Spec) Load(ctx context.Context, d SnapshotDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStarted {
		return &InvalidStateError{State: s.state, Operation: "load"}
	}
	if s.client == nil {
		return &InvalidStateError{State: s.state, Operation: "load (no_api)"}
	}

	overrides := make([]fcapi.NetworkOverride, 0, len(d.NetworkOverrides))
	for ifaceID, hostDev := range d.NetworkOverrides {
		overrides = append(overrides, fcapi.NetworkOverride{IfaceID: ifaceID, HostDevName: hostDev})
	}

	body := fcapi.SnapshotLoad{
		SnapshotPath:        d.SnapshotPath,
		MemFilePath:         d.MemFilePath,
		MemBackend:          d.MemoryBackend,
		NetworkOverrides:    overrides,
		EnableDiffSnapshots: d.Diff,
		ResumeVM:            d.ResumeVM,
		TrackDirtyPages:     d.TrackDirtyPages,
	}

	if err := s.client.LoadSnapshot(ctx, body); err != nil {
		s.recordError("snapshot", err.Error())
		return err
	}

	if d.ResumeVM {
		s.state = StateRunning
	} else {
		s.state = StatePaused
	}
	return nil
}
