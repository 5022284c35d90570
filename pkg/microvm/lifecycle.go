package microvm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/quantaform/firecracker-sdk/internal/cmdline"
	"github.com/quantaform/firecracker-sdk/internal/supervisor"
	"github.com/quantaform/firecracker-sdk/internal/transport"
	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

// startupGracePeriod is how long Boot waits after spawning the process
// before declaring it alive;
// a process that has already died within this window is reported as
// a StartupError rather than left to surface later as a confusing
// transport failure.
const startupGracePeriod = 100 * time.Millisecond

// stopGracePeriod is how long Stop waits for a clean SIGTERM exit
// before escalating to SIGKILL.
const stopGracePeriod = 5 * time.Second

// Boot materializes the launch command, spawns the Firecracker process,
// and waits out the startup grace period. Legal from initial or
// shutdown (re-start); idempotent (a no-op) once already started.
// Transitions to started on success.
func (s *Spec) Boot(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStarted {
		return nil
	}
	if s.state != StateInitial && s.state != StateShutdown {
		return &InvalidStateError{State: s.state, Operation: "boot"}
	}

	var autoConfig []byte
	if s.noAPI && s.configFilePath == "" {
		doc := s.buildConfigDocLocked()
		data, err := cmdline.MarshalConfigFile(doc)
		if err != nil {
			return &StartupError{Reason: "marshal auto-generated config file", Err: err}
		}
		autoConfig = data
	}

	result, err := cmdline.Build(cmdline.Input{
		Binary:         s.binaryPath,
		ID:             s.id,
		APISockPath:    s.apiSocketPath,
		NoAPI:          s.noAPI,
		ConfigFilePath: s.configFilePath,
		Options:        s.cliOptions,
		Jailer:         s.jailerSpec,
		AutoConfigJSON: autoConfig,
		TmpDir:         s.tmpDir,
	})
	if err != nil {
		return &StartupError{Reason: "build launch command", Err: err}
	}
	s.configFilePath = result.ConfigFilePath

	process, err := supervisor.Spawn(ctx, result.Binary, result.Argv, s.cliOptions.LogPath)
	if err != nil {
		return &StartupError{Reason: "spawn process", Err: err}
	}

	time.Sleep(startupGracePeriod)
	if !process.IsAlive() {
		status := process.Wait()
		return &StartupError{Reason: fmt.Sprintf("process exited during startup (exit code %d)", status.ExitCode), Err: status.Err}
	}

	s.process = process
	if !s.noAPI {
		s.client = transport.New(s.apiSocketPath)
	}
	s.state = StateStarted
	return nil
}

// Start boots the process if it hasn't been already, applies every
// configured resource, and issues InstanceStart, landing the spec in
// running. Idempotent once already running; also drives the re-start
// path from shutdown by booting a fresh process first.
func (s *Spec) Start(ctx context.Context) error {
	if s.State() == StateRunning {
		return nil
	}

	if state := s.State(); state == StateInitial || state == StateShutdown {
		if err := s.Boot(ctx); err != nil {
			return err
		}
	}

	if err := s.Apply(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStarted {
		return &InvalidStateError{State: s.state, Operation: "start"}
	}

	if s.client != nil {
		if err := s.client.CreateSyncAction(ctx, fcapi.ActionInstanceStart); err != nil {
			s.recordError("instance_start", err.Error())
			return err
		}
	}

	s.state = StateRunning
	return nil
}

// Pause transitions a running VM to paused via PATCH /vm.
func (s *Spec) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return &InvalidStateError{State: s.state, Operation: "pause"}
	}
	if s.client == nil {
		return &InvalidStateError{State: s.state, Operation: "pause (no_api)"}
	}
	if err := s.client.PatchVM(ctx, fcapi.VMStatePaused); err != nil {
		s.recordError("vm_state", err.Error())
		return err
	}
	s.state = StatePaused
	return nil
}

// Resume transitions a paused VM back to running.
func (s *Spec) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return &InvalidStateError{State: s.state, Operation: "resume"}
	}
	if s.client == nil {
		return &InvalidStateError{State: s.state, Operation: "resume (no_api)"}
	}
	if err := s.client.PatchVM(ctx, fcapi.VMStateResumed); err != nil {
		s.recordError("vm_state", err.Error())
		return err
	}
	s.state = StateRunning
	return nil
}

// FlushMetrics requests an out-of-band metrics write. Legal while
// running, paused, or shutdown.
func (s *Spec) FlushMetrics(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning && s.state != StatePaused && s.state != StateShutdown {
		return &InvalidStateError{State: s.state, Operation: "flush_metrics"}
	}
	if s.client == nil {
		return &InvalidStateError{State: s.state, Operation: "flush_metrics (no_api)"}
	}
	if err := s.client.CreateSyncAction(ctx, fcapi.ActionFlushMetrics); err != nil {
		s.recordError("flush_metrics", err.Error())
		return err
	}
	return nil
}

// Shutdown requests a graceful guest shutdown via SendCtrlAltDel and
// waits for the process to exit on its own, falling back to the same
// SIGTERM/SIGKILL escalation Stop uses if the guest doesn't cooperate
// within the grace period. Shutdown leaves the spec in the shutdown
// state — launch artifacts are left in place and the process handle is
// kept, so boot/flush_metrics remain legal and a subsequent Stop can
// still reap the process and clean up. Only Stop transitions to exited.
func (s *Spec) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	state := s.state
	client := s.client
	process := s.process
	s.mu.Unlock()

	if state != StateRunning && state != StatePaused {
		return &InvalidStateError{State: state, Operation: "shutdown"}
	}

	s.mu.Lock()
	s.state = StateShutdown
	s.mu.Unlock()

	if client != nil {
		if err := client.CreateSyncAction(ctx, fcapi.ActionSendCtrlAltDel); err != nil {
			s.mu.Lock()
			s.recordError("send_ctrl_alt_del", err.Error())
			s.mu.Unlock()
		}
	}

	if process != nil {
		select {
		case <-waitCh(process):
		case <-time.After(stopGracePeriod):
			process.Stop(stopGracePeriod)
		}
	}

	return nil
}

// Stop forcefully terminates the process (SIGTERM, escalating to
// SIGKILL) regardless of guest cooperation and cleans up launch
// artifacts. Legal from started, running, paused, or shutdown (to
// finish reaping a process a prior Shutdown call left alive or already
// killed but not yet cleaned up).
func (s *Spec) Stop(ctx context.Context) error {
	s.mu.Lock()
	state := s.state
	process := s.process
	s.mu.Unlock()

	if state != StateStarted && state != StateRunning && state != StatePaused && state != StateShutdown {
		return &InvalidStateError{State: state, Operation: "stop"}
	}

	if process != nil {
		process.Stop(stopGracePeriod)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupArtifactsLocked()
	s.state = StateExited
	return nil
}

// waitCh adapts Handle.Wait's blocking call into a channel usable in a
// select, since Handle exposes no done-channel accessor of its own.
func waitCh(h *supervisor.Handle) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		h.Wait()
		close(ch)
	}()
	return ch
}

// cleanupArtifactsLocked best-effort removes launch-time artifacts:
// the API socket, an auto-generated config file, and (if set) the vsock
// UDS, serial output file, and metrics file — but never logger.log_path,
// which the caller owns. Caller must hold s.mu.
func (s *Spec) cleanupArtifactsLocked() {
	if !s.noAPI && s.apiSocketPath != "" {
		_ = os.Remove(s.apiSocketPath)
	}

	if s.noAPI && s.configFilePath != "" {
		tmpDir := s.tmpDir
		if tmpDir == "" {
			tmpDir = os.TempDir()
		}
		if s.configFilePath == filepath.Join(tmpDir, s.id+".config.json") {
			_ = os.Remove(s.configFilePath)
		}
	}

	if slot := s.singletons[string(fcapi.KindVsock)]; slot != nil {
		if vsock, ok := slot.Value.(fcapi.Vsock); ok && vsock.UDSPath != "" {
			_ = os.Remove(vsock.UDSPath)
		}
	}
	if slot := s.singletons[string(fcapi.KindSerial)]; slot != nil {
		if serial, ok := slot.Value.(fcapi.Serial); ok && serial.OutputPath != "" {
			_ = os.Remove(serial.OutputPath)
		}
	}
	if slot := s.singletons[string(fcapi.KindMetrics)]; slot != nil {
		if metrics, ok := slot.Value.(fcapi.Metrics); ok && metrics.MetricsPath != "" {
			_ = os.Remove(metrics.MetricsPath)
		}
	}
}

// buildConfigDocLocked assembles the launch-time JSON config document
// from every currently configured resource, for no_api mode. Caller
// must hold s.mu.
func (s *Spec) buildConfigDocLocked() map[string]interface{} {
	doc := make(map[string]interface{})

	for key, slot := range s.singletons {
		if slot == nil {
			continue
		}
		doc[key] = slot.Value
	}

	addCollection := func(key string, coll map[string]*ResourceSlot) {
		if len(coll) == 0 {
			return
		}
		values := make([]interface{}, 0, len(coll))
		for _, slot := range coll {
			values = append(values, slot.Value)
		}
		doc[key] = values
	}
	addCollection(string(fcapi.KindDrive), s.drives)
	addCollection(string(fcapi.KindNetworkInterface), s.networkIfs)
	addCollection(string(fcapi.KindPmem), s.pmems)

	return doc
}
