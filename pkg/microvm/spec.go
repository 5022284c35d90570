// Package microvm implements the core of the SDK: the VM specification
// aggregate, its state machine, the apply/reconciliation engine, the
// snapshot controller, mmds helpers, and the jailer attach point.
package microvm

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/quantaform/firecracker-sdk/internal/cmdline"
	"github.com/quantaform/firecracker-sdk/internal/jailer"
	"github.com/quantaform/firecracker-sdk/internal/supervisor"
	"github.com/quantaform/firecracker-sdk/internal/transport"
)

// ResourceSlot holds one resource's declarative value, its applied
// flag, and the set of bag keys supplied since the last successful
// apply (used by resources like balloon whose endpoints are only
// patched when the corresponding field was actually present in a
// Configure/Add call, not merely non-zero in the merged value).
type ResourceSlot struct {
	Value       interface{}
	Applied     bool
	DirtyFields map[string]bool
}

// Tracing is an optional HTTP tracing hook attached to the transport
// client.
type Tracing struct {
	Kind    string // "logger" or "file"
	Options map[string]string
}

// Spec is the root VM specification aggregate.
type Spec struct {
	mu sync.RWMutex

	id             string
	apiSocketPath  string
	binaryPath     string
	cliOptions     cmdline.Options
	configFilePath string
	noAPI          bool

	singletons  map[string]*ResourceSlot
	drives      map[string]*ResourceSlot
	networkIfs  map[string]*ResourceSlot
	pmems       map[string]*ResourceSlot

	jailerSpec *jailer.Spec

	state   State
	process *supervisor.Handle
	client  *transport.Client

	errors  []ErrorEntry
	tracing *Tracing

	// tmpDir roots the auto-generated config file; overridable for
	// tests. The default socket path is always under os.TempDir().
	tmpDir string
}

// Option configures a Spec at construction time via the functional
// options pattern.
type Option func(*Spec)

// WithID overrides the default generated id.
func WithID(id string) Option { return func(s *Spec) { s.id = id } }

// WithAPISocketPath overrides the default generated socket path.
func WithAPISocketPath(path string) Option { return func(s *Spec) { s.apiSocketPath = path } }

// WithBinaryPath overrides Firecracker binary resolution.
func WithBinaryPath(path string) Option { return func(s *Spec) { s.binaryPath = path } }

// WithNoAPI disables the REST control plane; the instance must be
// launched with a config file instead.
func WithNoAPI(configFilePath string) Option {
	return func(s *Spec) {
		s.noAPI = true
		s.configFilePath = configFilePath
	}
}

// WithConfigFile supplies an externally-prepared launch config file.
func WithConfigFile(path string) Option { return func(s *Spec) { s.configFilePath = path } }

// WithTmpDir overrides the directory the auto-generated config file is
// written to (defaults to os.TempDir()).
func WithTmpDir(dir string) Option { return func(s *Spec) { s.tmpDir = dir } }

const defaultBinaryPathSuffix = ".firecracker/bin/firecracker"

// New constructs a VM specification in its initial state, applying
// default id/socket-path/binary-path resolution (explicit option →
// environment → default) and any supplied Options.
func New(opts ...Option) *Spec {
	s := &Spec{
		singletons: make(map[string]*ResourceSlot),
		drives:     make(map[string]*ResourceSlot),
		networkIfs: make(map[string]*ResourceSlot),
		pmems:      make(map[string]*ResourceSlot),
		state:      StateInitial,
		tmpDir:     os.TempDir(),
	}

	unique := uuid.NewString()
	s.id = "anonymous-instance-" + unique
	s.apiSocketPath = filepath.Join(os.TempDir(), fmt.Sprintf("firecracker.%s.sock", unique))

	for _, opt := range opts {
		opt(s)
	}

	if s.binaryPath == "" {
		s.binaryPath = resolveBinaryPath("")
	}

	return s
}

func resolveBinaryPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("FIRECRACKER_PATH"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, defaultBinaryPathSuffix)
}

// ID returns the VM's id.
func (s *Spec) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// State returns the current lifecycle state.
func (s *Spec) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// APISocketPath returns the REST control-plane socket path ("" when
// no_api is set).
func (s *Spec) APISocketPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.noAPI {
		return ""
	}
	return s.apiSocketPath
}

// Errors returns a copy of the ordered (most-recent-first) error log
// the apply engine and lifecycle REST calls append to.
func (s *Spec) Errors() []ErrorEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ErrorEntry, len(s.errors))
	copy(out, s.errors)
	return out
}

func (s *Spec) recordError(resourceKey, message string) {
	entry := ErrorEntry{ResourceKey: resourceKey, Message: message}
	s.errors = append([]ErrorEntry{entry}, s.errors...)
	logrus.WithFields(logrus.Fields{"resource": resourceKey, "vm_id": s.id}).
		WithError(fmt.Errorf("%s", message)).Warn("microvm: apply failed for resource")
}

// SetOption sets one of the Firecracker process's CLI-surface options.
// Legal only while state = initial.
func (s *Spec) SetOption(mutate func(*cmdline.Options)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInitial {
		return &InvalidStateError{State: s.state, Operation: "set_option"}
	}
	mutate(&s.cliOptions)
	return nil
}

// Jail attaches a jailer spec. Legal only while state = initial.
func (s *Spec) Jail(j *jailer.Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInitial {
		return &InvalidStateError{State: s.state, Operation: "jail"}
	}
	if err := j.Validate(); err != nil {
		return &InvalidOptionError{Field: "jailer", Reason: err.Error()}
	}
	s.jailerSpec = j
	return nil
}

// Cgroup mutates the attached jailer's cgroup map. Fails if no jailer
// is attached or the spec has exited.
func (s *Spec) Cgroup(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateExited {
		return &InvalidStateError{State: s.state, Operation: "cgroup"}
	}
	if s.jailerSpec == nil {
		return fmt.Errorf("no jailer attached")
	}
	s.jailerSpec.Cgroup(name, value)
	return nil
}

// ResourceLimit mutates the attached jailer's rlimit map. Fails if no
// jailer is attached or the spec has exited.
func (s *Spec) ResourceLimit(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateExited {
		return &InvalidStateError{State: s.state, Operation: "resource_limit"}
	}
	if s.jailerSpec == nil {
		return fmt.Errorf("no jailer attached")
	}
	s.jailerSpec.ResourceLimit(name, value)
	return nil
}
