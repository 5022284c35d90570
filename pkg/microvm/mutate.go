package microvm

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
	"github.com/quantaform/firecracker-sdk/pkg/fcapi/schema"
)

func toMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := make(map[string]interface{})
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap(m map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// unionDirty returns the set of bag keys present in bag, unioned onto
// whatever was already dirty on an existing, not-yet-applied slot (so
// consecutive Configure/Add calls before an Apply accumulate rather
// than overwrite which fields are pending).
func unionDirty(existing *ResourceSlot, bag schema.Bag) map[string]bool {
	dirty := make(map[string]bool, len(bag))
	if existing != nil && !existing.Applied {
		for k := range existing.DirtyFields {
			dirty[k] = true
		}
	}
	for k := range bag {
		dirty[k] = true
	}
	return dirty
}

// newValueFor returns a zero value of the concrete Go type a resource
// Kind is stored as, so merges have a typed starting point when the
// resource slot is empty.
func newValueFor(kind fcapi.Kind) (interface{}, error) {
	switch kind {
	case fcapi.KindBootSource:
		return fcapi.BootSource{}, nil
	case fcapi.KindMachineConfig:
		return fcapi.MachineConfig{}, nil
	case fcapi.KindBalloon:
		return fcapi.Balloon{}, nil
	case fcapi.KindCPUConfig:
		return fcapi.CPUConfig{}, nil
	case fcapi.KindEntropy:
		return fcapi.Entropy{}, nil
	case fcapi.KindLogger:
		return fcapi.Logger{}, nil
	case fcapi.KindMetrics:
		return fcapi.Metrics{}, nil
	case fcapi.KindMmdsConfig:
		return fcapi.MmdsConfig{}, nil
	case fcapi.KindSerial:
		return fcapi.Serial{}, nil
	case fcapi.KindVsock:
		return fcapi.Vsock{}, nil
	case fcapi.KindDrive:
		return fcapi.Drive{}, nil
	case fcapi.KindNetworkInterface:
		return fcapi.NetworkInterface{}, nil
	case fcapi.KindPmem:
		return fcapi.Pmem{}, nil
	default:
		return nil, &InvalidResourceError{Resource: string(kind)}
	}
}

// mergeBag overlays bag onto existing (or, if existing is nil, onto the
// resource kind's zero value) and returns a freshly typed value of the
// same concrete Go type, via a JSON round trip through a plain map so
// fields absent from bag are left untouched.
func mergeBag(existing interface{}, kind fcapi.Kind, bag schema.Bag) (interface{}, error) {
	base := existing
	if base == nil {
		var err error
		base, err = newValueFor(kind)
		if err != nil {
			return nil, err
		}
	}

	m, err := toMap(base)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", kind, err)
	}
	for k, v := range bag {
		m[k] = v
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", kind, err)
	}

	resultPtr := reflect.New(reflect.TypeOf(base))
	if err := json.Unmarshal(data, resultPtr.Interface()); err != nil {
		return nil, fmt.Errorf("merge %s: %w", kind, err)
	}
	return resultPtr.Elem().Interface(), nil
}

// Configure mutates one of the singleton resources (every resource kind
// except drives, network_interfaces, pmems, and mmds, which use Add and
// the Mmds* helpers respectively).
func (s *Spec) Configure(kind fcapi.Kind, bag schema.Bag) error {
	if kind.Collection() || kind == fcapi.KindMmds {
		return &InvalidResourceError{Resource: string(kind)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateExited {
		return &InvalidStateError{State: s.state, Operation: "configure"}
	}

	res, ok := schema.Registry[kind]
	if !ok {
		return &InvalidResourceError{Resource: string(kind)}
	}

	preBoot := s.state.preBootWindow()
	slot := s.singletons[string(kind)]
	isCreate := slot == nil

	if isCreate && !preBoot {
		return &CannotCreateAfterBootError{Kind: string(kind)}
	}

	sch := res.Pre
	if !preBoot {
		sch = res.Post
	}

	if err := schema.Validate(bag, sch, isCreate); err != nil {
		return err
	}

	var existing interface{}
	if slot != nil {
		existing = slot.Value
	}
	merged, err := mergeBag(existing, kind, bag)
	if err != nil {
		return err
	}

	s.singletons[string(kind)] = &ResourceSlot{Value: merged, Applied: false, DirtyFields: unionDirty(slot, bag)}
	return nil
}

// Add creates or updates a member of one of the keyed collections
// (drives, network_interfaces, pmems).
func (s *Spec) Add(kind fcapi.Kind, id string, bag schema.Bag) error {
	if !kind.Collection() {
		return &InvalidResourceError{Resource: string(kind)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateExited {
		return &InvalidStateError{State: s.state, Operation: "add"}
	}

	res, ok := schema.Registry[kind]
	if !ok {
		return &InvalidResourceError{Resource: string(kind)}
	}

	coll := s.collectionFor(kind)
	preBoot := s.state.preBootWindow()
	slot, exists := coll[id]
	isCreate := !exists

	if isCreate && !preBoot {
		return &CannotAddMemberError{Kind: string(kind), ID: id}
	}

	sch := res.Pre
	if !preBoot {
		sch = res.Post
	}

	if err := schema.Validate(bag, sch, isCreate); err != nil {
		return err
	}

	var existing interface{}
	if slot != nil {
		existing = slot.Value
	}
	merged, err := mergeBag(existing, kind, bag)
	if err != nil {
		return err
	}

	coll[id] = &ResourceSlot{Value: merged, Applied: false, DirtyFields: unionDirty(slot, bag)}
	return nil
}

func (s *Spec) collectionFor(kind fcapi.Kind) map[string]*ResourceSlot {
	switch kind {
	case fcapi.KindDrive:
		return s.drives
	case fcapi.KindNetworkInterface:
		return s.networkIfs
	case fcapi.KindPmem:
		return s.pmems
	default:
		return nil
	}
}

// BootSource returns the current boot_source value, if configured.
func (s *Spec) BootSource() (fcapi.BootSource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot := s.singletons[string(fcapi.KindBootSource)]
	if slot == nil {
		return fcapi.BootSource{}, false
	}
	return slot.Value.(fcapi.BootSource), true
}

// MachineConfig returns the current machine_config value, if configured.
func (s *Spec) MachineConfig() (fcapi.MachineConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot := s.singletons[string(fcapi.KindMachineConfig)]
	if slot == nil {
		return fcapi.MachineConfig{}, false
	}
	return slot.Value.(fcapi.MachineConfig), true
}

// Balloon returns the current balloon value, if configured.
func (s *Spec) Balloon() (fcapi.Balloon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot := s.singletons[string(fcapi.KindBalloon)]
	if slot == nil {
		return fcapi.Balloon{}, false
	}
	return slot.Value.(fcapi.Balloon), true
}

// Drive returns one drive by id, if present.
func (s *Spec) Drive(id string) (fcapi.Drive, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.drives[id]
	if !ok {
		return fcapi.Drive{}, false
	}
	return slot.Value.(fcapi.Drive), true
}

// NetworkInterface returns one network interface by id, if present.
func (s *Spec) NetworkInterface(id string) (fcapi.NetworkInterface, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.networkIfs[id]
	if !ok {
		return fcapi.NetworkInterface{}, false
	}
	return slot.Value.(fcapi.NetworkInterface), true
}

// Pmem returns one pmem device by id, if present.
func (s *Spec) Pmem(id string) (fcapi.Pmem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.pmems[id]
	if !ok {
		return fcapi.Pmem{}, false
	}
	return slot.Value.(fcapi.Pmem), true
}

// Vsock returns the current vsock value, if configured.
func (s *Spec) Vsock() (fcapi.Vsock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot := s.singletons[string(fcapi.KindVsock)]
	if slot == nil {
		return fcapi.Vsock{}, false
	}
	return slot.Value.(fcapi.Vsock), true
}

// Logger returns the current logger value, if configured.
func (s *Spec) Logger() (fcapi.Logger, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot := s.singletons[string(fcapi.KindLogger)]
	if slot == nil {
		return fcapi.Logger{}, false
	}
	return slot.Value.(fcapi.Logger), true
}

// Metrics returns the current metrics value, if configured.
func (s *Spec) Metrics() (fcapi.Metrics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot := s.singletons[string(fcapi.KindMetrics)]
	if slot == nil {
		return fcapi.Metrics{}, false
	}
	return slot.Value.(fcapi.Metrics), true
}

// Serial returns the current serial value, if configured.
func (s *Spec) Serial() (fcapi.Serial, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot := s.singletons[string(fcapi.KindSerial)]
	if slot == nil {
		return fcapi.Serial{}, false
	}
	return slot.Value.(fcapi.Serial), true
}
