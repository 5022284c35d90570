package microvm

import (
	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

// MmdsReplace overwrites the entire mmds document. Legal in any state
// except exited; the new document is pushed on the next Apply.
func (s *Spec) MmdsReplace(doc map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateExited {
		return &InvalidStateError{State: s.state, Operation: "mmds_replace"}
	}

	s.singletons[string(fcapi.KindMmds)] = &ResourceSlot{Value: cloneDoc(doc), Applied: false}
	return nil
}

// MmdsSetKey overwrites a single top-level key of the mmds document,
// leaving the rest untouched.
func (s *Spec) MmdsSetKey(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateExited {
		return &InvalidStateError{State: s.state, Operation: "mmds_set_key"}
	}

	doc := s.mmdsDocLocked()
	doc[key] = value
	s.singletons[string(fcapi.KindMmds)] = &ResourceSlot{Value: doc, Applied: false}
	return nil
}

// MmdsUpdateKey reads the current value at key (defaulting to def if
// absent) and replaces it with update(current).
func (s *Spec) MmdsUpdateKey(key string, def interface{}, update func(current interface{}) interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateExited {
		return &InvalidStateError{State: s.state, Operation: "mmds_update_key"}
	}

	doc := s.mmdsDocLocked()
	current, ok := doc[key]
	if !ok {
		current = def
	}
	doc[key] = update(current)
	s.singletons[string(fcapi.KindMmds)] = &ResourceSlot{Value: doc, Applied: false}
	return nil
}

// Mmds returns the current mmds document, if any.
func (s *Spec) Mmds() (map[string]interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot := s.singletons[string(fcapi.KindMmds)]
	if slot == nil {
		return nil, false
	}
	return cloneDoc(slot.Value.(map[string]interface{})), true
}

// mmdsDocLocked returns the live mmds document map, creating an empty
// one if none is set yet. Caller must hold s.mu.
func (s *Spec) mmdsDocLocked() map[string]interface{} {
	slot := s.singletons[string(fcapi.KindMmds)]
	if slot == nil {
		return make(map[string]interface{})
	}
	return cloneDoc(slot.Value.(map[string]interface{}))
}

func cloneDoc(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
