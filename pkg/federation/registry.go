package federation

import (
	"sort"
	"sync"

	"github.com/smolitux/fedlink/pkg/transport"
)

// Registry holds per-protocol connection state.
// It is safe for concurrent use; the Manager is its only writer.
type Registry struct {
	entries map[ProtocolName]*ConnectionState
	mu      sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[ProtocolName]*ConnectionState),
	}
}

// Upsert applies update to the entry for name, creating it if absent, and
// returns the resulting state.
func (r *Registry) Upsert(name ProtocolName, update func(*ConnectionState)) ConnectionState {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.entries[name]
	if !ok {
		s = &ConnectionState{Status: StatusDisconnected, Phase: PhaseIdle}
		r.entries[name] = s
	}
	if update != nil {
		update(s)
	}
	return *s
}

// Get returns the state for name.
func (r *Registry) Get(name ProtocolName) (ConnectionState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.entries[name]
	if !ok {
		return ConnectionState{}, false
	}
	return *s, true
}

// Status returns the status for name. Absent entries are disconnected.
func (r *Registry) Status(name ProtocolName) Status {
	s, ok := r.Get(name)
	if !ok {
		return StatusDisconnected
	}
	return s.Status
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Names returns the registered protocol names in sorted order.
func (r *Registry) Names() []ProtocolName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]ProtocolName, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Snapshot returns a copy of every entry.
func (r *Registry) Snapshot() map[ProtocolName]ConnectionState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[ProtocolName]ConnectionState, len(r.entries))
	for name, s := range r.entries {
		out[name] = *s
	}
	return out
}

// handle returns the live connection for name, if any.
func (r *Registry) handle(name ProtocolName) transport.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.entries[name]; ok {
		return s.handle
	}
	return nil
}

// detach clears and returns the live connection for name.
func (r *Registry) detach(name ProtocolName) transport.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.entries[name]
	if !ok {
		return nil
	}
	h := s.handle
	s.handle = nil
	return h
}

// Reset removes every entry and returns the live connections that were
// attached so the caller can close them.
func (r *Registry) Reset() []transport.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	var handles []transport.Conn
	for _, s := range r.entries {
		if s.handle != nil {
			handles = append(handles, s.handle)
		}
	}
	r.entries = make(map[ProtocolName]*ConnectionState)
	return handles
}
