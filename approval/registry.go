package approval

import "sync"

// Registry hands out one Machine per session. Sessions are independent;
// a blocked turn in one session never stalls another's machine.
type Registry struct {
	mu       sync.RWMutex
	machines map[string]*Machine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{machines: make(map[string]*Machine)}
}

// Get returns the machine for sessionID, creating it on first use.
func (r *Registry) Get(sessionID string) *Machine {
	r.mu.RLock()
	m, ok := r.machines[sessionID]
	r.mu.RUnlock()
	if ok {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if m, ok := r.machines[sessionID]; ok {
		return m
	}
	m = NewMachine(sessionID)
	r.machines[sessionID] = m
	return m
}
