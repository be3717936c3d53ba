// Package approval holds the per-session pause/resume state machine
// that intercepts procurement orders needing human sign-off.
//
// While a session is awaiting approval, the next user turn is never
// routed through the decision engine; it is interpreted strictly as a
// resolution of the held order. That guarantees a session can neither
// accumulate a second pending order nor lose track of the first.
package approval

import (
	"errors"
	"log"
	"sync"

	"github.com/gantrylabs/foreman/core"
)

// State is the approval state of a session.
type State int

const (
	// StateIdle means no order is pending.
	StateIdle State = iota

	// StateAwaitingApproval means exactly one order is parked.
	StateAwaitingApproval
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingApproval:
		return "awaiting_approval"
	default:
		return "unknown"
	}
}

var (
	// ErrOrderPending is returned by Park when the session already
	// holds a pending order. The caller must resolve or abandon the
	// existing order first; it is never silently overwritten.
	ErrOrderPending = errors.New("a pending order already exists for this session")

	// ErrNoPendingOrder is returned when resolving without a parked order.
	ErrNoPendingOrder = errors.New("no pending order for this session")
)

// Machine is the approval state machine for one session. Turns for a
// session are processed sequentially, but the machine still guards its
// state so inspection surfaces can read it concurrently.
type Machine struct {
	sessionID string

	mu      sync.Mutex
	state   State
	pending *core.PendingOrder
}

// NewMachine creates an idle machine for the session.
func NewMachine(sessionID string) *Machine {
	return &Machine{sessionID: sessionID, state: StateIdle}
}

// SessionID returns the owning session.
func (m *Machine) SessionID() string { return m.sessionID }

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Pending returns the parked order, or nil when idle.
func (m *Machine) Pending() *core.PendingOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Park holds order for approval and moves to StateAwaitingApproval.
// Fails with ErrOrderPending if an order is already held.
func (m *Machine) Park(order *core.PendingOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending != nil {
		return ErrOrderPending
	}
	m.pending = order
	m.state = StateAwaitingApproval
	log.Printf("[APPROVAL] session=%s parked order %s (total %.2f %s)",
		m.sessionID, order.ID, order.TotalCost, order.Request.Currency)
	return nil
}

// Approve clears the parked order for execution and returns it.
func (m *Machine) Approve() (*core.PendingOrder, error) {
	return m.clear("approved")
}

// Reject discards the parked order and returns what was discarded.
func (m *Machine) Reject() (*core.PendingOrder, error) {
	return m.clear("rejected")
}

// Abandon explicitly discards the parked order without a user verdict
// (e.g., the session is being torn down).
func (m *Machine) Abandon() (*core.PendingOrder, error) {
	return m.clear("abandoned")
}

func (m *Machine) clear(verdict string) (*core.PendingOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return nil, ErrNoPendingOrder
	}
	order := m.pending
	m.pending = nil
	m.state = StateIdle
	log.Printf("[APPROVAL] session=%s order %s %s", m.sessionID, order.ID, verdict)
	return order, nil
}
