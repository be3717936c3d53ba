package core

// DecisionKind indicates the outcome of evaluating a procurement request.
type DecisionKind int

const (
	// DecisionApproved means the order may execute immediately.
	DecisionApproved DecisionKind = iota

	// DecisionNeedsApproval means the order is parked for human approval.
	DecisionNeedsApproval

	// DecisionRejected means the order violates a site rule.
	DecisionRejected
)

// String returns the decision kind name for logging.
func (k DecisionKind) String() string {
	switch k {
	case DecisionApproved:
		return "approved"
	case DecisionNeedsApproval:
		return "needs_approval"
	case DecisionRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Decision is the outcome of evaluating an order request against
// retrieved site rules. Produced fresh per request, never persisted.
type Decision struct {
	// Kind is the tagged outcome.
	Kind DecisionKind

	// Summary describes the order (set for Approved).
	Summary string

	// Reason explains a rejection or why approval is needed.
	Reason string

	// Pending is the parked order (set only for NeedsApproval).
	Pending *PendingOrder

	// Rules holds the rule snippets that grounded this decision.
	Rules []string

	// Degraded is true when rule retrieval was unavailable and the
	// order was evaluated against an empty rule set (fail-open).
	Degraded bool
}
