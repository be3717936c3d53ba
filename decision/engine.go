// Package decision evaluates procurement requests against retrieved
// site rules and produces a structured Decision. The outcome is
// computed locally so a malformed or adversarial model response can
// never drive a state transition.
package decision

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gantrylabs/foreman/core"
)

// Engine is the procurement decision engine.
type Engine struct {
	matcher RuleMatcher
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMatcher swaps the rule matching implementation.
func WithMatcher(m RuleMatcher) EngineOption {
	return func(e *Engine) {
		e.matcher = m
	}
}

// NewEngine creates an Engine with the default TextMatcher.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{matcher: TextMatcher{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate computes the decision for a request given the retrieved
// rule snippets. degraded marks that retrieval was unavailable and the
// rule set is empty by failure rather than by absence; the decision
// still proceeds (fail-open) but carries the flag for logging.
//
// Precedence: vendor exclusion rejects outright; a budget ceiling
// below the order total parks the order for approval; otherwise, and
// when no rule matches at all, the order is approved.
func (e *Engine) Evaluate(sessionID string, req *core.OrderRequest, rules []string, degraded bool) core.Decision {
	total := req.TotalCost()

	if degraded {
		log.Printf("[DECISION] session=%s evaluating with degraded retrieval (no rules available)", sessionID)
	}

	if snippet, ok := e.matcher.Exclusion(rules, req.Vendor); ok {
		log.Printf("[DECISION] session=%s rejected: vendor %q excluded", sessionID, req.Vendor)
		return core.Decision{
			Kind:     core.DecisionRejected,
			Reason:   fmt.Sprintf("vendor %s is excluded by site rule: %s", req.Vendor, snippet),
			Rules:    rules,
			Degraded: degraded,
		}
	}

	if limit, snippet, ok := e.matcher.Ceiling(rules, req.Currency); ok && total > limit {
		pending := &core.PendingOrder{
			ID:          uuid.New().String(),
			SessionID:   sessionID,
			Request:     *req,
			TotalCost:   total,
			TriggeredBy: []string{snippet},
			CreatedAt:   time.Now(),
		}
		log.Printf("[DECISION] session=%s needs approval: total %.2f %s exceeds ceiling %.2f",
			sessionID, total, req.Currency, limit)
		return core.Decision{
			Kind:     core.DecisionNeedsApproval,
			Reason:   fmt.Sprintf("total %.2f %s exceeds the budget ceiling of %.2f (%s)", total, req.Currency, limit, snippet),
			Pending:  pending,
			Rules:    rules,
			Degraded: degraded,
		}
	}

	log.Printf("[DECISION] session=%s approved: total %.2f %s", sessionID, total, req.Currency)
	return core.Decision{
		Kind:     core.DecisionApproved,
		Summary:  req.Summary(),
		Rules:    rules,
		Degraded: degraded,
	}
}
