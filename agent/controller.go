// Package agent is the orchestrating controller: it receives each
// inbound user turn, decides whether the turn is a fresh request or a
// resolution of a pending order, and drives memory ingestion, rule
// retrieval, decision making, and approval transitions.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gantrylabs/foreman/approval"
	"github.com/gantrylabs/foreman/catalog"
	"github.com/gantrylabs/foreman/core"
	"github.com/gantrylabs/foreman/decision"
	"github.com/gantrylabs/foreman/memory"
)

// Completer is the slice of the reasoning service the controller needs.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Controller routes user turns through the decision-and-approval
// pipeline. Turns within a session are processed strictly one at a
// time; distinct sessions proceed independently.
type Controller struct {
	rules      *memory.RuleStore
	retriever  *memory.Retriever
	engine     *decision.Engine
	approvals  *approval.Registry
	classifier *approval.Classifier
	reasoner   Completer
	catalog    *catalog.Catalog // optional
	executor   Executor

	turnTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// Option configures the controller.
type Option func(*Controller)

// WithCatalog supplies the static vendor catalog used to cost items
// the user did not price.
func WithCatalog(c *catalog.Catalog) Option {
	return func(ctl *Controller) {
		ctl.catalog = c
	}
}

// WithExecutor sets the purchasing backend for approved orders.
func WithExecutor(e Executor) Option {
	return func(ctl *Controller) {
		ctl.executor = e
	}
}

// WithTurnTimeout bounds the blocking external calls of one turn.
func WithTurnTimeout(d time.Duration) Option {
	return func(ctl *Controller) {
		ctl.turnTimeout = d
	}
}

// New creates a Controller.
func New(rules *memory.RuleStore, retriever *memory.Retriever, engine *decision.Engine,
	approvals *approval.Registry, classifier *approval.Classifier, reasoner Completer, opts ...Option) *Controller {
	c := &Controller{
		rules:       rules,
		retriever:   retriever,
		engine:      engine,
		approvals:   approvals,
		classifier:  classifier,
		reasoner:    reasoner,
		executor:    LogExecutor{},
		turnTimeout: 60 * time.Second,
		sessions:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProcessTurn handles one inbound user turn for a session and returns
// the response plus the reasoning trace. A returned error means the
// turn was aborted by an infrastructure failure with no state change;
// the session remains usable.
func (c *Controller) ProcessTurn(ctx context.Context, sessionID, text string) (*core.TurnOutput, error) {
	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if c.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.turnTimeout)
		defer cancel()
	}

	trace := &core.Trace{}
	machine := c.approvals.Get(sessionID)

	// A parked order claims the turn outright; the decision engine is
	// never consulted while one is held.
	if machine.State() == approval.StateAwaitingApproval {
		return c.resolvePending(ctx, machine, text, trace)
	}

	turnIntent, site, err := c.classifyIntent(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify intent: %w", err)
	}
	trace.Add("intent", "classified as %s", turnIntent)

	switch turnIntent {
	case intentStoreFact:
		return c.ingestRule(ctx, text, site, trace)
	case intentProcurement:
		return c.handleOrder(ctx, sessionID, machine, text, trace)
	default:
		return c.chat(ctx, text, trace)
	}
}

// resolvePending interprets the turn strictly as a verdict on the held
// order. An infrastructure failure can only re-prompt; the pending
// order is dropped solely by explicit rejection or successful
// execution.
func (c *Controller) resolvePending(ctx context.Context, machine *approval.Machine, text string, trace *core.Trace) (*core.TurnOutput, error) {
	res := c.classifier.Classify(ctx, text)
	trace.Add("approval", "turn interpreted as %s", res)

	switch res {
	case approval.ResolutionAffirmative:
		order := machine.Pending()
		if err := c.executor.Execute(ctx, order); err != nil {
			log.Printf("[AGENT] session=%s execution failed, order stays pending: %v", machine.SessionID(), err)
			trace.Add("approval", "execution failed, order retained")
			return &core.TurnOutput{
				Text:             fmt.Sprintf("I couldn't place the order just now (%v). It is still awaiting your approval; reply yes to retry or no to cancel.", err),
				Trace:            trace.Steps(),
				AwaitingApproval: true,
			}, nil
		}
		if _, err := machine.Approve(); err != nil {
			return nil, fmt.Errorf("approve pending order: %w", err)
		}
		trace.Add("approval", "order executed and cleared")
		return &core.TurnOutput{
			Text:  fmt.Sprintf("Order confirmed and placed: %s", order.Request.Summary()),
			Trace: trace.Steps(),
		}, nil

	case approval.ResolutionNegative:
		order, err := machine.Reject()
		if err != nil {
			return nil, fmt.Errorf("reject pending order: %w", err)
		}
		trace.Add("approval", "order discarded, nothing purchased")
		return &core.TurnOutput{
			Text:  fmt.Sprintf("Order cancelled: %s. Nothing was purchased.", order.Request.Summary()),
			Trace: trace.Steps(),
		}, nil

	default:
		order := machine.Pending()
		trace.Add("approval", "ambiguous reply, re-prompting")
		return &core.TurnOutput{
			Text:             fmt.Sprintf("I still need an explicit decision on the pending order: %s. Please reply yes or no.", order.Request.Summary()),
			Trace:            trace.Steps(),
			AwaitingApproval: true,
		}, nil
	}
}

// ingestRule stores the stated rule. Storage failures are reported to
// the user and do not crash the session.
func (c *Controller) ingestRule(ctx context.Context, text, site string, trace *core.Trace) (*core.TurnOutput, error) {
	factID, err := c.rules.Ingest(ctx, text, site)
	if err != nil {
		log.Printf("[AGENT] Ingest failed: %v", err)
		trace.Add("memory", "ingestion failed: %v", err)
		return &core.TurnOutput{
			Text:  "I couldn't save that rule right now. Please try again.",
			Trace: trace.Steps(),
		}, nil
	}

	trace.Add("memory", "stored fact %s (scope %q)", factID, site)
	return &core.TurnOutput{
		Text:  fmt.Sprintf("Noted. I'll apply that to future orders: %s", text),
		Trace: trace.Steps(),
	}, nil
}

// handleOrder runs the full decision path for a fresh procurement
// request and applies the resulting approval transition.
func (c *Controller) handleOrder(ctx context.Context, sessionID string, machine *approval.Machine, text string, trace *core.Trace) (*core.TurnOutput, error) {
	req, err := c.extractOrder(ctx, text)
	if errors.Is(err, core.ErrMalformedOrder) {
		log.Printf("[AGENT] session=%s malformed order: %v", sessionID, err)
		trace.Add("extract", "could not extract items/cost")
		return &core.TurnOutput{
			Text:  "I couldn't work out the items and costs from that. Could you restate the order with quantities and prices (e.g., \"order 100 cement bags at 350 INR each for the Mumbai site\")?",
			Trace: trace.Steps(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extract order: %w", err)
	}
	trace.Add("extract", "%d item(s), total %.2f %s", len(req.Items), req.TotalCost(), req.Currency)

	snippets, degraded := c.retriever.Retrieve(ctx, ruleQuery(req), req.Site)
	if degraded {
		trace.Add("retrieval", "rule retrieval unavailable, proceeding without rules")
	} else {
		trace.Add("retrieval", "%d rule(s) retrieved", len(snippets))
	}

	d := c.engine.Evaluate(sessionID, req, snippets, degraded)
	trace.Add("decision", "%s", d.Kind)

	switch d.Kind {
	case core.DecisionNeedsApproval:
		if err := machine.Park(d.Pending); err != nil {
			// Cannot happen on this path (pending turns short-circuit
			// above), but the invariant is enforced regardless.
			return nil, fmt.Errorf("park order: %w", err)
		}
		return &core.TurnOutput{
			Text:             fmt.Sprintf("Approval required: %s\nOrder: %s\nProceed? (yes/no)", d.Reason, req.Summary()),
			Trace:            trace.Steps(),
			AwaitingApproval: true,
		}, nil

	case core.DecisionRejected:
		return &core.TurnOutput{
			Text:  fmt.Sprintf("Order rejected: %s", d.Reason),
			Trace: trace.Steps(),
		}, nil

	default:
		order := decisionOrder(sessionID, req)
		if err := c.executor.Execute(ctx, order); err != nil {
			return nil, fmt.Errorf("execute order: %w", err)
		}
		reply := fmt.Sprintf("Order placed: %s", d.Summary)
		if d.Degraded {
			reply += "\n(Note: site rules were unavailable for this decision.)"
		}
		return &core.TurnOutput{Text: reply, Trace: trace.Steps()}, nil
	}
}

// chat passes the turn through to the reasoning service for a
// conversational reply; no state changes.
func (c *Controller) chat(ctx context.Context, text string, trace *core.Trace) (*core.TurnOutput, error) {
	reply, err := c.reasoner.Complete(ctx, chatSystem, text)
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	trace.Add("chat", "conversational reply")
	return &core.TurnOutput{Text: reply, Trace: trace.Steps()}, nil
}

// sessionLock returns the per-session turn mutex, creating it on first
// use. Holding it for the whole turn gives single-threaded cooperative
// processing per session without stalling other sessions.
func (c *Controller) sessionLock(sessionID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.sessions[sessionID]; ok {
		return l
	}
	l := &sync.Mutex{}
	c.sessions[sessionID] = l
	return l
}

// decisionOrder builds the order record handed to the executor for a
// directly approved request.
func decisionOrder(sessionID string, req *core.OrderRequest) *core.PendingOrder {
	return &core.PendingOrder{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Request:   *req,
		TotalCost: req.TotalCost(),
		CreatedAt: time.Now(),
	}
}

// ruleQuery builds the retrieval query for an order request.
func ruleQuery(req *core.OrderRequest) string {
	parts := []string{"procurement budget limit vendor rules"}
	if req.Site != "" {
		parts = append(parts, "for site", req.Site)
	}
	for _, item := range req.Items {
		parts = append(parts, item.Description)
	}
	if req.Vendor != "" {
		parts = append(parts, "vendor", req.Vendor)
	}
	return strings.Join(parts, " ")
}
