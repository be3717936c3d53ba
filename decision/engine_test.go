package decision_test

import (
	"strings"
	"testing"

	"github.com/gantrylabs/foreman/core"
	"github.com/gantrylabs/foreman/decision"
)

func orderFor(total float64, vendor string) *core.OrderRequest {
	return &core.OrderRequest{
		Items:    []core.OrderItem{{Description: "cement bags", Quantity: 1, UnitPrice: total}},
		Currency: "INR",
		Site:     "Mumbai",
		Vendor:   vendor,
	}
}

func TestEngine_OverCeilingNeedsApproval(t *testing.T) {
	e := decision.NewEngine()
	rules := []string{"Mumbai site budget limit is 10000 INR"}

	d := e.Evaluate("s1", orderFor(15000, ""), rules, false)

	if d.Kind != core.DecisionNeedsApproval {
		t.Fatalf("decision = %v, want needs_approval", d.Kind)
	}
	if d.Pending == nil {
		t.Fatal("NeedsApproval decision carries no pending order")
	}
	if d.Pending.SessionID != "s1" {
		t.Errorf("pending session = %q, want s1", d.Pending.SessionID)
	}
	if d.Pending.TotalCost != 15000 {
		t.Errorf("pending total = %v, want 15000", d.Pending.TotalCost)
	}
	if len(d.Pending.TriggeredBy) != 1 || d.Pending.TriggeredBy[0] != rules[0] {
		t.Errorf("pending TriggeredBy = %v, want the ceiling rule", d.Pending.TriggeredBy)
	}
	if !strings.Contains(d.Reason, "10000") {
		t.Errorf("reason %q does not name the ceiling", d.Reason)
	}
}

func TestEngine_UnderCeilingApproved(t *testing.T) {
	e := decision.NewEngine()
	rules := []string{"Mumbai site budget limit is 10000 INR"}

	d := e.Evaluate("s1", orderFor(5000, ""), rules, false)

	if d.Kind != core.DecisionApproved {
		t.Fatalf("decision = %v, want approved", d.Kind)
	}
	if d.Pending != nil {
		t.Error("approved decision must not carry a pending order")
	}
	if d.Summary == "" {
		t.Error("approved decision has no summary")
	}
}

func TestEngine_VendorExclusionRejects(t *testing.T) {
	e := decision.NewEngine()
	rules := []string{"Do not use Vendor X"}

	d := e.Evaluate("s1", orderFor(500, "Vendor X"), rules, false)

	if d.Kind != core.DecisionRejected {
		t.Fatalf("decision = %v, want rejected", d.Kind)
	}
	if d.Pending != nil {
		t.Error("rejected decision must not carry a pending order")
	}
	if !strings.Contains(d.Reason, "Vendor X") {
		t.Errorf("reason %q does not name the vendor", d.Reason)
	}
}

func TestEngine_ExclusionBeatsCeiling(t *testing.T) {
	e := decision.NewEngine()
	rules := []string{
		"Mumbai site budget limit is 10000 INR",
		"Do not use Vendor X",
	}

	// Over the ceiling AND from an excluded vendor: rejection wins so
	// no pending order is ever created for a banned vendor.
	d := e.Evaluate("s1", orderFor(15000, "Vendor X"), rules, false)
	if d.Kind != core.DecisionRejected {
		t.Fatalf("decision = %v, want rejected", d.Kind)
	}
}

func TestEngine_NoMatchingRuleApproves(t *testing.T) {
	e := decision.NewEngine()

	d := e.Evaluate("s1", orderFor(999999, ""), nil, false)
	if d.Kind != core.DecisionApproved {
		t.Fatalf("decision with no rules = %v, want approved", d.Kind)
	}
}

func TestEngine_DegradedRetrievalStillDecides(t *testing.T) {
	e := decision.NewEngine()

	d := e.Evaluate("s1", orderFor(15000, ""), nil, true)
	if d.Kind != core.DecisionApproved {
		t.Fatalf("degraded decision = %v, want approved (fail-open)", d.Kind)
	}
	if !d.Degraded {
		t.Error("degraded flag not carried on the decision")
	}
}

// pinMatcher forces a fixed ceiling, exercising matcher pluggability.
type pinMatcher struct{ limit float64 }

func (p pinMatcher) Ceiling(rules []string, currency string) (float64, string, bool) {
	return p.limit, "pinned ceiling", true
}

func (p pinMatcher) Exclusion(rules []string, vendor string) (string, bool) {
	return "", false
}

func TestEngine_CustomMatcher(t *testing.T) {
	e := decision.NewEngine(decision.WithMatcher(pinMatcher{limit: 100}))

	d := e.Evaluate("s1", orderFor(150, ""), nil, false)
	if d.Kind != core.DecisionNeedsApproval {
		t.Fatalf("decision = %v, want needs_approval from pinned matcher", d.Kind)
	}
}
