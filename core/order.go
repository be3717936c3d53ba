package core

import (
	"fmt"
	"strings"
	"time"
)

// OrderItem is a single line item in a procurement request.
type OrderItem struct {
	// Description is what is being bought (e.g., "cement bags").
	Description string `json:"description"`

	// Quantity is the number of units requested.
	Quantity int `json:"quantity"`

	// UnitPrice is the price per unit in the order's currency.
	UnitPrice float64 `json:"unit_price"`
}

// OrderRequest is a procurement request extracted from a user turn.
type OrderRequest struct {
	// Items are the requested line items, in the order stated.
	Items []OrderItem `json:"items"`

	// Currency is the stated currency/unit context (e.g., "INR").
	// No conversion is performed; comparisons happen in this unit.
	Currency string `json:"currency"`

	// Site scopes the request to a construction site (e.g., "Mumbai").
	// Empty means no site was stated.
	Site string `json:"site,omitempty"`

	// Vendor is the vendor the user asked to buy from, if any.
	Vendor string `json:"vendor,omitempty"`

	// RawText is the original user turn the request was extracted from.
	RawText string `json:"-"`
}

// TotalCost sums quantity * unit price across all items.
func (r *OrderRequest) TotalCost() float64 {
	var total float64
	for _, item := range r.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	return total
}

// Summary renders a short human-readable order description.
func (r *OrderRequest) Summary() string {
	parts := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		parts = append(parts, fmt.Sprintf("%dx %s @ %.2f", item.Quantity, item.Description, item.UnitPrice))
	}
	s := strings.Join(parts, ", ")
	if r.Vendor != "" {
		s += " from " + r.Vendor
	}
	return fmt.Sprintf("%s (total %.2f %s)", s, r.TotalCost(), r.Currency)
}

// PendingOrder is a procurement request parked for human approval.
// At most one exists per session; it is replace-only and is cleared
// when the approval state machine resolves or abandons it.
type PendingOrder struct {
	// ID uniquely identifies this parked order.
	ID string

	// SessionID is the owning session.
	SessionID string

	// Request is the order awaiting approval.
	Request OrderRequest

	// TotalCost is the computed total at park time.
	TotalCost float64

	// TriggeredBy holds the rule snippet(s) that forced the pause.
	TriggeredBy []string

	// CreatedAt is when the order was parked.
	CreatedAt time.Time
}
