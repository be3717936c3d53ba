package agent

import (
	"context"
	"log"

	"github.com/gantrylabs/foreman/core"
)

// Executor places an approved order with the purchasing backend.
type Executor interface {
	Execute(ctx context.Context, order *core.PendingOrder) error
}

// LogExecutor records order placement in the log. It stands in for a
// real purchasing backend, which is outside this pipeline's scope.
type LogExecutor struct{}

// Execute logs the placed order.
func (LogExecutor) Execute(ctx context.Context, order *core.PendingOrder) error {
	log.Printf("[ORDER] session=%s placed order %s: %s", order.SessionID, order.ID, order.Request.Summary())
	return nil
}
