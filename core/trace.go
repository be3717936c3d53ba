package core

import (
	"fmt"
	"strings"
	"time"
)

// TraceStep is one intermediate step of a turn's processing, surfaced
// to the presentation layer as the agent's visible reasoning.
type TraceStep struct {
	// Stage names the pipeline stage (e.g., "intent", "retrieval", "decision").
	Stage string

	// Detail is a short human-readable description of what happened.
	Detail string

	// Timestamp is when the step occurred.
	Timestamp time.Time
}

// String formats the step for logs and the reasoning panel.
func (s TraceStep) String() string {
	return fmt.Sprintf("[%s] %s", s.Stage, s.Detail)
}

// Trace accumulates the ordered steps taken while processing one turn.
type Trace struct {
	steps []TraceStep
}

// Add appends a step with the current time.
func (t *Trace) Add(stage, format string, args ...interface{}) {
	t.steps = append(t.steps, TraceStep{
		Stage:     stage,
		Detail:    fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	})
}

// Steps returns the recorded steps in order.
func (t *Trace) Steps() []TraceStep {
	return t.steps
}

// String renders the whole trace, one step per line.
func (t *Trace) String() string {
	lines := make([]string, 0, len(t.steps))
	for _, s := range t.steps {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, "\n")
}
