package core

// TurnOutput is what the controller hands back to the presentation
// layer after processing one user turn.
type TurnOutput struct {
	// Text is the response shown to the user.
	Text string

	// Trace holds the intermediate steps for the reasoning panel.
	Trace []TraceStep

	// AwaitingApproval is true when the session now holds a parked
	// order and the next turn will be interpreted as its resolution.
	AwaitingApproval bool
}
