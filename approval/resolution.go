package approval

import (
	"context"
	"log"
	"strings"
)

// Resolution is the interpretation of a user turn while awaiting
// approval.
type Resolution int

const (
	// ResolutionAmbiguous means neither clearly yes nor no; the
	// machine keeps its state and re-prompts. This is a normal
	// outcome, not an error.
	ResolutionAmbiguous Resolution = iota

	// ResolutionAffirmative approves the parked order.
	ResolutionAffirmative

	// ResolutionNegative cancels the parked order.
	ResolutionNegative
)

// String returns the resolution name for logging.
func (r Resolution) String() string {
	switch r {
	case ResolutionAffirmative:
		return "affirmative"
	case ResolutionNegative:
		return "negative"
	default:
		return "ambiguous"
	}
}

// Completer is the slice of the reasoning service the classifier needs.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Classifier interprets an approval-state turn as affirmative, negative
// or ambiguous. Unmistakable replies are matched locally; only the rest
// are delegated to the reasoning service, and its answer is validated
// against the closed set before being trusted. A reasoning failure
// classifies as ambiguous so an infrastructure error can only ever
// re-prompt, never drop a pending order.
type Classifier struct {
	svc Completer // optional; nil means keyword matching only
}

// NewClassifier creates a classifier. svc may be nil.
func NewClassifier(svc Completer) *Classifier {
	return &Classifier{svc: svc}
}

var (
	affirmatives = []string{"yes", "y", "yeah", "yep", "approve", "approved", "ok", "okay", "confirm", "go ahead", "proceed", "do it"}
	negatives    = []string{"no", "n", "nope", "cancel", "reject", "rejected", "deny", "denied", "stop", "abort", "don't"}
)

const classifySystem = `A procurement order is paused awaiting the manager's approval.
Classify the manager's reply as exactly one of:
AFFIRMATIVE - they approve the order
NEGATIVE - they cancel or reject the order
AMBIGUOUS - neither clearly yes nor no
Reply with ONLY the single category word.`

// Classify returns the resolution for turn.
func (c *Classifier) Classify(ctx context.Context, turn string) Resolution {
	normalized := strings.ToLower(strings.TrimSpace(turn))
	normalized = strings.Trim(normalized, ".!")

	for _, word := range affirmatives {
		if normalized == word {
			return ResolutionAffirmative
		}
	}
	for _, word := range negatives {
		if normalized == word {
			return ResolutionNegative
		}
	}

	if c.svc == nil {
		return ResolutionAmbiguous
	}

	out, err := c.svc.Complete(ctx, classifySystem, turn)
	if err != nil {
		log.Printf("[APPROVAL] Resolution classification failed, re-prompting: %v", err)
		return ResolutionAmbiguous
	}

	switch strings.ToUpper(strings.TrimSpace(out)) {
	case "AFFIRMATIVE":
		return ResolutionAffirmative
	case "NEGATIVE":
		return ResolutionNegative
	case "AMBIGUOUS":
		return ResolutionAmbiguous
	default:
		log.Printf("[APPROVAL] Unexpected classification %q, treating as ambiguous", strings.TrimSpace(out))
		return ResolutionAmbiguous
	}
}
