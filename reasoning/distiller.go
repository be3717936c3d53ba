package reasoning

import (
	"context"
	"strings"
)

const distillSystem = `You condense site rules for a procurement assistant.
Extract the key constraint, rule, or fact from the user's statement.
Focus on numeric limits, banned or preferred vendors, and site-specific
instructions. Reply with ONLY the extracted rule as one concise sentence.`

// FactDistiller condenses raw user turns into granular rule sentences
// before they are embedded and stored. Implements memory.Distiller.
type FactDistiller struct {
	svc Service
}

// NewFactDistiller creates a distiller over the given service.
func NewFactDistiller(svc Service) *FactDistiller {
	return &FactDistiller{svc: svc}
}

// Distill returns the condensed rule sentence for raw input.
func (d *FactDistiller) Distill(ctx context.Context, raw string) (string, error) {
	out, err := d.svc.Complete(ctx, distillSystem, raw)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
