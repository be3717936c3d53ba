package reasoning_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gantrylabs/foreman/reasoning"
)

type scriptedService struct {
	out string
	err error
}

func (s scriptedService) Complete(ctx context.Context, system, prompt string) (string, error) {
	return s.out, s.err
}

func TestFactDistiller_TrimsOutput(t *testing.T) {
	d := reasoning.NewFactDistiller(scriptedService{out: "  Mumbai budget ceiling is 10000 INR.\n"})

	got, err := d.Distill(context.Background(), "by the way the mumbai site shouldn't go over 10k per order")
	if err != nil {
		t.Fatalf("Distill failed: %v", err)
	}
	if got != "Mumbai budget ceiling is 10000 INR." {
		t.Errorf("distilled = %q", got)
	}
}

func TestFactDistiller_PropagatesError(t *testing.T) {
	d := reasoning.NewFactDistiller(scriptedService{err: errors.New("model down")})

	if _, err := d.Distill(context.Background(), "some rule"); err == nil {
		t.Fatal("service failure not propagated")
	}
}
