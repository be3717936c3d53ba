package cached_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/gantrylabs/foreman/memory/embedder/cached"
	"github.com/gantrylabs/foreman/memory/embedder/mock"
)

// countingEmbedder tracks how many times the inner embedder is hit.
type countingEmbedder struct {
	inner *mock.Embedder
	calls atomic.Int64
	err   error
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) Dimensions() int { return c.inner.Dimensions() }

func TestCached_SecondLookupHitsCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{inner: mock.New()}
	e, err := cached.New(inner, 0)
	if err != nil {
		t.Fatalf("create cached embedder: %v", err)
	}
	defer e.Close()

	first, err := e.Embed(ctx, "cement budget limit")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	e.Wait()

	second, err := e.Embed(ctx, "cement budget limit")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if got := inner.calls.Load(); got != 1 {
		t.Errorf("inner embedder hit %d times, want 1", got)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("cached embedding differs from computed one")
		}
	}
}

func TestCached_DistinctTextsMiss(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{inner: mock.New()}
	e, err := cached.New(inner, 0)
	if err != nil {
		t.Fatalf("create cached embedder: %v", err)
	}
	defer e.Close()

	if _, err := e.Embed(ctx, "rule one"); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	e.Wait()
	if _, err := e.Embed(ctx, "rule two"); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if got := inner.calls.Load(); got != 2 {
		t.Errorf("inner embedder hit %d times, want 2", got)
	}
}

func TestCached_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{inner: mock.New(), err: errors.New("provider down")}
	e, err := cached.New(inner, 0)
	if err != nil {
		t.Fatalf("create cached embedder: %v", err)
	}
	defer e.Close()

	if _, err := e.Embed(ctx, "some rule"); err == nil {
		t.Fatal("expected inner error to propagate")
	}
	e.Wait()

	// Recover the provider: the failed text must be recomputed, not
	// served from a poisoned cache entry.
	inner.err = nil
	if _, err := e.Embed(ctx, "some rule"); err != nil {
		t.Fatalf("Embed after recovery failed: %v", err)
	}
	if got := inner.calls.Load(); got != 2 {
		t.Errorf("inner embedder hit %d times, want 2", got)
	}
}

func TestCached_DimensionsPassthrough(t *testing.T) {
	e, err := cached.New(mock.New(), 0)
	if err != nil {
		t.Fatalf("create cached embedder: %v", err)
	}
	defer e.Close()

	if e.Dimensions() != mock.New().Dimensions() {
		t.Errorf("Dimensions = %d, want inner's %d", e.Dimensions(), mock.New().Dimensions())
	}
}
