package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gantrylabs/foreman/core"
	"github.com/gantrylabs/foreman/memory"
	"github.com/gantrylabs/foreman/memory/embedder/mock"
	"github.com/gantrylabs/foreman/memory/store/chromem"
)

// failingEmbedder simulates an unavailable embedding provider.
type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("connection refused")
}

func (failingEmbedder) Dimensions() int { return 384 }

// failingStore simulates a broken storage backend.
type failingStore struct{}

func (failingStore) Store(ctx context.Context, fact *memory.Fact) error {
	return errors.New("disk full")
}

func (failingStore) Query(ctx context.Context, embedding []float32, limit int, scope string) ([]memory.Match, error) {
	return nil, errors.New("disk full")
}

func (failingStore) All(ctx context.Context) ([]*memory.Fact, error) {
	return nil, errors.New("disk full")
}

func (failingStore) Close() error { return nil }

// rewriteDistiller is a scripted fact distiller.
type rewriteDistiller struct {
	out string
	err error
}

func (d rewriteDistiller) Distill(ctx context.Context, raw string) (string, error) {
	return d.out, d.err
}

func newTestRuleStore(t *testing.T, opts ...memory.RuleStoreOption) *memory.RuleStore {
	t.Helper()
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return memory.NewRuleStore(store, mock.New(), opts...)
}

func TestRuleStore_IngestThenQuery(t *testing.T) {
	ctx := context.Background()
	rules := newTestRuleStore(t)

	text := "Mumbai site budget limit is 10000 INR"
	id, err := rules.Ingest(ctx, text, "Mumbai")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if id == "" {
		t.Fatal("Ingest returned empty fact ID")
	}

	matches, err := rules.Query(ctx, text, 3, "Mumbai")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("Query returned no matches for the ingested text")
	}
	if matches[0].Fact.ID() != id {
		t.Errorf("top match = %s, want the ingested fact %s", matches[0].Fact.ID(), id)
	}
	if matches[0].Similarity < 0.99 {
		t.Errorf("identical-text similarity = %v, want ~1.0", matches[0].Similarity)
	}
}

func TestRuleStore_ReingestCreatesDistinctFacts(t *testing.T) {
	ctx := context.Background()
	rules := newTestRuleStore(t)

	text := "Do not use Vendor X"
	id1, err := rules.Ingest(ctx, text, "")
	if err != nil {
		t.Fatalf("first Ingest failed: %v", err)
	}
	id2, err := rules.Ingest(ctx, text, "")
	if err != nil {
		t.Fatalf("second Ingest failed: %v", err)
	}
	if id1 == id2 {
		t.Fatal("re-ingesting identical text must create a new fact")
	}

	matches, err := rules.Query(ctx, text, 2, "")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want both copies retrievable", len(matches))
	}

	// Equal similarity breaks ties toward the newer fact.
	if matches[0].Fact.CreatedAt().Before(matches[1].Fact.CreatedAt()) {
		t.Error("tie not broken toward the more recent fact")
	}
}

func TestRuleStore_TiebreakAtKBoundary(t *testing.T) {
	ctx := context.Background()
	rules := newTestRuleStore(t)

	text := "Do not use Vendor X"
	if _, err := rules.Ingest(ctx, text, ""); err != nil {
		t.Fatalf("first Ingest failed: %v", err)
	}
	newest, err := rules.Ingest(ctx, text, "")
	if err != nil {
		t.Fatalf("second Ingest failed: %v", err)
	}

	// k=1 over two equal-similarity copies: the newer must survive the cut.
	matches, err := rules.Query(ctx, text, 1, "")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Fact.ID() != newest {
		t.Errorf("k=1 returned fact %s, want the newer %s", matches[0].Fact.ID(), newest)
	}
}

func TestRuleStore_ScopeFiltering(t *testing.T) {
	ctx := context.Background()
	rules := newTestRuleStore(t)

	if _, err := rules.Ingest(ctx, "Mumbai site budget limit is 10000 INR", "Mumbai"); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := rules.Ingest(ctx, "Pune site budget limit is 99999 INR", "Pune"); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := rules.Ingest(ctx, "Do not use Vendor X", ""); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	matches, err := rules.Query(ctx, "site budget limit rules", 10, "Mumbai")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	for _, m := range matches {
		if m.Fact.Scope() == "Pune" {
			t.Errorf("Mumbai-scoped query returned Pune fact: %s", m.Fact.Text())
		}
	}
}

func TestRuleStore_EmptyStoreQueryIsNotAnError(t *testing.T) {
	ctx := context.Background()
	rules := newTestRuleStore(t)

	matches, err := rules.Query(ctx, "anything", 5, "")
	if err != nil {
		t.Fatalf("Query on empty store failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("empty store returned %d matches", len(matches))
	}
}

func TestRuleStore_EmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	rules := memory.NewRuleStore(store, failingEmbedder{})

	if _, err := rules.Ingest(ctx, "some rule", ""); !errors.Is(err, core.ErrEmbeddingUnavailable) {
		t.Errorf("Ingest error = %v, want ErrEmbeddingUnavailable", err)
	}
	if _, err := rules.Query(ctx, "some rule", 3, ""); !errors.Is(err, core.ErrEmbeddingUnavailable) {
		t.Errorf("Query error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestRuleStore_StoreFailure(t *testing.T) {
	ctx := context.Background()
	rules := memory.NewRuleStore(failingStore{}, mock.New())

	if _, err := rules.Ingest(ctx, "some rule", ""); !errors.Is(err, core.ErrStoreWrite) {
		t.Errorf("Ingest error = %v, want ErrStoreWrite", err)
	}
	if _, err := rules.Query(ctx, "some rule", 3, ""); !errors.Is(err, core.ErrStoreQuery) {
		t.Errorf("Query error = %v, want ErrStoreQuery", err)
	}
	if _, err := rules.All(ctx); !errors.Is(err, core.ErrStoreQuery) {
		t.Errorf("All error = %v, want ErrStoreQuery", err)
	}
}

func TestRuleStore_Distillation(t *testing.T) {
	ctx := context.Background()
	distilled := "Mumbai budget ceiling is 10000 INR"
	rules := newTestRuleStore(t, memory.WithDistiller(rewriteDistiller{out: distilled}))

	raw := "oh by the way, for the Mumbai site we should really not spend more than 10000 rupees per order"
	if _, err := rules.Ingest(ctx, raw, "Mumbai"); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	facts, err := rules.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
	if facts[0].Text() != distilled {
		t.Errorf("stored text = %q, want distilled sentence", facts[0].Text())
	}
	if facts[0].Metadata()["raw_input"] != raw {
		t.Error("raw input not preserved in fact metadata")
	}
}

func TestRuleStore_DistillationFailureStoresRaw(t *testing.T) {
	ctx := context.Background()
	rules := newTestRuleStore(t, memory.WithDistiller(rewriteDistiller{err: errors.New("model down")}))

	raw := "budget limit 5000 INR"
	if _, err := rules.Ingest(ctx, raw, ""); err != nil {
		t.Fatalf("Ingest must not fail when distillation is down: %v", err)
	}

	facts, err := rules.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(facts) != 1 || facts[0].Text() != raw {
		t.Error("raw text not stored after distillation failure")
	}
}
