package memory

import (
	"context"
	"log"
)

// Retriever turns a natural-language query into the most relevant
// stored rule snippets. It is a thin composition over RuleStore.Query
// with a fixed k and a minimum-similarity noise floor.
//
// Retrieval is advisory: failures and empty stores yield an empty
// snippet list with degraded=true, never an error.
type Retriever struct {
	rules         *RuleStore
	k             int
	minSimilarity float32
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithK sets how many candidates are requested from the store.
func WithK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.k = k
		}
	}
}

// WithMinSimilarity sets the noise floor below which matches are
// discarded. Local embedders score lower than hosted ones; the default
// suits all-MiniLM-class models.
func WithMinSimilarity(min float32) RetrieverOption {
	return func(r *Retriever) {
		r.minSimilarity = min
	}
}

// NewRetriever creates a Retriever with k=4 and a 0.25 similarity floor.
func NewRetriever(rules *RuleStore, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		rules:         rules,
		k:             4,
		minSimilarity: 0.25,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns rule snippets relevant to query, best first.
// degraded is true when the store or embedder was unavailable and the
// caller proceeded without rules (fail-open); callers must surface
// this in logs since it softens rule enforcement.
func (r *Retriever) Retrieve(ctx context.Context, query, scope string) (snippets []string, degraded bool) {
	matches, err := r.rules.Query(ctx, query, r.k, scope)
	if err != nil {
		log.Printf("[MEMORY] Retrieval degraded, proceeding without rules: %v", err)
		return nil, true
	}

	for _, m := range matches {
		if m.Similarity < r.minSimilarity {
			continue
		}
		snippets = append(snippets, m.Fact.Text())
	}
	return snippets, false
}
