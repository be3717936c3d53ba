package memory

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/gantrylabs/foreman/core"
)

// RuleStore ingests user-stated site rules as Facts and answers
// similarity queries over them. It owns the Fact lifecycle: Facts are
// created here and never edited or deleted afterwards.
type RuleStore struct {
	store     Store
	embedder  Embedder
	distiller Distiller // optional
}

// RuleStoreOption configures a RuleStore.
type RuleStoreOption func(*RuleStore)

// WithDistiller condenses raw turns into rule sentences before storage.
func WithDistiller(d Distiller) RuleStoreOption {
	return func(s *RuleStore) {
		s.distiller = d
	}
}

// NewRuleStore creates a RuleStore over the given backend and embedder.
func NewRuleStore(store Store, embedder Embedder, opts ...RuleStoreOption) *RuleStore {
	s := &RuleStore{
		store:    store,
		embedder: embedder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest stores text as a new Fact and returns its identifier.
// Identical text ingested twice yields two distinct Facts.
//
// Fails with core.ErrEmbeddingUnavailable when the embedding call
// cannot complete and core.ErrStoreWrite when persistence fails.
func (s *RuleStore) Ingest(ctx context.Context, text, scope string) (string, error) {
	stored := text
	if s.distiller != nil {
		distilled, err := s.distiller.Distill(ctx, text)
		if err != nil {
			// A rule must not be lost because distillation was down.
			log.Printf("[MEMORY] Distillation failed, storing raw text: %v", err)
		} else if distilled != "" {
			stored = distilled
		}
	}

	embedding, err := s.embedder.Embed(ctx, stored)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrEmbeddingUnavailable, err)
	}

	fact := NewFact(stored, scope)
	fact.SetEmbedding(embedding)
	if stored != text {
		fact.SetMeta("raw_input", text)
	}

	if err := s.store.Store(ctx, fact); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
	}

	log.Printf("[MEMORY] Stored fact id=%s scope=%q: %s", fact.ID(), scope, stored)
	return fact.ID(), nil
}

// Query returns the k nearest Facts to text by vector similarity,
// optionally filtered to scope. Ordering is descending similarity;
// ties break toward the more recently created Fact. An empty store
// yields an empty result, not an error.
func (s *RuleStore) Query(ctx context.Context, text string, k int, scope string) ([]Match, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEmbeddingUnavailable, err)
	}

	matches, err := s.store.Query(ctx, embedding, k, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreQuery, err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Fact.CreatedAt().After(matches[j].Fact.CreatedAt())
	})

	log.Printf("[MEMORY] Query %q scope=%q returned %d match(es)", truncateLog(text, 50), scope, len(matches))
	return matches, nil
}

// All returns every stored Fact for the knowledge-base inspection panel.
func (s *RuleStore) All(ctx context.Context) ([]*Fact, error) {
	facts, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreQuery, err)
	}
	sort.Slice(facts, func(i, j int) bool {
		return facts[i].CreatedAt().Before(facts[j].CreatedAt())
	})
	return facts, nil
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
