package chromem

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/gantrylabs/foreman/memory"
)

const collectionName = "site_rules"

// Store wraps chromem-go for Fact storage.
// chromem-go is a pure Go, embedded vector database; with a path it
// persists documents to disk, which makes the Fact collection the only
// durable state in the pipeline.
type Store struct {
	db  *chromem.DB
	col *chromem.Collection

	mu    sync.RWMutex
	facts map[string]*memory.Fact // side index for All() and count clamping
}

// New creates an in-memory chromem store (tests, throwaway sessions).
func New() (*Store, error) {
	db := chromem.NewDB()
	return newStore(db, 0)
}

// NewPersistent creates a chromem store persisted under path.
// dims must match the embedder's vector size; it is used to reload
// existing facts on open.
func NewPersistent(path string, dims int) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open persistent db: %w", err)
	}
	return newStore(db, dims)
}

func newStore(db *chromem.DB, dims int) (*Store, error) {
	col, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	s := &Store{
		db:    db,
		col:   col,
		facts: make(map[string]*memory.Fact),
	}

	if n := col.Count(); n > 0 {
		if dims <= 0 {
			return nil, fmt.Errorf("collection holds %d facts but no embedding dimensions given for reload", n)
		}
		if err := s.reload(context.Background(), n, dims); err != nil {
			return nil, fmt.Errorf("reload facts: %w", err)
		}
		log.Printf("[CHROMEM] Reloaded %d fact(s) from disk", len(s.facts))
	}

	return s, nil
}

// reload rebuilds the side index from persisted documents. chromem has
// no list API, so a full-collection similarity query against a basis
// vector stands in for one.
func (s *Store) reload(ctx context.Context, count, dims int) error {
	probe := make([]float32, dims)
	probe[0] = 1

	results, err := s.col.QueryEmbedding(ctx, probe, count, nil, nil)
	if err != nil {
		return err
	}
	for _, result := range results {
		fact, err := deserializeFact(result)
		if err != nil {
			log.Printf("[CHROMEM] Skipping stored document %s: %v", result.ID, err)
			continue
		}
		s.facts[fact.ID()] = fact
	}
	return nil
}

// Store saves a fact with its embedding.
func (s *Store) Store(ctx context.Context, fact *memory.Fact) error {
	metadata := map[string]string{
		"scope":      fact.Scope(),
		"created_at": fact.CreatedAt().Format(time.RFC3339Nano),
	}
	for k, v := range fact.Metadata() {
		metadata[k] = v
	}

	doc := chromem.Document{
		ID:        fact.ID(),
		Content:   fact.Text(),
		Embedding: fact.Embedding(),
		Metadata:  metadata,
	}

	if err := s.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	s.mu.Lock()
	s.facts[fact.ID()] = fact
	s.mu.Unlock()

	log.Printf("[CHROMEM] Stored fact id=%s scope=%q", fact.ID(), fact.Scope())
	return nil
}

// Query retrieves facts by vector similarity, highest first; equal
// similarity breaks ties toward the more recently created fact. A
// scoped query matches facts with that scope plus unscoped (global)
// facts; an empty scope matches everything.
//
// chromem's where clause is a single exact match, which cannot express
// "this scope or no scope", so the whole collection is queried and
// filtered here. Collections are small enough that this is fine.
func (s *Store) Query(ctx context.Context, embedding []float32, limit int, scope string) ([]memory.Match, error) {
	s.mu.RLock()
	count := len(s.facts)
	s.mu.RUnlock()

	if count == 0 {
		return nil, nil
	}

	// chromem requires nResults <= collection size.
	results, err := s.col.QueryEmbedding(ctx, embedding, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	var matches []memory.Match
	for _, result := range results {
		if scope != "" && result.Metadata["scope"] != "" && result.Metadata["scope"] != scope {
			continue
		}
		fact, err := deserializeFact(result)
		if err != nil {
			log.Printf("[CHROMEM] Skipping result %s: %v", result.ID, err)
			continue
		}
		matches = append(matches, memory.Match{Fact: fact, Similarity: result.Similarity})
	}

	// The recency tie-break must run before truncation, otherwise an
	// older duplicate straddling the limit boundary would win.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Fact.CreatedAt().After(matches[j].Fact.CreatedAt())
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	log.Printf("[CHROMEM] Query scope=%q returned %d of %d document(s)", scope, len(matches), len(results))
	return matches, nil
}

// All returns every stored fact.
func (s *Store) All(ctx context.Context) ([]*memory.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	facts := make([]*memory.Fact, 0, len(s.facts))
	for _, fact := range s.facts {
		facts = append(facts, fact)
	}
	return facts, nil
}

// Close releases resources. chromem flushes on every write, so there
// is nothing to sync here.
func (s *Store) Close() error {
	return nil
}

// deserializeFact converts a chromem result back to a Fact.
func deserializeFact(result chromem.Result) (*memory.Fact, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, result.Metadata["created_at"])
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	metadata := make(map[string]string)
	for k, v := range result.Metadata {
		if k == "scope" || k == "created_at" {
			continue
		}
		metadata[k] = v
	}

	return memory.NewFactFromStorage(
		result.ID,
		result.Content,
		result.Metadata["scope"],
		result.Embedding,
		createdAt,
		metadata,
	), nil
}
