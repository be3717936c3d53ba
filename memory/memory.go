package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Fact is an immutable stored unit of long-term rule/preference memory.
// Corrections are new Facts, never in-place edits; Facts are never
// deleted by normal operation.
type Fact struct {
	id        string
	text      string
	scope     string
	embedding []float32
	createdAt time.Time
	metadata  map[string]string
}

// NewFact creates a Fact for the given rule text and optional scope
// (e.g., a site name). The embedding is set separately before storage.
func NewFact(text, scope string) *Fact {
	return &Fact{
		id:        uuid.New().String(),
		text:      text,
		scope:     scope,
		createdAt: time.Now(),
		metadata:  make(map[string]string),
	}
}

// NewFactFromStorage reconstructs a Fact from stored data.
// Used by Store implementations when deserializing.
func NewFactFromStorage(id, text, scope string, embedding []float32, createdAt time.Time, metadata map[string]string) *Fact {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return &Fact{
		id:        id,
		text:      text,
		scope:     scope,
		embedding: embedding,
		createdAt: createdAt,
		metadata:  metadata,
	}
}

// ID returns the unique fact identifier.
func (f *Fact) ID() string { return f.id }

// Text returns the stored rule text.
func (f *Fact) Text() string { return f.text }

// Scope returns the scope tag, empty if the fact is unscoped.
func (f *Fact) Scope() string { return f.scope }

// CreatedAt returns the ingestion timestamp.
func (f *Fact) CreatedAt() time.Time { return f.createdAt }

// Embedding returns the vector for similarity search.
func (f *Fact) Embedding() []float32 { return f.embedding }

// SetEmbedding sets the embedding vector.
func (f *Fact) SetEmbedding(emb []float32) { f.embedding = emb }

// Metadata returns a copy of the fact's metadata. Facts are immutable
// once stored; handing out the internal map would let callers edit one.
func (f *Fact) Metadata() map[string]string {
	m := make(map[string]string, len(f.metadata))
	for k, v := range f.metadata {
		m[k] = v
	}
	return m
}

// SetMeta records a metadata key (e.g., the raw user input a rule was
// distilled from).
func (f *Fact) SetMeta(key, value string) { f.metadata[key] = value }

// Match pairs a retrieved Fact with its similarity to the query.
type Match struct {
	Fact       *Fact
	Similarity float32
}

// Store is the vector storage backend interface.
// Implementations: chromem.Store (embedded, optionally persistent).
type Store interface {
	// Store saves a fact with its embedding. The embedding must be
	// set before calling Store.
	Store(ctx context.Context, fact *Fact) error

	// Query retrieves facts by vector similarity, highest first.
	// An empty scope matches facts of every scope.
	Query(ctx context.Context, embedding []float32, limit int, scope string) ([]Match, error)

	// All returns every stored fact, for inspection surfaces.
	All(ctx context.Context) ([]*Fact, error)

	// Close releases resources.
	Close() error
}

// Embedder converts text to vector embeddings.
// Implementations: mock.Embedder (testing), onnx.Embedder (local),
// cached.Embedder (ristretto read-through over another Embedder).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// Distiller condenses a raw user turn into a granular rule sentence
// before it is embedded and stored. Typically backed by the reasoning
// service; the RuleStore falls back to the raw text when it fails.
type Distiller interface {
	Distill(ctx context.Context, raw string) (string, error)
}
