package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Embedder is a deterministic offline embedder for tests and local
// development. It hashes lowercase tokens into a fixed number of
// dimensions, so texts sharing words score a meaningful cosine
// similarity while unrelated texts score near zero. Identical text
// always produces the identical vector.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder with 384 dimensions (matching
// all-MiniLM-L6-v2, so it can stand in for the ONNX embedder).
func New() *Embedder {
	return &Embedder{dimensions: 384}
}

// Embed produces a bag-of-words hash embedding, normalized to a unit
// vector.
func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding := make([]float32, m.dimensions)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'")
		if token == "" {
			continue
		}
		h := fnv.New64a()
		h.Write([]byte(token))
		embedding[h.Sum64()%uint64(m.dimensions)] += 1
	}

	return normalize(embedding), nil
}

// Dimensions returns the embedding size.
func (m *Embedder) Dimensions() int {
	return m.dimensions
}

// normalize converts the embedding to a unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
