// Package memory provides the semantic rule-memory store: durable
// storage of short text facts with vector-similarity retrieval.
//
// Facts are immutable. Re-ingesting identical text creates a new Fact
// with a new identifier; provenance (creation timestamp) matters for
// recency-based tie-breaks, so there is no deduplication.
//
// Architecture:
//   - Store: vector storage backend (chromem-go, embedded)
//   - Embedder: text-to-vector conversion (ONNX locally, mock in tests)
//   - RuleStore: ingestion and similarity queries over Facts
//   - Retriever: advisory top-k retrieval with a noise threshold,
//     fail-open when the store or embedder is unavailable
//
// Retrieval is advisory: the Retriever never fails its caller. When the
// store is empty or unreachable it returns no snippets and marks the
// result degraded so the decision path stays observable.
package memory
