package core

import "errors"

// Error taxonomy for the decision-and-approval pipeline.
// Callers classify failures with errors.Is and wrap with fmt.Errorf("...: %w", err).
var (
	// ErrEmbeddingUnavailable indicates the embedding call could not complete.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrStoreWrite indicates a durable write to the fact store failed.
	ErrStoreWrite = errors.New("fact store write failed")

	// ErrStoreQuery indicates a similarity query against the fact store failed.
	ErrStoreQuery = errors.New("fact store query failed")

	// ErrReasoning indicates the external reasoning service failed or timed out.
	ErrReasoning = errors.New("reasoning service error")

	// ErrMalformedOrder indicates items/cost could not be extracted from input.
	ErrMalformedOrder = errors.New("malformed order request")
)
