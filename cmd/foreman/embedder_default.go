//go:build !onnx

package main

import (
	"log"

	"github.com/gantrylabs/foreman/config"
	"github.com/gantrylabs/foreman/memory"
	"github.com/gantrylabs/foreman/memory/embedder/mock"
)

// newEmbedder returns the deterministic mock embedder. Build with
// -tags onnx for real semantic embeddings.
func newEmbedder(cfg config.Config) (memory.Embedder, func(), error) {
	log.Println("[MAIN] Using mock embedder (build with -tags onnx for semantic search)")
	return mock.New(), func() {}, nil
}
