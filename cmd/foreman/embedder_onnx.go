//go:build onnx

package main

import (
	"log"

	"github.com/gantrylabs/foreman/config"
	"github.com/gantrylabs/foreman/memory"
	"github.com/gantrylabs/foreman/memory/embedder/onnx"
)

// newEmbedder returns the local ONNX sentence embedder.
func newEmbedder(cfg config.Config) (memory.Embedder, func(), error) {
	embedder, err := onnx.New(onnx.Config{
		ModelPath:     cfg.ONNXModelPath,
		TokenizerPath: cfg.ONNXTokenizerPath,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Println("[MAIN] Using ONNX embedder (all-MiniLM-L6-v2)")
	return embedder, func() { embedder.Close() }, nil
}
