// Package config loads pipeline configuration from the environment.
package config

import (
	"os"
	"strconv"
)

// Config holds the wiring configuration for the assistant.
type Config struct {
	// AnthropicKey authenticates the reasoning service. Required.
	AnthropicKey string

	// Model is the reasoning model identifier.
	Model string

	// MaxTokens caps reasoning response size.
	MaxTokens int64

	// ListenAddr is the chat gateway bind address.
	ListenAddr string

	// DataDir is the fact store location on disk. Empty keeps the
	// store in memory (facts lost on restart).
	DataDir string

	// CatalogPath points at the vendor price list JSON. Empty disables
	// catalog costing.
	CatalogPath string

	// RetrievalK is how many rule candidates retrieval requests.
	RetrievalK int

	// MinSimilarity is the retrieval noise floor.
	MinSimilarity float64

	// EmbedCacheBytes caps the embedding cache size.
	EmbedCacheBytes int64

	// ONNXModelPath and ONNXTokenizerPath locate the local embedding
	// model (builds with the onnx tag).
	ONNXModelPath     string
	ONNXTokenizerPath string
}

// FromEnv builds a Config from environment variables with defaults
// suitable for local development.
func FromEnv() Config {
	return Config{
		AnthropicKey:      os.Getenv("ANTHROPIC_API_KEY"),
		Model:             getenv("FOREMAN_MODEL", ""),
		MaxTokens:         getenvInt64("FOREMAN_MAX_TOKENS", 1024),
		ListenAddr:        getenv("FOREMAN_ADDR", ":8080"),
		DataDir:           os.Getenv("FOREMAN_DATA_DIR"),
		CatalogPath:       getenv("FOREMAN_CATALOG", "vendors.json"),
		RetrievalK:        int(getenvInt64("FOREMAN_RETRIEVAL_K", 4)),
		MinSimilarity:     getenvFloat("FOREMAN_MIN_SIMILARITY", 0.25),
		EmbedCacheBytes:   getenvInt64("FOREMAN_EMBED_CACHE_BYTES", 16<<20),
		ONNXModelPath:     getenv("FOREMAN_ONNX_MODEL", "models/all-MiniLM-L6-v2/model.onnx"),
		ONNXTokenizerPath: getenv("FOREMAN_ONNX_TOKENIZER", "models/all-MiniLM-L6-v2/tokenizer.json"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
