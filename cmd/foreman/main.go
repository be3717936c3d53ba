// Command foreman runs the procurement assistant: a WebSocket chat
// gateway over the rule-memory store and the decision-and-approval
// pipeline.
package main

import (
	"log"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joho/godotenv"

	"github.com/gantrylabs/foreman/agent"
	"github.com/gantrylabs/foreman/approval"
	"github.com/gantrylabs/foreman/catalog"
	"github.com/gantrylabs/foreman/config"
	"github.com/gantrylabs/foreman/decision"
	"github.com/gantrylabs/foreman/memory"
	"github.com/gantrylabs/foreman/memory/embedder/cached"
	"github.com/gantrylabs/foreman/memory/store/chromem"
	"github.com/gantrylabs/foreman/reasoning"
	"github.com/gantrylabs/foreman/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	if cfg.AnthropicKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable is required")
	}

	// Reasoning service
	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicKey))
	var claudeOpts []reasoning.ClaudeOption
	if cfg.Model != "" {
		claudeOpts = append(claudeOpts, reasoning.WithModel(cfg.Model))
	}
	claudeOpts = append(claudeOpts, reasoning.WithMaxTokens(cfg.MaxTokens))
	reasoner := reasoning.NewClaude(&client, claudeOpts...)

	// Embedder (ONNX with the onnx build tag, mock otherwise) behind a
	// ristretto read-through cache.
	baseEmbedder, cleanup, err := newEmbedder(cfg)
	if err != nil {
		log.Fatalf("Embedder setup failed: %v", err)
	}
	defer cleanup()

	embedder, err := cached.New(baseEmbedder, cfg.EmbedCacheBytes)
	if err != nil {
		log.Fatalf("Embedding cache setup failed: %v", err)
	}
	defer embedder.Close()

	// Fact store: persistent when a data dir is configured.
	var store *chromem.Store
	if cfg.DataDir != "" {
		store, err = chromem.NewPersistent(cfg.DataDir, embedder.Dimensions())
	} else {
		store, err = chromem.New()
	}
	if err != nil {
		log.Fatalf("Fact store setup failed: %v", err)
	}
	defer store.Close()

	rules := memory.NewRuleStore(store, embedder,
		memory.WithDistiller(reasoning.NewFactDistiller(reasoner)))
	retriever := memory.NewRetriever(rules,
		memory.WithK(cfg.RetrievalK),
		memory.WithMinSimilarity(float32(cfg.MinSimilarity)))

	opts := []agent.Option{}
	if cfg.CatalogPath != "" {
		if cat, err := catalog.Load(cfg.CatalogPath); err != nil {
			log.Printf("[MAIN] Vendor catalog unavailable (%v), continuing without it", err)
		} else {
			opts = append(opts, agent.WithCatalog(cat))
		}
	}

	controller := agent.New(
		rules,
		retriever,
		decision.NewEngine(),
		approval.NewRegistry(),
		approval.NewClassifier(reasoner),
		reasoner,
		opts...,
	)

	srv := server.New(controller, rules)
	if err := srv.Run(cfg.ListenAddr); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
