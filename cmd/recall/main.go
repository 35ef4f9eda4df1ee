// Command recall is a local hybrid search tool for notes, documents
// and chat history.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tessera-labs/recall/internal/adapters/driven/ai"
	"github.com/tessera-labs/recall/internal/adapters/driven/config/file"
	"github.com/tessera-labs/recall/internal/adapters/driven/storage/sqlite"
	"github.com/tessera-labs/recall/internal/adapters/driving/cli"
	"github.com/tessera-labs/recall/internal/chunker"
	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driving"
	"github.com/tessera-labs/recall/internal/core/services"
	"github.com/tessera-labs/recall/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fatal("opening config store: %v", err)
	}
	settings := services.NewSettingsService(configStore)

	store, err := sqlite.NewStore("")
	if err != nil {
		fatal("opening index store: %v", err)
	}
	defer store.Close() //nolint:errcheck

	// A missing or broken embedding provider is not fatal: indexing
	// persists unembedded chunks and search degrades to lexical-only.
	embedder, err := ai.CreateEmbeddingService(settings.Embedding())
	if err != nil {
		logger.Warn("Embedding provider unavailable: %v", err)
	}
	if embedder != nil {
		defer embedder.Close() //nolint:errcheck
	}

	llm, err := ai.CreateLLMService(settings.LLM())
	if err != nil {
		logger.Warn("LLM provider unavailable: %v", err)
	}
	if llm != nil {
		defer llm.Close() //nolint:errcheck
	}

	rerankSettings := settings.Rerank()
	reranker := ai.CreateReranker(rerankSettings, llm)

	indexService := services.NewIndexService(
		store.ChunkStore(), store.RecordStore(), embedder, chunker.Options{},
	)

	searchServices := make(map[domain.Corpus]driving.SearchService)
	for _, corpus := range domain.AllCorpora() {
		svc := services.NewSearchService(
			corpus, store.ChunkStore(), store.RecordStore(), embedder, reranker,
		)
		svc.SetRerankThreshold(rerankSettings.Threshold)
		searchServices[corpus] = svc
	}

	cli.SetServices(searchServices, indexService, settings)
	cli.Execute(ctx)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "recall: "+format+"\n", args...)
	os.Exit(1)
}
