package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/cloudwego/eino/components/model"

	"github.com/smartfind/smartfind-go/internal/embedder"
	"github.com/smartfind/smartfind-go/internal/llm"
	"github.com/smartfind/smartfind-go/internal/provider"
	"github.com/smartfind/smartfind-go/internal/rag"
	"github.com/smartfind/smartfind-go/internal/reranker"
	"github.com/smartfind/smartfind-go/internal/search"
	"github.com/smartfind/smartfind-go/internal/store"
)

// defaultCollection is the Qdrant collection used when QDRANT_COLLECTION is
// not set.
const defaultCollection = "ecommerce-products"

// buildChatModel initialises the configured chat backend and wraps it in the
// degradation-aware chat adapter used by tagging and synthesis.
func buildChatModel(ctx context.Context) (llm.Chatter, model.ToolCallingChatModel, error) {
	chatModel, err := provider.NewFromEnv(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialise model provider: %w", err)
	}
	return llm.New(chatModel, nil), chatModel, nil
}

// buildEmbedder initialises the configured embedding backend wrapped with the
// zero-vector fallback, and returns the resolved vector dimensionality.
func buildEmbedder(log *slog.Logger) (rag.Embedder, int, error) {
	embedder.WarnOnSuspectModel(log)

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to initialise embedder: %w", err)
	}

	backend := embedder.Backend()
	dims := getEnvInt("EMBEDDING_DIMENSIONS", embedder.DefaultDimensions(backend))
	log.Info("embedder initialised",
		slog.String("provider", backend),
		slog.Int("dimensions", dims),
	)

	return embedder.NewFallback(emb, dims), dims, nil
}

// qdrantConfigFromEnv resolves the Qdrant connection settings.
func qdrantConfigFromEnv(dims int) *rag.QdrantConfig {
	return &rag.QdrantConfig{
		Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
		Port:       getEnvInt("QDRANT_PORT", 6334),
		Collection: getEnvOrDefault("QDRANT_COLLECTION", defaultCollection),
		VectorSize: uint64(dims), //nolint:gosec // dimensions are bounded
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	}
}

// storeOpener returns a per-operation Qdrant store factory for the query
// pipeline.
func storeOpener(dims int) search.StoreOpener {
	return func(ctx context.Context) (rag.VectorStore, error) {
		return rag.NewQdrantStore(ctx, qdrantConfigFromEnv(dims)) //nolint:wrapcheck // constructor passthrough
	}
}

// buildReranker constructs the Cohere reranker when COHERE_API_KEY is set.
// Returns nil when unset — the pipeline then skips reranking entirely.
func buildReranker(log *slog.Logger) reranker.Service {
	apiKey := os.Getenv("COHERE_API_KEY")
	if apiKey == "" {
		log.Info("reranker disabled", slog.String("reason", "COHERE_API_KEY not set"))
		return nil
	}
	return reranker.NewCohereReranker(&reranker.CohereConfig{
		BaseURL: os.Getenv("COHERE_BASE_URL"),
		APIKey:  apiKey,
		Model:   os.Getenv("COHERE_MODEL"),
	})
}

// openHistory opens the search history store. SMARTFIND_HISTORY_DB overrides
// the default path (~/.smartfind/history.db); "disabled" turns persistence
// off. A store that cannot be opened degrades to nil with a warning — search
// must keep working without history.
func openHistory(log *slog.Logger) (store.HistoryStore, func()) {
	dbPath := os.Getenv("SMARTFIND_HISTORY_DB")
	if dbPath == "disabled" {
		log.Info("history: disabled via SMARTFIND_HISTORY_DB=disabled")
		return nil, func() {}
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil, func() {}
		}
	}

	hs, err := store.Open(dbPath)
	if err != nil {
		log.Warn("history: failed to open store, disabling", slog.Any("error", err))
		return nil, func() {}
	}
	log.Info("history: store opened", slog.String("path", dbPath))
	return hs, func() { _ = hs.Close() }
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
