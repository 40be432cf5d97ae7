// Package search implements the end-to-end query pipeline: tag extraction,
// metadata-filtered vector retrieval, optional cross-encoder reranking, and
// LLM report synthesis. Each stage's output is the next stage's entire
// input, and each external-service stage degrades per its own adapter
// policy — the pipeline adds no error handling of its own beyond store
// acquisition.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smartfind/smartfind-go/internal/document"
	"github.com/smartfind/smartfind-go/internal/llm"
	"github.com/smartfind/smartfind-go/internal/logging"
	"github.com/smartfind/smartfind-go/internal/rag"
	"github.com/smartfind/smartfind-go/internal/report"
	"github.com/smartfind/smartfind-go/internal/reranker"
	"github.com/smartfind/smartfind-go/internal/tags"
)

// defaultTopK is the number of nearest neighbors retrieved per query.
const defaultTopK = 5

// StoreOpener acquires a vector-store connection for a single operation.
// The pipeline opens a fresh store per query and closes it before
// returning, on every exit path.
type StoreOpener func(ctx context.Context) (rag.VectorStore, error)

// Config holds the collaborators for constructing a Pipeline.
type Config struct {
	// Chat is the chat adapter used for query tagging and report synthesis.
	Chat llm.Chatter

	// Embedder embeds the query text. Wrap it with embedder.NewFallback so
	// an embedding outage degrades instead of failing.
	Embedder rag.Embedder

	// OpenStore acquires the vector store for each query.
	OpenStore StoreOpener

	// Reranker is the optional cross-encoder service. When nil, rerank
	// requests are skipped and results keep their vector ordering.
	Reranker reranker.Service

	// TopK is the retrieval depth. Defaults to 5 if zero.
	TopK int
}

// Pipeline is the query-time orchestrator. It is stateless across queries;
// the only per-query resource is the store connection it acquires and
// releases itself.
type Pipeline struct {
	chat        llm.Chatter
	embedder    rag.Embedder
	openStore   StoreOpener
	rerankSvc   reranker.Service
	queryTagger *tags.Extractor
	synthesizer *report.Synthesizer
	topK        int
}

// New constructs a Pipeline from the given config.
func New(cfg *Config) (*Pipeline, error) {
	if cfg.Chat == nil {
		return nil, fmt.Errorf("search: chat adapter must not be nil")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("search: embedder must not be nil")
	}
	if cfg.OpenStore == nil {
		return nil, fmt.Errorf("search: store opener must not be nil")
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Pipeline{
		chat:        cfg.Chat,
		embedder:    cfg.Embedder,
		openStore:   cfg.OpenStore,
		rerankSvc:   cfg.Reranker,
		queryTagger: tags.NewExtractor(cfg.Chat, llm.QueryTaggingPrompt),
		synthesizer: report.NewSynthesizer(cfg.Chat),
		topK:        topK,
	}, nil
}

// Search runs the full pipeline for a user query and returns the markdown
// report:
//
//	query → tags → filter → retrieval → (rerank) → synthesis
//
// useTags controls query tag extraction and metadata filtering; useReranker
// controls the cross-encoder pass. The only returned errors are store
// acquisition and search failures — every other stage degrades per its
// adapter's documented policy.
func (p *Pipeline) Search(ctx context.Context, query string, useReranker, useTags bool) (string, error) {
	log := logging.FromContext(ctx)

	var filterTags []string
	if useTags {
		filterTags = p.queryTagger.Extract(ctx, query)
		log.Info("search: extracted query tags", slog.Any("tags", filterTags))
	}

	results, err := p.Retrieve(ctx, query, filterTags)
	if err != nil {
		return "", err
	}
	log.Info("search: retrieved candidates", slog.Int("count", len(results)))

	if useReranker && p.rerankSvc != nil {
		results = reranker.Apply(ctx, p.rerankSvc, query, results)
	}

	return p.synthesizer.Generate(ctx, query, results), nil
}

// Retrieve embeds the query and performs the similarity search under the
// optional tag filter. The store connection is acquired fresh and released
// before returning, including on error paths. Stored documents are re-cleaned
// before they reach ranking or synthesis; Clean is idempotent, so documents
// cleaned at ingest pass through unchanged.
func (p *Pipeline) Retrieve(ctx context.Context, query string, filterTags []string) ([]rag.Result, error) {
	store, err := p.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: acquiring vector store: %w", err)
	}
	defer store.Close()

	embeddings, err := p.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("search: embedding query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("search: embedder returned no vector for query")
	}

	results, err := store.Search(ctx, embeddings[0], filterTags, p.topK)
	if err != nil {
		return nil, fmt.Errorf("search: vector search: %w", err)
	}

	for i := range results {
		results[i].Document = document.Clean(results[i].Document)
	}

	return results, nil
}
