package ingestion

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/smartfind/smartfind-go/internal/catalog"
	"github.com/smartfind/smartfind-go/internal/llm"
	"github.com/smartfind/smartfind-go/internal/rag"
	"github.com/smartfind/smartfind-go/internal/tags"
)

// defaultTagRate is the per-second cap on tag-extraction LLM calls,
// applied when Config.TagRequestsPerSecond is zero.
const defaultTagRate = 2

// Config holds the configuration for the indexing pipeline.
type Config struct {
	// TagRequestsPerSecond caps the rate of tag-extraction calls against the
	// chat model. Defaults to 2 if zero; negative disables the limiter.
	TagRequestsPerSecond float64

	// Registerer receives the pipeline's Prometheus metrics. Nil skips
	// metric registration entirely.
	Registerer prometheus.Registerer
}

// pipelineMetrics holds the Prometheus metrics owned by the indexing
// pipeline. Registered against the caller's registry so tests stay hermetic.
type pipelineMetrics struct {
	// productsIndexed counts products that completed the tag+embed+upsert flow.
	productsIndexed prometheus.Counter

	// tagFallbacks counts products whose tag extraction degraded to the
	// fallback tag.
	tagFallbacks prometheus.Counter
}

func newPipelineMetrics(reg prometheus.Registerer) *pipelineMetrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &pipelineMetrics{
		productsIndexed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "smartfind",
			Subsystem: "ingest",
			Name:      "products_indexed_total",
			Help:      "Total number of products tagged, embedded, and upserted.",
		}),
		tagFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "smartfind",
			Subsystem: "ingest",
			Name:      "tag_fallbacks_total",
			Help:      "Total number of products whose tag extraction degraded to the fallback tag.",
		}),
	}
}

// Pipeline orchestrates the tag → embed → upsert flow for a batch of
// catalog documents.
type Pipeline struct {
	// tagger extracts product tags via the chat model.
	tagger *tags.Extractor

	// embedder converts RAG documents into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded products.
	store rag.VectorStore

	// limiter paces the tag-extraction calls. Nil means unlimited.
	limiter *rate.Limiter

	// metrics is nil when no Registerer was configured.
	metrics *pipelineMetrics
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(chat llm.Chatter, embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if chat == nil {
		return nil, fmt.Errorf("ingestion: chat adapter must not be nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	var limiter *rate.Limiter
	rps := cfg.TagRequestsPerSecond
	if rps == 0 {
		rps = defaultTagRate
	}
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return &Pipeline{
		tagger:   tags.NewExtractor(chat, llm.ProductTaggingPrompt),
		embedder: embedder,
		store:    store,
		limiter:  limiter,
		metrics:  newPipelineMetrics(cfg.Registerer),
	}, nil
}

// Ingest tags and embeds every document, then upserts the whole batch into
// the vector store in one call. Tag extraction and embedding degrade per
// their adapters' policies, so the only failure modes are a cancelled
// context, an embedder hard error, and the upsert itself. Progress is
// reported via the optional progress callback.
func (p *Pipeline) Ingest(ctx context.Context, docs []catalog.Document, progress func(msg string)) error {
	if progress == nil {
		progress = func(string) {}
	}
	if len(docs) == 0 {
		return nil
	}

	products := make([]rag.Product, 0, len(docs))
	texts := make([]string, 0, len(docs))
	for i, doc := range docs {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("ingestion: rate limiter wait: %w", err)
			}
		}

		productTags := p.tagger.Extract(ctx, doc.RAGDocument)
		if p.metrics != nil && isFallbackOnly(productTags) {
			p.metrics.tagFallbacks.Inc()
		}

		product := rag.Product{
			ID:       doc.UniqID,
			Document: doc.RAGDocument,
			Reviews:  doc.CustomerReviews,
			Tags:     productTags,
		}
		if doc.Price != nil {
			product.Price = *doc.Price
		}
		if doc.Rating != nil {
			product.Rating = *doc.Rating
		}
		products = append(products, product)
		texts = append(texts, doc.RAGDocument)

		progress(fmt.Sprintf("tagged product %d/%d", i+1, len(docs)))
	}

	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("ingestion: embedding batch: %w", err)
	}
	progress(fmt.Sprintf("embedded %d documents", len(texts)))

	if err := p.store.Upsert(ctx, products, embeddings); err != nil {
		return fmt.Errorf("ingestion: upsert failed: %w", err)
	}
	if p.metrics != nil {
		p.metrics.productsIndexed.Add(float64(len(products)))
	}
	progress(fmt.Sprintf("indexed %d products", len(products)))

	return nil
}

// isFallbackOnly reports whether a tag list is exactly the degraded
// fallback result.
func isFallbackOnly(ts []string) bool {
	return len(ts) == 1 && ts[0] == tags.FallbackTag
}
