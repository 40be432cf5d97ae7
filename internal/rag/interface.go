// Package rag defines the retrieval types and interfaces shared by the
// ingest and search pipelines: the indexed product payload, the retrieval
// result record, and the vector-store and embedder contracts. Concrete
// implementations (Qdrant, the HTTP embedders) satisfy these interfaces so
// the pipelines never depend on a specific backend.
package rag

import (
	"context"
)

// Product is the payload stored alongside each indexed embedding. The core
// constructs and upserts it; it is never mutated in place after storage.
type Product struct {
	// ID is the stable product identifier used as the point ID.
	ID string

	// Document is the cleaned markdown RAG document.
	Document string

	// Reviews is the raw customer review text.
	Reviews string

	// Price is the normalized price; 0 when the source value was missing.
	Price float64

	// Rating is the normalized rating in [0, 5]; 0 when missing.
	Rating float64

	// Tags is the lowercase metadata tag list attached at ingest time.
	Tags []string
}

// Result is a single retrieval hit. Relevance is nil until (and unless) the
// reranker has scored the result, replacing the variable-arity tuples of the
// source system with one record.
type Result struct {
	// Document is the cleaned markdown RAG document.
	Document string

	// VectorScore is the similarity score from the nearest-neighbor search.
	VectorScore float64

	// Reviews is the review text from the stored payload.
	Reviews string

	// Price is the stored price, 0 when the payload had none.
	Price float64

	// Rating is the stored rating, 0 when the payload had none.
	Rating float64

	// Relevance is the cross-encoder score appended by reranking, nil when
	// reranking did not run or was abandoned.
	Relevance *float64
}

// BestScore returns the relevance score when reranking produced one, and the
// vector score otherwise. Sorting on BestScore transparently handles mixed
// batches of reranked and unreranked results.
func (r Result) BestScore() float64 {
	if r.Relevance != nil {
		return *r.Relevance
	}
	return r.VectorScore
}

// WithRelevance returns a copy of r with the relevance score attached.
func (r Result) WithRelevance(score float64) Result {
	r.Relevance = &score
	return r
}

// VectorStore is the contract for persisting and searching product
// embeddings. Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// Upsert stores or updates a batch of products with their pre-computed
	// embeddings. embeddings[i] is the vector for products[i].
	Upsert(ctx context.Context, products []Product, embeddings [][]float32) error

	// Search returns the topK nearest neighbors of queryEmbedding as
	// Results ordered by descending similarity. A non-empty filterTags list
	// restricts hits to products matching any of the tags
	// (case-insensitive, OR semantics); an empty list searches unrestricted.
	Search(ctx context.Context, queryEmbedding []float32, filterTags []string, topK int) ([]Result, error)

	// Close releases the store's connection. Callers acquire a store per
	// operation and must close it on every exit path.
	Close() error
}

// Embedder converts text into dense vector embeddings. Implementations must
// be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their embeddings. The returned
	// slice is parallel to the input.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
