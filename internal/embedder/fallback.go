package embedder

import (
	"context"
	"log/slog"
	"time"

	"github.com/smartfind/smartfind-go/internal/logging"
	"github.com/smartfind/smartfind-go/internal/rag"
)

// fallbackTimeout bounds each embedding call made through the Fallback
// wrapper. A timeout is handled like any other failure.
const fallbackTimeout = 30 * time.Second

// Fallback wraps a rag.Embedder with the pipeline's degradation policy:
// any failure — network, auth, malformed response, timeout — yields
// fixed zero vectors instead of an error. The failure is logged, never
// surfaced, so an embedding outage degrades retrieval quality rather than
// blocking the pipeline.
type Fallback struct {
	// inner is the wrapped embedder.
	inner rag.Embedder
	// dims is the length of the substituted zero vectors; must match the
	// collection's vector size.
	dims int
}

// NewFallback wraps inner so that failures produce zero vectors of length
// dims.
func NewFallback(inner rag.Embedder, dims int) *Fallback {
	return &Fallback{inner: inner, dims: dims}
}

// Embed delegates to the wrapped embedder, substituting zero vectors for the
// whole batch on any failure. The returned error is always nil; degradation
// is visible only in the log.
func (f *Fallback) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, fallbackTimeout)
	defer cancel()

	embeddings, err := f.inner.Embed(callCtx, texts)
	if err != nil {
		logging.FromContext(ctx).Warn("embedder: embedding failed, substituting zero vectors",
			slog.Int("texts", len(texts)),
			slog.Int("dims", f.dims),
			slog.Any("error", err),
		)
		return f.zeroBatch(len(texts)), nil
	}
	return embeddings, nil
}

// zeroBatch returns n zero vectors of the configured dimensionality.
func (f *Fallback) zeroBatch(n int) [][]float32 {
	batch := make([][]float32, n)
	for i := range batch {
		batch[i] = make([]float32, f.dims)
	}
	return batch
}
