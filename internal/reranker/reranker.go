// Package reranker re-scores retrieved results with an external
// cross-encoder relevance service. The Apply helper owns the degradation
// policy: a failed call, a count mismatch, or an out-of-range index abandons
// the rerank entirely and the original vector-ranked results are returned
// untouched.
package reranker

import (
	"context"
	"log/slog"
	"sort"

	"github.com/smartfind/smartfind-go/internal/logging"
	"github.com/smartfind/smartfind-go/internal/rag"
)

// Ranking is one entry of a rerank response: the index of the document in
// the request order and its cross-encoder relevance score.
type Ranking struct {
	// Index is the zero-based position of the document in the request.
	Index int
	// Relevance is the cross-encoder relevance score.
	Relevance float64
}

// Service is the external reranking contract. Implementations request a full
// relevance ordering over all candidate documents.
type Service interface {
	// Rerank scores documents against query and returns one Ranking per
	// scored document, ordered by descending relevance.
	Rerank(ctx context.Context, query string, documents []string) ([]Ranking, error)
}

// Apply reranks results against query using svc and returns them sorted by
// descending relevance score, each with its relevance attached.
//
// Validation guards against silently truncated or misaligned reranking: if
// the service errors, returns a ranking count different from the input
// count, or references an out-of-range index, the rerank is abandoned and
// the original results are returned unchanged (still in vector-score order).
// Apply never fails.
func Apply(ctx context.Context, svc Service, query string, results []rag.Result) []rag.Result {
	if len(results) == 0 {
		return results
	}
	log := logging.FromContext(ctx)

	documents := make([]string, len(results))
	for i, r := range results {
		documents[i] = r.Document
	}

	rankings, err := svc.Rerank(ctx, query, documents)
	if err != nil {
		log.Warn("reranker: rerank call failed, keeping original order", slog.Any("error", err))
		return results
	}
	if len(rankings) != len(results) {
		log.Warn("reranker: ranking count mismatch, keeping original order",
			slog.Int("want", len(results)),
			slog.Int("got", len(rankings)),
		)
		return results
	}

	reranked := make([]rag.Result, 0, len(rankings))
	for _, rk := range rankings {
		if rk.Index < 0 || rk.Index >= len(results) {
			log.Warn("reranker: index out of range, keeping original order",
				slog.Int("index", rk.Index),
				slog.Int("candidates", len(results)),
			)
			return results
		}
		reranked = append(reranked, results[rk.Index].WithRelevance(rk.Relevance))
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].BestScore() > reranked[j].BestScore()
	})

	return reranked
}
