package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartfind/smartfind-go/internal/llm"
	"github.com/smartfind/smartfind-go/internal/rag"
)

// Synthesizer produces the LLM-written comparative recommendation report
// (the path the query pipeline uses). It serializes every ranked result into
// one context blob and sends it to the chat adapter under the research
// prompt.
type Synthesizer struct {
	// chat is the chat adapter used for report generation.
	chat llm.Chatter
}

// NewSynthesizer constructs a Synthesizer over the given chat adapter.
func NewSynthesizer(chat llm.Chatter) *Synthesizer {
	return &Synthesizer{chat: chat}
}

// Generate asks the chat model for a markdown recommendation report covering
// all ranked results. Chat failures follow the adapter's own degradation
// policy — the caller receives whatever the adapter returned, degraded or
// not — so the pipeline itself adds no error handling here.
func (s *Synthesizer) Generate(ctx context.Context, query string, results []rag.Result) string {
	user := fmt.Sprintf("User Query: %s\n\nProducts:\n%s", query, contextBlob(results))
	reply := s.chat.Chat(ctx, llm.ResearchReportPrompt, user)
	return reply.Text
}

// contextBlob serializes ranked results — document, reviews, price, rating,
// and both scores — into the delimiter-separated context passed to the
// model. A missing relevance score is rendered as "n/a" rather than omitted
// so the model sees a uniform schema.
func contextBlob(results []rag.Result) string {
	entries := make([]string, 0, len(results))
	for _, r := range results {
		relevance := "n/a"
		if r.Relevance != nil {
			relevance = fmt.Sprintf("%.4f", *r.Relevance)
		}
		entries = append(entries, fmt.Sprintf(
			"Product Description: %s\nUser Reviews: %s\nPrice: %.2f\nRating: %.1f\nVector Score: %.4f\nRelevance Score: %s",
			r.Document, r.Reviews, r.Price, r.Rating, r.VectorScore, relevance,
		))
	}
	return strings.Join(entries, "\n\n---\n\n")
}
