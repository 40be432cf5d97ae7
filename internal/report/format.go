// Package report renders ranked retrieval results for the end user. Two
// independent paths exist: Format is a pure markdown template renderer, and
// Synthesizer asks the chat model for a comparative recommendation report.
// The query pipeline uses the Synthesizer; Format stands alone as a
// formatting utility with its own contract.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smartfind/smartfind-go/internal/rag"
)

// Format renders results into the fixed SmartFind research-report markdown
// template. Results are sorted by best-available score — relevance when the
// reranker attached one, vector score otherwise — so a mixed batch of
// reranked and unreranked entries orders correctly.
func Format(query string, results []rag.Result) string {
	ranked := make([]rag.Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].BestScore() > ranked[j].BestScore()
	})

	blocks := make([]string, 0, len(ranked))
	for i, r := range ranked {
		title := "🏆 Top Recommendation"
		if i > 0 {
			title = fmt.Sprintf("🔹 Alternative #%d", i+1)
		}

		scoreLine := fmt.Sprintf("**Vector Score:** %.4f", r.VectorScore)
		if r.Relevance != nil {
			scoreLine = fmt.Sprintf("**Relevance Score:** %.4f", *r.Relevance)
		}

		reviews := strings.TrimSpace(r.Reviews)
		if reviews == "" {
			reviews = "N/A"
		}

		blocks = append(blocks, fmt.Sprintf(
			"### %s\n\n%s  \n**Price:** $%.2f  \n**Rating:** %.1f ⭐  \n\n**Product Description:**\n%s\n\n**User Reviews:**\n%s",
			title, scoreLine, r.Price, r.Rating, strings.TrimSpace(r.Document), reviews,
		))
	}

	return fmt.Sprintf("## 🔍 SmartFind Research Report\n\n### Query\n> %s\n\n---\n\n%s",
		strings.TrimSpace(query), strings.Join(blocks, "\n\n---\n\n"))
}
