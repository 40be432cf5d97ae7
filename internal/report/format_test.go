package report

import (
	"strings"
	"testing"

	"github.com/smartfind/smartfind-go/internal/rag"
)

func relevance(v float64) *float64 { return &v }

func Test_Format_TopRecommendationAndAlternatives(t *testing.T) {
	t.Parallel()

	results := []rag.Result{
		{Document: "Wooden blocks set", VectorScore: 0.91, Price: 24.99, Rating: 4.7, Reviews: "My kids love these."},
		{Document: "Plastic blocks", VectorScore: 0.85, Price: 12.50, Rating: 4.1, Reviews: "Decent."},
		{Document: "Magnetic tiles", VectorScore: 0.78, Price: 39.99, Rating: 4.9},
	}

	out := Format("building toys for toddlers", results)

	if !strings.HasPrefix(out, "## 🔍 SmartFind Research Report") {
		t.Errorf("report missing header:\n%s", out)
	}
	if !strings.Contains(out, "> building toys for toddlers") {
		t.Error("report missing quoted query")
	}

	topIdx := strings.Index(out, "🏆 Top Recommendation")
	altIdx := strings.Index(out, "🔹 Alternative #2")
	if topIdx == -1 || altIdx == -1 || topIdx > altIdx {
		t.Errorf("expected top recommendation before alternative #2:\n%s", out)
	}
	if !strings.Contains(out, "🔹 Alternative #3") {
		t.Error("report missing alternative #3")
	}

	if !strings.Contains(out, "**Vector Score:** 0.9100") {
		t.Error("report missing vector score line for unreranked result")
	}
	if !strings.Contains(out, "**Price:** $24.99") {
		t.Error("report missing price line")
	}
	if !strings.Contains(out, "**Rating:** 4.7 ⭐") {
		t.Error("report missing rating line")
	}
	// Third result has no reviews.
	if !strings.Contains(out, "**User Reviews:**\nN/A") {
		t.Error("missing reviews should render as N/A")
	}
}

func Test_Format_RelevanceScoreWinsWhenPresent(t *testing.T) {
	t.Parallel()

	results := []rag.Result{
		{Document: "doc a", VectorScore: 0.95, Relevance: relevance(0.12)},
		{Document: "doc b", VectorScore: 0.60, Relevance: relevance(0.88)},
	}

	out := Format("query", results)

	// Reranked order: doc b (0.88) ahead of doc a (0.12), despite vector scores.
	aIdx := strings.Index(out, "doc a")
	bIdx := strings.Index(out, "doc b")
	if bIdx == -1 || aIdx == -1 || bIdx > aIdx {
		t.Errorf("expected doc b ranked first:\n%s", out)
	}
	if !strings.Contains(out, "**Relevance Score:** 0.8800") {
		t.Error("report missing relevance score line")
	}
	if strings.Contains(out, "**Vector Score:**") {
		t.Error("reranked results should show relevance, not vector, scores")
	}
}

func Test_Format_MixedScoresSortByBest(t *testing.T) {
	t.Parallel()

	results := []rag.Result{
		{Document: "unreranked high", VectorScore: 0.90},
		{Document: "reranked higher", VectorScore: 0.10, Relevance: relevance(0.95)},
	}

	out := Format("query", results)
	if strings.Index(out, "reranked higher") > strings.Index(out, "unreranked high") {
		t.Errorf("best-available score should order reranked result first:\n%s", out)
	}
}
