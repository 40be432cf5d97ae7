package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// defaultCohereBaseURL is the Cohere API base.
const defaultCohereBaseURL = "https://api.cohere.com"

// defaultCohereModel is the cross-encoder rerank model.
const defaultCohereModel = "rerank-v3.5"

// CohereReranker implements Service using the Cohere v2 rerank REST API.
// It is safe for concurrent use.
type CohereReranker struct {
	// baseURL is the API base (default: https://api.cohere.com).
	baseURL string
	// apiKey is the Bearer token.
	apiKey string
	// model is the rerank model name (e.g. "rerank-v3.5").
	model string
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// CohereConfig holds the settings for constructing a CohereReranker.
type CohereConfig struct {
	// BaseURL overrides the API base URL. Empty selects the public API.
	BaseURL string
	// APIKey is the Cohere API key.
	APIKey string
	// Model is the rerank model name. Empty selects rerank-v3.5.
	Model string
}

// NewCohereReranker constructs a CohereReranker from the given config.
func NewCohereReranker(cfg *CohereConfig) *CohereReranker {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultCohereBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultCohereModel
	}
	return &CohereReranker{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// cohereRerankRequest is the JSON body sent to the v2/rerank endpoint.
type cohereRerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

// cohereRerankResponse is the JSON body returned from the v2/rerank endpoint.
type cohereRerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
	Message string `json:"message,omitempty"`
}

// Rerank requests a full relevance ordering over all candidate documents
// (top_n equals the candidate count) and maps the response onto Rankings.
func (c *CohereReranker) Rerank(ctx context.Context, query string, documents []string) ([]Ranking, error) {
	body := cohereRerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: documents,
		TopN:      len(documents),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("cohere reranker: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/rerank", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("cohere reranker: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cohere reranker: request failed: %w", err)
	}
	defer resp.Body.Close()

	var result cohereRerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("cohere reranker: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Message != "" {
			msg = result.Message
		}
		return nil, fmt.Errorf("cohere reranker: %s", msg)
	}

	rankings := make([]Ranking, 0, len(result.Results))
	for _, r := range result.Results {
		rankings = append(rankings, Ranking{Index: r.Index, Relevance: r.RelevanceScore})
	}

	return rankings, nil
}
