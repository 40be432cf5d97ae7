// Package embedder converts catalog documents and user queries into the
// dense vectors stored and searched in Qdrant. The OpenAI, Azure OpenAI, and
// Ollama clients speak each backend's embeddings REST API directly over
// plain HTTP, and the Fallback wrapper layers the zero-vector degradation
// policy on top so an embedding outage never takes down a pipeline run.
package embedder

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// openaiTimeout bounds each embeddings call. Batches are small (one catalog
// page or a single query), so a slow call indicates backend trouble.
const openaiTimeout = 30 * time.Second

// OpenAIEmbedder embeds text batches through the OpenAI or Azure OpenAI
// embeddings endpoint. Safe for concurrent use.
type OpenAIEmbedder struct {
	// baseURL is the API base, e.g. "https://api.openai.com/v1" or the
	// Azure resource's "/openai" root.
	baseURL string
	// apiKey authenticates the call: Bearer token for OpenAI, api-key
	// header for Azure.
	apiKey string
	// model is the embedding model, e.g. "text-embedding-3-small".
	model string
	// dimensions requests a reduced vector size; 0 keeps the model default.
	// Must agree with the Qdrant collection size.
	dimensions int
	// azure switches the URL scheme and auth header to Azure conventions.
	azure bool
	// apiVersion is the Azure api-version query parameter.
	apiVersion string
	client     *http.Client
}

// OpenAIConfig holds the settings for constructing an OpenAIEmbedder.
type OpenAIConfig struct {
	// BaseURL is the API base URL. For OpenAI: "https://api.openai.com/v1".
	// For Azure: "https://<resource>.openai.azure.com/openai".
	BaseURL string
	// APIKey is the authentication key.
	APIKey string
	// Model is the embedding model name.
	Model string
	// Dimensions is the requested vector length; 0 keeps the model default.
	Dimensions int
	// Azure enables Azure OpenAI mode (api-key header + api-version param).
	Azure bool
	// APIVersion is the Azure OpenAI API version. Ignored when Azure is false.
	APIVersion string
}

// NewOpenAIEmbedder constructs an OpenAIEmbedder from the given config.
func NewOpenAIEmbedder(cfg *OpenAIConfig) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		azure:      cfg.Azure,
		apiVersion: cfg.APIVersion,
		client:     &http.Client{Timeout: openaiTimeout},
	}
}

type openaiEmbedRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed converts a batch of texts into their embeddings. The returned slice
// is parallel to the input: the API is free to return entries out of order,
// so each vector is placed by its index field.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := openaiEmbedRequest{Input: texts, Model: e.model}
	if e.dimensions > 0 {
		reqBody.Dimensions = e.dimensions
	}

	url := e.baseURL + "/embeddings"
	header := http.Header{}
	if e.azure {
		url = e.baseURL + "/deployments/" + e.model + "/embeddings?api-version=" + e.apiVersion
		header.Set("api-key", e.apiKey)
	} else {
		header.Set("Authorization", "Bearer "+e.apiKey)
	}

	var result openaiEmbedResponse
	status, err := postJSON(ctx, e.client, url, header, reqBody, &result)
	if err != nil {
		return nil, fmt.Errorf("openai embedder: %w", err)
	}
	if !ok(status) {
		msg := fmt.Sprintf("HTTP %d", status)
		if result.Error != nil {
			msg = result.Error.Message
		}
		return nil, fmt.Errorf("openai embedder: %s", msg)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("openai embedder: expected %d embeddings, got %d", len(texts), len(result.Data))
	}

	embeddings := make([][]float32, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("openai embedder: index %d out of range [0, %d)", d.Index, len(texts))
		}
		embeddings[d.Index] = d.Embedding
	}
	return embeddings, nil
}
