package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/smartfind/smartfind-go/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	// Must cover the full search pipeline including LLM synthesis.
	WriteTimeout time.Duration
	// SearchTimeout bounds the end-to-end pipeline run per request.
	SearchTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// MetricsRegistry receives the server's Prometheus metrics. If nil, a
	// fresh registry is created.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer serves GET /metrics. If nil and MetricsRegistry was
	// nil, the fresh registry is used for both.
	MetricsGatherer prometheus.Gatherer
}

// searcher is the interface handleSearch calls to run the query pipeline.
// *search.Pipeline satisfies it; tests inject a fake.
type searcher interface {
	// Search runs the full query pipeline and returns the markdown report.
	Search(ctx context.Context, query string, useReranker, useTags bool) (string, error)
}

// Server is the HTTP server that exposes the product search pipeline.
type Server struct {
	// searcher runs the query pipeline for POST /api/search.
	searcher searcher
	// history persists completed searches. Nil disables persistence and the
	// /api/history endpoint returns an empty list.
	history store.HistoryStore
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
	// metrics holds all Prometheus metrics owned by this server instance.
	metrics *serverMetrics
}

// searchRequest is the JSON body for POST /api/search.
type searchRequest struct {
	// Query is the user's natural language product query.
	Query string `json:"query"`
	// UseReranker enables the cross-encoder rerank pass.
	UseReranker bool `json:"use_reranker"`
	// UseTags enables query tag extraction and metadata filtering.
	UseTags bool `json:"use_tags"`
}

// searchResponse is the JSON response for POST /api/search.
type searchResponse struct {
	// Report is the generated markdown research report.
	Report string `json:"report"`
}

// historyEntry is one record in the GET /api/history response.
type historyEntry struct {
	// Query is the search query text.
	Query string `json:"query"`
	// UsedTags reports whether tag filtering was enabled.
	UsedTags bool `json:"used_tags"`
	// UsedReranker reports whether the rerank pass ran.
	UsedReranker bool `json:"used_reranker"`
	// Report is the generated markdown report.
	Report string `json:"report"`
	// CreatedAt is the RFC3339 timestamp of the search.
	CreatedAt string `json:"created_at"`
}

// historyResponse is the JSON response for GET /api/history.
type historyResponse struct {
	// Searches is the list of past searches, newest-first.
	Searches []historyEntry `json:"searches"`
}
