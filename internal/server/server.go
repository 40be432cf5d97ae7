// Package server implements the HTTP server that exposes the product search
// pipeline via a small REST API: search, history, health, readiness, and
// Prometheus metrics. The server is started by the `smartfind serve` CLI
// command.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartfind/smartfind-go/internal/logging"
	"github.com/smartfind/smartfind-go/internal/store"
)

// defaultHistoryLimit is the number of records returned by GET /api/history
// when no explicit limit is requested.
const defaultHistoryLimit = 20

// New constructs a Server from the provided searcher, history store, and
// config. history may be nil to disable persistence.
func New(s searcher, history store.HistoryStore, cfg *Config) (*Server, error) {
	if s == nil {
		return nil, fmt.Errorf("server: searcher must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must cover retrieval plus LLM synthesis.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = 3 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}
	if cfg.MetricsRegistry == nil {
		reg := prometheus.NewRegistry()
		cfg.MetricsRegistry = reg
		if cfg.MetricsGatherer == nil {
			cfg.MetricsGatherer = reg
		}
	}

	srv := &Server{
		searcher: s,
		history:  history,
		cfg:      cfg,
		log:      log,
		pingers:  cfg.Pingers,
		metrics:  newServerMetrics(cfg.MetricsRegistry),
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, log)
	srv.stopRL = stopRL

	if cfg.APIKey == "" {
		log.Warn("server: SMARTFIND_API_KEY not set — API authentication disabled")
	}

	protect := func(name string, h http.HandlerFunc) http.Handler {
		return authMiddleware(cfg.APIKey, rl.middleware(srv.instrument(name, h)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/search", protect("search", srv.handleSearch))
	mux.Handle("GET /api/history", protect("history", srv.handleHistory))
	mux.Handle("GET /api/health", srv.instrument("health", http.HandlerFunc(srv.handleHealth)))
	mux.Handle("GET /api/ready", srv.instrument("ready", http.HandlerFunc(srv.handleReady)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))

	srv.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(log, recoverer(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return srv, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	defer s.stopRL()

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", "http://"+s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleSearch handles POST /api/search. It runs the full query pipeline and
// returns the markdown report. Pipeline failures are logged with detail but
// the client only ever sees a generic message — stack traces and dependency
// errors never leave the process.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.SearchTimeout)
	defer cancel()

	start := time.Now()
	report, err := s.searcher.Search(ctx, req.Query, req.UseReranker, req.UseTags)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if ctx.Err() == context.DeadlineExceeded {
			outcome = "timeout"
		}
	}
	s.metrics.searchRequestsTotal.WithLabelValues(outcome).Inc()
	s.metrics.searchDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())

	if err != nil {
		log.Error("search failed",
			slog.String("query", req.Query),
			slog.Duration("duration", elapsed),
			slog.Any("error", err),
		)
		http.Error(w, "search failed, please try again later", http.StatusInternalServerError)
		return
	}

	if s.history != nil {
		rec := store.SearchRecord{
			Query:        req.Query,
			UsedTags:     req.UseTags,
			UsedReranker: req.UseReranker,
			Report:       report,
		}
		if err := s.history.Append(r.Context(), rec); err != nil {
			log.Warn("history: append failed", slog.Any("error", err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(searchResponse{Report: report}); err != nil {
		log.Error("search encode error", slog.Any("error", err))
	}
}

// handleHistory handles GET /api/history. The optional ?limit= parameter
// caps the number of records returned (default 20). With no history store
// configured the endpoint returns an empty list rather than an error.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	resp := historyResponse{Searches: []historyEntry{}}
	if s.history != nil {
		recs, err := s.history.Recent(r.Context(), limit)
		if err != nil {
			log.Error("history: recent failed", slog.Any("error", err))
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		for _, rec := range recs {
			resp.Searches = append(resp.Searches, historyEntry{
				Query:        rec.Query,
				UsedTags:     rec.UsedTags,
				UsedReranker: rec.UsedReranker,
				Report:       rec.Report,
				CreatedAt:    rec.CreatedAt.Format(time.RFC3339),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("history encode error", slog.Any("error", err))
	}
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
