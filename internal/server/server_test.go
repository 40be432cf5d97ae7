package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/smartfind/smartfind-go/internal/store"
)

// fakeSearcher is a test double for the searcher interface.
type fakeSearcher struct {
	// report is returned by Search on success.
	report string
	// err is returned by Search; nil means success.
	err error
	// gotQuery records the last query passed to Search.
	gotQuery string
	// gotReranker and gotTags record the last toggle values.
	gotReranker bool
	gotTags     bool
}

func (f *fakeSearcher) Search(_ context.Context, query string, useReranker, useTags bool) (string, error) {
	f.gotQuery = query
	f.gotReranker = useReranker
	f.gotTags = useTags
	if f.err != nil {
		return "", f.err
	}
	return f.report, nil
}

// newTestServer builds a *Server with a fake searcher and a fresh isolated
// metrics registry so tests never pollute prometheus.DefaultRegisterer.
func newTestServer() *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		searcher: &fakeSearcher{report: "## Report"},
		cfg: &Config{
			SearchTimeout:   time.Minute,
			MetricsRegistry: reg,
			MetricsGatherer: reg,
		},
		metrics: newServerMetrics(reg),
	}
}

func postSearch(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.handleSearch(w, req)
	return w
}

func TestHandleSearch_OK(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	fake := s.searcher.(*fakeSearcher)

	w := postSearch(t, s, `{"query":"lego for kids","use_reranker":true,"use_tags":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", w.Code, w.Body.String())
	}
	var resp searchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Report != "## Report" {
		t.Errorf("report: got %q", resp.Report)
	}
	if fake.gotQuery != "lego for kids" {
		t.Errorf("query: got %q", fake.gotQuery)
	}
	if !fake.gotReranker || !fake.gotTags {
		t.Errorf("toggles: got reranker=%v tags=%v", fake.gotReranker, fake.gotTags)
	}
}

func TestHandleSearch_InvalidBody(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	w := postSearch(t, s, `{not json`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleSearch_EmptyQuery(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	w := postSearch(t, s, `{"query":""}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// TestHandleSearch_PipelineErrorIsGeneric verifies that pipeline failures
// produce a 500 with a generic message — dependency error detail must never
// reach the client.
func TestHandleSearch_PipelineErrorIsGeneric(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.searcher = &fakeSearcher{err: errors.New("qdrant at 10.1.2.3:6334 refused connection")}

	w := postSearch(t, s, `{"query":"headphones"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "qdrant") || strings.Contains(body, "10.1.2.3") {
		t.Errorf("error detail leaked to client: %q", body)
	}
	if !strings.Contains(body, "please try again") {
		t.Errorf("expected generic failure message, got %q", body)
	}
}

func TestHandleSearch_PersistsHistory(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	hs, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() { _ = hs.Close() })
	s.history = hs

	w := postSearch(t, s, `{"query":"running shoes","use_tags":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	recs, err := hs.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(recs))
	}
	if recs[0].Query != "running shoes" || !recs[0].UsedTags || recs[0].UsedReranker {
		t.Errorf("record mismatch: %+v", recs[0])
	}
}

func TestHandleHistory_NoStore(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()

	s.handleHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp historyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Searches) != 0 {
		t.Errorf("expected empty history, got %d entries", len(resp.Searches))
	}
}

func TestHandleHistory_InvalidLimit(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=zero", nil)
	w := httptest.NewRecorder()

	s.handleHistory(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleHistory_ReturnsRecords(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	hs, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() { _ = hs.Close() })
	s.history = hs

	rec := store.SearchRecord{Query: "usb-c hub", Report: "## Report", UsedReranker: true}
	if err := hs.Append(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()
	s.handleHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp historyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Searches) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(resp.Searches))
	}
	got := resp.Searches[0]
	if got.Query != "usb-c hub" || !got.UsedReranker || got.UsedTags {
		t.Errorf("entry mismatch: %+v", got)
	}
	if got.CreatedAt == "" {
		t.Error("expected created_at to be populated")
	}
}
