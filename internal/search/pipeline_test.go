package search

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/smartfind/smartfind-go/internal/llm"
	"github.com/smartfind/smartfind-go/internal/rag"
	"github.com/smartfind/smartfind-go/internal/reranker"
)

// scriptedChat answers tagging and synthesis calls by system prompt and
// records every call it sees.
type scriptedChat struct {
	tagsReply   string
	reportReply string
	systems     []string
}

func (c *scriptedChat) Chat(_ context.Context, system, _ string) llm.Reply {
	c.systems = append(c.systems, system)
	if system == llm.QueryTaggingPrompt {
		return llm.Reply{Text: c.tagsReply}
	}
	return llm.Reply{Text: c.reportReply}
}

type stubEmbedder struct {
	embeddings [][]float32
	err        error
	gotTexts   []string
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.gotTexts = texts
	return s.embeddings, s.err
}

// stubStore records the search arguments and whether it was closed.
type stubStore struct {
	results   []rag.Result
	err       error
	gotVector []float32
	gotTags   []string
	gotTopK   int
	closed    bool
}

func (s *stubStore) Upsert(context.Context, []rag.Product, [][]float32) error { return nil }

func (s *stubStore) Search(_ context.Context, vec []float32, filterTags []string, topK int) ([]rag.Result, error) {
	s.gotVector = vec
	s.gotTags = filterTags
	s.gotTopK = topK
	return s.results, s.err
}

func (s *stubStore) Close() error {
	s.closed = true
	return nil
}

type stubReranker struct {
	rankings []reranker.Ranking
	called   bool
}

func (s *stubReranker) Rerank(_ context.Context, _ string, docs []string) ([]reranker.Ranking, error) {
	s.called = true
	return s.rankings, nil
}

func newTestPipeline(t *testing.T, chat *scriptedChat, emb *stubEmbedder, store *stubStore, svc reranker.Service) *Pipeline {
	t.Helper()
	p, err := New(&Config{
		Chat:     chat,
		Embedder: emb,
		OpenStore: func(context.Context) (rag.VectorStore, error) {
			return store, nil
		},
		Reranker: svc,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func Test_New_Validation(t *testing.T) {
	t.Parallel()

	chat := &scriptedChat{}
	emb := &stubEmbedder{}
	opener := func(context.Context) (rag.VectorStore, error) { return &stubStore{}, nil }

	tests := []struct {
		name string
		cfg  Config
	}{
		{"nil chat", Config{Embedder: emb, OpenStore: opener}},
		{"nil embedder", Config{Chat: chat, OpenStore: opener}},
		{"nil opener", Config{Chat: chat, Embedder: emb}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(&tc.cfg); err == nil {
				t.Error("expected constructor error, got nil")
			}
		})
	}

	p, err := New(&Config{Chat: chat, Embedder: emb, OpenStore: opener})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.topK != defaultTopK {
		t.Errorf("topK = %d, want default %d", p.topK, defaultTopK)
	}
}

func Test_Search_FullPipeline(t *testing.T) {
	t.Parallel()

	chat := &scriptedChat{
		tagsReply:   `{"tags": ["lego", "building"]}`,
		reportReply: "## Report\nGet the lego set.",
	}
	emb := &stubEmbedder{embeddings: [][]float32{{0.1, 0.2, 0.3}}}
	store := &stubStore{results: []rag.Result{
		{Document: "Lego classic box", VectorScore: 0.9},
	}}

	p := newTestPipeline(t, chat, emb, store, nil)

	got, err := p.Search(context.Background(), "lego for a 6 year old", false, true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != "## Report\nGet the lego set." {
		t.Errorf("report = %q", got)
	}

	if !reflect.DeepEqual(emb.gotTexts, []string{"lego for a 6 year old"}) {
		t.Errorf("embedder saw %v, want the raw query", emb.gotTexts)
	}
	if !reflect.DeepEqual(store.gotTags, []string{"lego", "building"}) {
		t.Errorf("store filter tags = %v", store.gotTags)
	}
	if store.gotTopK != defaultTopK {
		t.Errorf("topK = %d, want %d", store.gotTopK, defaultTopK)
	}
	if !store.closed {
		t.Error("store was not closed after the query")
	}

	// Tagging first, synthesis last.
	if len(chat.systems) != 2 || chat.systems[0] != llm.QueryTaggingPrompt || chat.systems[1] != llm.ResearchReportPrompt {
		t.Errorf("chat call order = %v", chat.systems)
	}
}

func Test_Search_TagsDisabled(t *testing.T) {
	t.Parallel()

	chat := &scriptedChat{reportReply: "report"}
	store := &stubStore{}
	p := newTestPipeline(t, chat, &stubEmbedder{embeddings: [][]float32{{0.5}}}, store, nil)

	if _, err := p.Search(context.Background(), "anything", false, false); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if store.gotTags != nil {
		t.Errorf("filter tags = %v, want nil for unrestricted search", store.gotTags)
	}
	if len(chat.systems) != 1 || chat.systems[0] != llm.ResearchReportPrompt {
		t.Errorf("chat calls = %v, want synthesis only", chat.systems)
	}
}

func Test_Search_RerankerToggle(t *testing.T) {
	t.Parallel()

	store := &stubStore{results: []rag.Result{
		{Document: "doc a", VectorScore: 0.9},
		{Document: "doc b", VectorScore: 0.8},
	}}
	svc := &stubReranker{rankings: []reranker.Ranking{
		{Index: 1, Relevance: 0.99},
		{Index: 0, Relevance: 0.10},
	}}

	chat := &scriptedChat{reportReply: "report"}
	p := newTestPipeline(t, chat, &stubEmbedder{embeddings: [][]float32{{0.5}}}, store, svc)

	if _, err := p.Search(context.Background(), "query", false, false); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if svc.called {
		t.Error("reranker was called with useReranker=false")
	}

	if _, err := p.Search(context.Background(), "query", true, false); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !svc.called {
		t.Error("reranker was not called with useReranker=true")
	}
}

func Test_Retrieve_RecleansDocuments(t *testing.T) {
	t.Parallel()

	dirty := "Great toy.\namznJQ.onReady('x', function() { y(); }));\nKids love it."
	store := &stubStore{results: []rag.Result{{Document: dirty, VectorScore: 0.9}}}
	p := newTestPipeline(t, &scriptedChat{}, &stubEmbedder{embeddings: [][]float32{{0.5}}}, store, nil)

	results, err := p.Retrieve(context.Background(), "query", nil)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if strings.Contains(results[0].Document, "amznJQ") {
		t.Errorf("document not re-cleaned: %q", results[0].Document)
	}
}

func Test_Retrieve_ErrorPaths(t *testing.T) {
	t.Parallel()

	t.Run("store opener fails", func(t *testing.T) {
		t.Parallel()
		p, err := New(&Config{
			Chat:     &scriptedChat{},
			Embedder: &stubEmbedder{embeddings: [][]float32{{0.5}}},
			OpenStore: func(context.Context) (rag.VectorStore, error) {
				return nil, errors.New("connection refused")
			},
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, err := p.Retrieve(context.Background(), "q", nil); err == nil {
			t.Error("expected store acquisition error")
		}
	})

	t.Run("embedder returns no vector", func(t *testing.T) {
		t.Parallel()
		store := &stubStore{}
		p := newTestPipeline(t, &scriptedChat{}, &stubEmbedder{}, store, nil)
		if _, err := p.Retrieve(context.Background(), "q", nil); err == nil {
			t.Error("expected error for empty embedding batch")
		}
		if !store.closed {
			t.Error("store must be closed on the error path")
		}
	})

	t.Run("vector search fails", func(t *testing.T) {
		t.Parallel()
		store := &stubStore{err: errors.New("collection not found")}
		p := newTestPipeline(t, &scriptedChat{}, &stubEmbedder{embeddings: [][]float32{{0.5}}}, store, nil)
		if _, err := p.Retrieve(context.Background(), "q", nil); err == nil {
			t.Error("expected search error")
		}
		if !store.closed {
			t.Error("store must be closed on the error path")
		}
	})
}
