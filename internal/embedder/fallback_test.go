package embedder

import (
	"context"
	"errors"
	"testing"
)

// stubEmbedder returns canned embeddings or a canned error.
type stubEmbedder struct {
	embeddings [][]float32
	err        error
	gotTexts   []string
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.gotTexts = texts
	return s.embeddings, s.err
}

func Test_Fallback_PassesThroughOnSuccess(t *testing.T) {
	t.Parallel()

	want := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	stub := &stubEmbedder{embeddings: want}
	f := NewFallback(stub, 2)

	got, err := f.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 2 || got[0][0] != 0.1 || got[1][1] != 0.4 {
		t.Errorf("embeddings not passed through: %v", got)
	}
	if len(stub.gotTexts) != 2 {
		t.Errorf("inner embedder saw %d texts, want 2", len(stub.gotTexts))
	}
}

func Test_Fallback_SubstitutesZeroVectorsOnError(t *testing.T) {
	t.Parallel()

	stub := &stubEmbedder{err: errors.New("dial tcp: connection refused")}
	f := NewFallback(stub, 4)

	got, err := f.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Embed should swallow inner errors, got: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d vectors, want 3", len(got))
	}
	for i, vec := range got {
		if len(vec) != 4 {
			t.Fatalf("vector %d has %d dims, want 4", i, len(vec))
		}
		for j, v := range vec {
			if v != 0 {
				t.Errorf("vector %d[%d] = %v, want 0", i, j, v)
			}
		}
	}
}

func Test_Fallback_EmptyBatch(t *testing.T) {
	t.Parallel()

	f := NewFallback(&stubEmbedder{err: errors.New("boom")}, 8)
	got, err := f.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d vectors for empty batch, want 0", len(got))
	}
}
