package rag

import "testing"

func TestTagFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tags     []string
		wantNil  bool
		wantTags []string
	}{
		{"nil list", nil, true, nil},
		{"empty list", []string{}, true, nil},
		{"blank entries only", []string{"", "   "}, true, nil},
		{"normalized conditions", []string{" LEGO ", "building"}, false, []string{"lego", "building"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := TagFilter(tc.tags)
			if tc.wantNil {
				if f != nil {
					t.Fatalf("TagFilter(%v) = %v, want nil (unrestricted)", tc.tags, f)
				}
				return
			}
			if f == nil {
				t.Fatal("expected a filter, got nil")
			}
			if len(f.Should) != len(tc.wantTags) {
				t.Fatalf("got %d conditions, want %d", len(f.Should), len(tc.wantTags))
			}
			for i, cond := range f.Should {
				field := cond.GetField()
				if field == nil {
					t.Fatalf("condition %d is not a field match", i)
				}
				if field.Key != "tags" {
					t.Errorf("condition %d key = %q, want tags", i, field.Key)
				}
				if got := field.GetMatch().GetKeyword(); got != tc.wantTags[i] {
					t.Errorf("condition %d keyword = %q, want %q", i, got, tc.wantTags[i])
				}
			}
		})
	}
}

func TestResult_BestScore(t *testing.T) {
	t.Parallel()

	plain := Result{VectorScore: 0.42}
	if got := plain.BestScore(); got != 0.42 {
		t.Errorf("BestScore without relevance = %v, want vector score", got)
	}

	reranked := plain.WithRelevance(0.9)
	if got := reranked.BestScore(); got != 0.9 {
		t.Errorf("BestScore with relevance = %v, want relevance", got)
	}
	if plain.Relevance != nil {
		t.Error("WithRelevance must not mutate the receiver")
	}
}

// Compile-time check that the store satisfies the VectorStore contract.
var _ VectorStore = (*QdrantStore)(nil)
