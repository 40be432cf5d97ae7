package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartfind/smartfind-go/internal/catalog"
)

func Test_ExtractFeatures(t *testing.T) {
	t.Parallel()

	input := filepath.Join(t.TempDir(), "products.csv")
	csv := `uniq_id,product_name,product_description,price,average_review_rating,customer_reviews
p-1,Wooden Blocks,Classic stacking blocks,£24.99,4.7 out of 5 stars,Kids love them
p-2,,,,,
p-3,Toy Car,"Die-cast racer
amznJQ.onReady('x', function() { y(); }));",not a price,,Fast and fun
`
	if err := os.WriteFile(input, []byte(csv), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	output := filepath.Join(t.TempDir(), "documents.csv")

	n, err := ExtractFeatures(context.Background(), input, output)
	if err != nil {
		t.Fatalf("ExtractFeatures: %v", err)
	}
	if n != 2 {
		t.Fatalf("wrote %d documents, want 2 (blank row dropped)", n)
	}

	docs, err := catalog.ReadDocuments(output)
	if err != nil {
		t.Fatalf("ReadDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("read back %d documents, want 2", len(docs))
	}

	first := docs[0]
	if first.UniqID != "p-1" || first.ProductName != "Wooden Blocks" {
		t.Errorf("first doc identity = %q/%q", first.UniqID, first.ProductName)
	}
	if first.Price == nil || *first.Price != 24.99 {
		t.Errorf("first doc price = %v, want 24.99", first.Price)
	}
	if first.Rating == nil || *first.Rating != 4.7 {
		t.Errorf("first doc rating = %v, want 4.7", first.Rating)
	}
	if !strings.Contains(first.RAGDocument, "### Product Name\nWooden Blocks") {
		t.Errorf("first doc missing name section:\n%s", first.RAGDocument)
	}
	if !strings.Contains(first.RAGDocument, "### Description\nClassic stacking blocks") {
		t.Errorf("first doc missing description section:\n%s", first.RAGDocument)
	}

	// Unparseable price and absent rating read back as missing; the embedded
	// script is cleaned out of the document.
	second := docs[1]
	if second.UniqID != "p-3" {
		t.Errorf("second doc = %q, want p-3", second.UniqID)
	}
	if second.Price != nil || second.Rating != nil {
		t.Errorf("second doc price/rating = %v/%v, want nil/nil", second.Price, second.Rating)
	}
	if strings.Contains(second.RAGDocument, "amznJQ") {
		t.Errorf("second doc not cleaned:\n%s", second.RAGDocument)
	}
}

func Test_ExtractFeatures_GeneratesMissingIDs(t *testing.T) {
	t.Parallel()

	input := filepath.Join(t.TempDir(), "products.csv")
	csv := `uniq_id,product_name
,Kite
`
	if err := os.WriteFile(input, []byte(csv), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	output := filepath.Join(t.TempDir(), "documents.csv")

	if _, err := ExtractFeatures(context.Background(), input, output); err != nil {
		t.Fatalf("ExtractFeatures: %v", err)
	}
	docs, err := catalog.ReadDocuments(output)
	if err != nil {
		t.Fatalf("ReadDocuments: %v", err)
	}
	if len(docs) != 1 || docs[0].UniqID == "" {
		t.Errorf("expected one document with a generated identifier, got %+v", docs)
	}
}

func Test_ExtractFeatures_MissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := ExtractFeatures(context.Background(),
		filepath.Join(dir, "nope.csv"), filepath.Join(dir, "out.csv"))
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}
