// Package ingestion implements the offline catalog pipelines. Feature
// extraction turns the raw catalog CSV into a cleaned RAG document CSV;
// the indexing pipeline tags, embeds, and upserts those documents into the
// vector store. Both are invoked by the `smartfind` CLI.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smartfind/smartfind-go/internal/catalog"
	"github.com/smartfind/smartfind-go/internal/document"
	"github.com/smartfind/smartfind-go/internal/logging"
)

// ExtractFeatures reads the raw catalog CSV at inputPath, drops rows missing
// any retrieval-relevant field, builds and cleans a RAG document per
// surviving row, and writes the document CSV to outputPath. It returns the
// number of documents written.
//
// A missing or unreadable input file fails fast — the raw catalog is the
// one artifact the pipeline cannot degrade around. Row-level problems
// (unparseable price or rating) never fail the run; those fields are simply
// recorded as absent.
func ExtractFeatures(ctx context.Context, inputPath, outputPath string) (int, error) {
	log := logging.FromContext(ctx)

	rows, err := catalog.ReadRows(inputPath)
	if err != nil {
		return 0, fmt.Errorf("ingestion: reading catalog: %w", err)
	}
	log.Info("ingestion: loaded catalog rows", slog.Int("count", len(rows)))

	docs := make([]catalog.Document, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		if !row.HasRAGContent() {
			dropped++
			continue
		}

		doc := catalog.Document{
			UniqID:          row.EnsureID(),
			ProductName:     row.ProductName,
			CustomerReviews: row.CustomerReviews,
			RAGDocument:     document.Clean(document.Build(row)),
		}
		if price, ok := catalog.ParsePrice(row.Price); ok {
			doc.Price = &price
		}
		if rating, ok := catalog.ParseRating(row.AverageReviewRating); ok {
			doc.Rating = &rating
		}
		docs = append(docs, doc)
	}

	if err := catalog.WriteDocuments(outputPath, docs); err != nil {
		return 0, fmt.Errorf("ingestion: writing documents: %w", err)
	}

	log.Info("ingestion: wrote document CSV",
		slog.String("path", outputPath),
		slog.Int("written", len(docs)),
		slog.Int("dropped", dropped),
	)
	return len(docs), nil
}
