package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Document is the RAG-ready projection of a catalog row, written by the
// feature-extraction pipeline and read back by the indexing pipeline.
// Price and Rating are nil when the source value was unparseable.
type Document struct {
	// UniqID is the stable product identifier.
	UniqID string

	// ProductName is the product title.
	ProductName string

	// Price is the normalized price, nil if missing.
	Price *float64

	// Rating is the normalized rating in [0, 5], nil if missing.
	Rating *float64

	// CustomerReviews is the raw review text carried through to the payload.
	CustomerReviews string

	// RAGDocument is the cleaned markdown document used for embedding and
	// retrieval.
	RAGDocument string
}

// docHeader is the fixed column order of the RAG-docs projection file.
var docHeader = []string{"uniq_id", "product_name", "price", "rating", "customer_reviews", "rag_document"}

// ReadRows reads the raw catalog CSV at path. Columns are resolved by header
// name; unknown columns are ignored and missing ones read as empty strings,
// so the reader tolerates dataset variants.
func ReadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog: read header of %s: %w", path, err)
	}
	idx := headerIndex(header)

	var rows []Row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		rows = append(rows, Row{
			UniqID:              field(rec, idx, "uniq_id"),
			ProductName:         field(rec, idx, "product_name"),
			ProductDescription:  field(rec, idx, "product_description"),
			Description:         field(rec, idx, "description"),
			ProductInformation:  field(rec, idx, "product_information"),
			Price:               field(rec, idx, "price"),
			AverageReviewRating: field(rec, idx, "average_review_rating"),
			CustomerReviews:     field(rec, idx, "customer_reviews"),
		})
	}
	return rows, nil
}

// ReadDocuments reads a RAG-docs projection file produced by WriteDocuments.
func ReadDocuments(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog: read header of %s: %w", path, err)
	}
	idx := headerIndex(header)

	var docs []Document
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		docs = append(docs, Document{
			UniqID:          field(rec, idx, "uniq_id"),
			ProductName:     field(rec, idx, "product_name"),
			Price:           parseOptFloat(field(rec, idx, "price")),
			Rating:          parseOptFloat(field(rec, idx, "rating")),
			CustomerReviews: field(rec, idx, "customer_reviews"),
			RAGDocument:     field(rec, idx, "rag_document"),
		})
	}
	return docs, nil
}

// WriteDocuments writes the RAG-docs projection to path, overwriting any
// existing file. Missing price/rating values are written as empty cells.
func WriteDocuments(path string, docs []Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("catalog: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(docHeader); err != nil {
		return fmt.Errorf("catalog: write header: %w", err)
	}
	for _, d := range docs {
		rec := []string{
			d.UniqID,
			d.ProductName,
			formatOptFloat(d.Price),
			formatOptFloat(d.Rating),
			d.CustomerReviews,
			d.RAGDocument,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("catalog: write record %s: %w", d.UniqID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("catalog: flush %s: %w", path, err)
	}
	return nil
}

// headerIndex maps lowercased, trimmed column names to positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// field returns the named column of rec, or "" when the column is absent
// from the header or the record is short.
func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// parseOptFloat parses an optional float cell; empty or malformed cells are nil.
func parseOptFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// formatOptFloat renders an optional float cell; nil becomes the empty cell.
func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
