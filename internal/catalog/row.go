// Package catalog defines the typed catalog row model and the normalization
// applied at the ingest boundary: price and rating coercion, identifier
// assignment, and the reduced RAG-ready projection written between the
// feature-extraction and indexing stages. Rows are validated and normalized
// here only — downstream packages never see raw free-text fields.
package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Row is a single raw record from the source catalog CSV. All fields are
// optional free text exactly as they appear in the file; normalization
// happens via the Parse* helpers and EnsureID, never in place on the raw
// string fields.
type Row struct {
	// UniqID is the pre-existing product identifier, empty if absent.
	UniqID string

	// ProductName is the product title.
	ProductName string

	// ProductDescription is the primary long-form description.
	ProductDescription string

	// Description is the secondary description, used when ProductDescription
	// is absent.
	Description string

	// ProductInformation is the structured specification blob.
	ProductInformation string

	// Price is the free-text price string (e.g. "£12,345.67").
	Price string

	// AverageReviewRating is the free-text rating (e.g. "4.9 out of 5 stars").
	AverageReviewRating string

	// CustomerReviews is the concatenated review text.
	CustomerReviews string
}

// HasRAGContent reports whether the row carries at least one field that can
// contribute to a RAG document. Rows with none are dropped before any other
// stage sees them.
func (r Row) HasRAGContent() bool {
	for _, f := range []string{
		r.ProductName,
		r.ProductDescription,
		r.Description,
		r.ProductInformation,
		r.Price,
		r.AverageReviewRating,
		r.CustomerReviews,
	} {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}
	return false
}

// EnsureID returns the row's identifier, generating a fresh UUID when the
// row has no non-empty one. Re-running ingest on a row that already carries
// an identifier never changes it.
func (r Row) EnsureID() string {
	if id := strings.TrimSpace(r.UniqID); id != "" {
		return id
	}
	return uuid.NewString()
}

// priceStripRe matches currency symbols, thousands separators, and spaces.
// The "Â£" sequence is the UTF-8 pound sign read through a latin-1 lens —
// the source dataset contains it verbatim, so it is stripped too.
var priceStripRe = regexp.MustCompile(`[Â£$€,\s]`)

// ParsePrice strips currency symbols and thousands separators from a
// free-text price and coerces the remainder to a float. Unparseable values
// are reported as missing (ok=false), never as an error.
func ParsePrice(s string) (float64, bool) {
	cleaned := priceStripRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ratingRe extracts the leading numeric token from rating text such as
// "4.9 out of 5 stars".
var ratingRe = regexp.MustCompile(`[\d.]+`)

// ParseRating extracts the first numeric token from free-text rating copy.
// Unparseable values are reported as missing (ok=false).
func ParseRating(s string) (float64, bool) {
	m := ratingRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
