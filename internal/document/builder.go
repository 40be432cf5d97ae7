// Package document builds and cleans the markdown RAG documents that are
// embedded at ingest time and rendered at query time. Building concatenates
// the present catalog fields in a fixed order; cleaning strips the embedded
// scripting and storefront boilerplate the source dataset carries. Both
// transforms are pure, and Clean is idempotent.
package document

import (
	"strings"

	"github.com/smartfind/smartfind-go/internal/catalog"
)

// Build renders a catalog row as a markdown document. Sections appear in a
// fixed order — product name, description, product information — and absent
// fields are omitted entirely, including their headings. The description
// section falls back to the secondary description field when the primary
// one is empty.
func Build(row catalog.Row) string {
	var sections []string

	if name := strings.TrimSpace(row.ProductName); name != "" {
		sections = append(sections, "### Product Name\n"+name)
	}

	desc := strings.TrimSpace(row.ProductDescription)
	if desc == "" {
		desc = strings.TrimSpace(row.Description)
	}
	if desc != "" {
		sections = append(sections, "### Description\n"+desc)
	}

	if info := strings.TrimSpace(row.ProductInformation); info != "" {
		sections = append(sections, "### Product Information\n"+info)
	}

	return strings.Join(sections, "\n\n")
}
