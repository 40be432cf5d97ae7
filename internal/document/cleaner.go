package document

import (
	"regexp"
	"strings"
)

// Cleaning passes, in application order. Order matters: blank-line collapsing
// runs last because the removals above it leave gaps behind.
var (
	// amznOnReadyRe matches embedded amznJQ.onReady(...) script invocations.
	amznOnReadyRe = regexp.MustCompile(`amznJQ\.onReady\([\s\S]*?\)\);`)

	// inlineJQueryRe matches jQuery-style IIFE snippets: (function($...})($...);
	inlineJQueryRe = regexp.MustCompile(`\(function\(\$.*?\}\)\(\$.*?\);`)

	// reviewBlockRe matches the "Customer Reviews ... out of 5 stars" (or
	// "... See all reviews") boilerplate block.
	reviewBlockRe = regexp.MustCompile(`Customer Reviews[\s\S]+?(?:\d+ out of 5 stars|See all reviews)`)

	// popoverConfigRe matches the review-histogram popover configuration blob.
	popoverConfigRe = regexp.MustCompile(`window\.reviewHistPopoverConfig[\s\S]*?onCacheUpdateReselect_average_customer_reviews.*?\);`)

	// feedbackTailRe matches the trailing feedback/update-prompt sentence.
	feedbackTailRe = regexp.MustCompile(`Feedback\s+Would you like to update product info.*`)

	// blankRunRe matches runs of two or more consecutive newlines.
	blankRunRe = regexp.MustCompile(`\n{2,}`)
)

// Clean strips scripting and storefront noise from a RAG document. It applies
// a fixed, ordered sequence of pure string transforms and finishes by
// collapsing blank-line runs and trimming surrounding whitespace.
//
// Clean(Clean(x)) == Clean(x): no pass introduces text that a later (or
// earlier) pass would match, so re-cleaning an already-clean document at
// retrieval time is safe.
func Clean(doc string) string {
	doc = amznOnReadyRe.ReplaceAllString(doc, "")
	doc = inlineJQueryRe.ReplaceAllString(doc, "")
	doc = reviewBlockRe.ReplaceAllString(doc, "")
	doc = popoverConfigRe.ReplaceAllString(doc, "")
	doc = feedbackTailRe.ReplaceAllString(doc, "")
	doc = blankRunRe.ReplaceAllString(doc, "\n\n")
	return strings.TrimSpace(doc)
}
