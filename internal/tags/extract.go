// Package tags extracts structured metadata tags from free text via the chat
// adapter. Model output is not guaranteed to be well-formed JSON even when
// instructed, so parsing is tiered: whole-reply JSON first, then the first
// embedded {...} object, then the terminal "misc" fallback.
package tags

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/smartfind/smartfind-go/internal/llm"
	"github.com/smartfind/smartfind-go/internal/logging"
)

// FallbackTag is the single tag returned whenever extraction fails or
// produces a non-list "tags" field.
const FallbackTag = "misc"

// maxTags caps the number of tags kept from a single extraction.
const maxTags = 8

// jsonObjectRe locates an embedded JSON object inside surrounding prose.
// Greedy with (?s) so it spans from the first "{" to the last "}", matching
// across newlines.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// Extractor pulls a tag list out of free text using a tagging prompt.
// The same extractor shape serves both ingest (product documents) and
// search (user queries); only the prompt differs.
type Extractor struct {
	// chat is the chat adapter used for the tagging call.
	chat llm.Chatter
	// prompt is the system prompt selecting product or query tagging.
	prompt string
}

// NewExtractor constructs an Extractor bound to the given prompt.
func NewExtractor(chat llm.Chatter, prompt string) *Extractor {
	return &Extractor{chat: chat, prompt: prompt}
}

// Extract sends text through the chat adapter and parses the reply into a
// normalized tag list. It never fails: every malformed outcome collapses to
// the ["misc"] fallback.
func (e *Extractor) Extract(ctx context.Context, text string) []string {
	reply := e.chat.Chat(ctx, e.prompt, text)
	result := Parse(reply.Text)
	if reply.Degraded || (len(result) == 1 && result[0] == FallbackTag) {
		logging.FromContext(ctx).Debug("tags: extraction degraded to fallback",
			slog.Bool("chat_degraded", reply.Degraded))
	}
	return result
}

// Parse applies the tiered fallback parse to a raw chat reply:
//
//  1. Parse the whole reply as JSON and read "tags" — returned when it is
//     a list.
//  2. If that parse fails, locate the first {...} substring and retry.
//  3. On any failure, or when "tags" is present but not a list, return
//     ["misc"].
//
// Returned tags are trimmed, lowercased, de-emptied, and capped at 8.
func Parse(content string) []string {
	if tags, ok := tagsFromJSON(content); ok {
		return normalize(tags)
	}
	if m := jsonObjectRe.FindString(content); m != "" {
		if tags, ok := tagsFromJSON(m); ok {
			return normalize(tags)
		}
	}
	return []string{FallbackTag}
}

// tagsFromJSON parses s as a JSON object and extracts a string list from its
// "tags" field. ok is false when s is not JSON or "tags" is absent or not a
// list.
func tagsFromJSON(s string) ([]string, bool) {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return nil, false
	}
	raw, present := parsed["tags"]
	if !present {
		return nil, false
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		// "tags" exists but is not a list — terminal fallback.
		return nil, false
	}
	tags := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags, true
}

// normalize lowercases and trims tags, drops empties, and caps the list.
// A well-formed but empty list stays empty — that is a valid "no tags"
// outcome and must not trigger the fallback, so downstream search runs
// unrestricted rather than filtering on "misc".
func normalize(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == maxTags {
			break
		}
	}
	return out
}
