// Package search bridges the index engine to the service's user-facing
// surfaces. It owns parameter parsing, facet composition, result sorting
// and the status line wording shared by the web UI, the JSON API and the
// live (WebSocket) channel.
package search

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/vrypan/bsearch/pkg/core"
	"github.com/vrypan/bsearch/pkg/index"
)

// Sort modes. Relevance keeps the engine's order (score desc, timestamp
// desc tiebreak); newest ignores score and orders purely by timestamp.
const (
	SortRelevance = "relevance"
	SortNewest    = "newest"
)

// Params represents one query evaluation: the raw query string plus the
// current facet selections. Each facet is either unset ("") or a single
// value; set facets compose as logical AND.
type Params struct {
	Query    string
	Language string
	Type     string
	Tag      string
	Year     string
	Sort     string

	// Limit caps the number of returned results. 0 means unlimited,
	// which is what the web UI uses.
	Limit int
}

// ParseParams parses HTTP query parameters into Params, with defaults for
// missing or invalid values.
//
// Supported parameters: q, language, type, tag, year, sort, limit.
func ParseParams(values url.Values) Params {
	p := Params{
		Query:    values.Get("q"),
		Language: values.Get("language"),
		Type:     values.Get("type"),
		Tag:      values.Get("tag"),
		Year:     values.Get("year"),
		Sort:     SortRelevance,
	}
	if s := values.Get("sort"); s == SortNewest {
		p.Sort = SortNewest
	}
	if limitStr := values.Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			p.Limit = parsed
		}
	}
	return p
}

// Filter returns the facet predicate for these Params, or nil when no
// facet is set. A document is rejected if any set facet mismatches:
// language and type by case-sensitive equality, tag by membership in the
// document's tag list, year by the 4-character prefix of date_iso.
func (p Params) Filter() func(core.Document) bool {
	if p.Language == "" && p.Type == "" && p.Tag == "" && p.Year == "" {
		return nil
	}
	return func(d core.Document) bool {
		if p.Language != "" && d.Language != p.Language {
			return false
		}
		if p.Type != "" && d.Type != p.Type {
			return false
		}
		if p.Tag != "" && !d.HasTag(p.Tag) {
			return false
		}
		if p.Year != "" && d.Year() != p.Year {
			return false
		}
		return true
	}
}

// HighlightTokens derives the token list used for result highlighting:
// the query's tokens deduplicated case-insensitively, first-seen order
// preserved.
func HighlightTokens(query string) []string {
	tokens := index.Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// Blank reports whether the query is empty after trimming.
func (p Params) Blank() bool {
	return strings.TrimSpace(p.Query) == ""
}
