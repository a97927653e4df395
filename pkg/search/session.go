package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vrypan/bsearch/pkg/core"
	"github.com/vrypan/bsearch/pkg/index"
)

// IndexedFields are the document fields the engine indexes.
var IndexedFields = []string{"title", "content", "excerpt", "tags_text"}

// Session owns one loaded index and the facet metadata derived from its
// payload. A Session is immutable after construction; reloading the
// payload produces a new Session.
type Session struct {
	engine  *index.Index
	payload *core.Payload
}

// Results is the outcome of one query evaluation.
type Results struct {
	Query  string
	Sort   string
	Tokens []string
	Items  []index.Result
	Total  int

	// Browse marks a filter-only listing, which gets a document count
	// status instead of the ready prompt.
	Browse bool
}

// NewSession indexes a normalized payload. A document without an id
// aborts the whole load; the caller surfaces that as a load failure.
func NewSession(payload *core.Payload) (*Session, error) {
	engine := index.New(IndexedFields)
	if err := engine.AddAll(payload.Documents); err != nil {
		return nil, fmt.Errorf("loading search index: %w", err)
	}
	return &Session{engine: engine, payload: payload}, nil
}

// Documents returns the number of indexed documents.
func (s *Session) Documents() int {
	return s.engine.Len()
}

// Languages returns the payload's declared language list.
func (s *Session) Languages() []core.Language {
	return s.payload.Languages
}

// Facets returns the distinct facet value sets.
func (s *Session) Facets() core.Facets {
	return s.payload.Facets
}

// Query evaluates Params against the index. A blank query yields empty
// Results without consulting the engine's term-matching path; the UI shows
// the ready prompt for it. Prefix matching is always on.
func (s *Session) Query(p Params) Results {
	res := Results{Query: strings.TrimSpace(p.Query), Sort: p.Sort}
	if res.Sort == "" {
		res.Sort = SortRelevance
	}
	if p.Blank() {
		return res
	}

	res.Tokens = HighlightTokens(res.Query)
	items := s.engine.Search(res.Query, index.SearchOptions{
		Prefix: true,
		Filter: p.Filter(),
	})
	res.Items = Resort(items, res.Sort)
	res.Total = len(res.Items)
	if p.Limit > 0 && len(res.Items) > p.Limit {
		res.Items = res.Items[:p.Limit]
	}
	return res
}

// Browse lists documents passing the current facet selections without a
// term query, newest first. Used by the API and the terminal client for
// listing mode.
func (s *Session) Browse(p Params) Results {
	items := s.engine.Search("", index.SearchOptions{Filter: p.Filter()})
	res := Results{Sort: SortNewest, Items: items, Total: len(items), Browse: true}
	if p.Limit > 0 && len(res.Items) > p.Limit {
		res.Items = res.Items[:p.Limit]
	}
	return res
}

// Resort applies a sort mode to an engine result set. Relevance keeps the
// engine order. Newest sorts purely by descending timestamp; the sort is
// stable so equal timestamps keep the engine order. The slice is resorted
// in place and returned.
func Resort(items []index.Result, mode string) []index.Result {
	if mode != SortNewest {
		return items
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
	return items
}

// StatusLine renders the user-visible status for a completed evaluation.
func (r Results) StatusLine() string {
	if r.Query == "" {
		if !r.Browse {
			return StatusReadyPrompt
		}
		if r.Total == 1 {
			return "1 document"
		}
		return fmt.Sprintf("%d documents", r.Total)
	}
	if r.Total == 0 {
		return fmt.Sprintf("No matches found for “%s”", r.Query)
	}
	if r.Total == 1 {
		return fmt.Sprintf("1 result for “%s”", r.Query)
	}
	return fmt.Sprintf("%d results for “%s”", r.Total, r.Query)
}

// The three load-state status messages plus the ready prompt.
const (
	StatusLoading     = "Loading search index…"
	StatusReadyPrompt = "Type to search"
	StatusUnavailable = "Search is unavailable"
)
