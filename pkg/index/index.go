// Package index implements the in-memory inverted index behind site
// search. It maintains a token -> (document id -> occurrence count) table
// over a configured set of document fields and answers ranked multi-term
// queries with optional prefix matching and an arbitrary filter predicate.
//
// The engine has no knowledge of HTTP or rendering; it only sees
// core.Document values.
package index

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/vrypan/bsearch/pkg/core"
)

// ErrMissingID is returned by Add for a document without an id. Bulk
// loading is expected to abort on it rather than skip the document, so a
// corrupt payload is surfaced as a load failure instead of silently
// shrinking the index.
var ErrMissingID = errors.New("document has no id")

// tokenPattern extracts maximal runs of Unicode letters and digits.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Index is an inverted index over a fixed field list. Documents are added
// once during a bulk load and never retracted; Search is read-only and
// safe for concurrent use once loading has finished.
type Index struct {
	fields []string

	// docs stores documents by id for retrieval and filtering.
	docs map[string]core.Document

	// ids preserves first-insertion order so equal-ranking results keep a
	// stable relative order across searches.
	ids []string

	// terms maps token -> document id -> occurrence count. Counts
	// accumulate across all indexed fields of a document.
	terms map[string]map[string]int
}

// SearchOptions control a single Search call.
type SearchOptions struct {
	// Prefix makes a query term match every indexed token that starts
	// with it, not just exact equality.
	Prefix bool

	// Filter excludes documents regardless of term match. Nil means no
	// constraint.
	Filter func(core.Document) bool
}

// Result is a matched document plus its relevance score: the summed
// occurrence count of every matched token, with no normalization.
type Result struct {
	core.Document
	Score int
}

// New creates an index over the given document fields.
func New(fields []string) *Index {
	return &Index{
		fields: fields,
		docs:   make(map[string]core.Document),
		terms:  make(map[string]map[string]int),
	}
}

// Fields returns the configured field list.
func (ix *Index) Fields() []string {
	out := make([]string, len(ix.fields))
	copy(out, ix.fields)
	return out
}

// Len returns the number of stored documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Add stores a document and indexes its configured fields. A duplicate id
// overwrites the stored document but does not retract the previous token
// contributions; counts accumulate. Acceptable because the system performs
// a single bulk load per payload.
func (ix *Index) Add(doc core.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: %q", ErrMissingID, doc.Title)
	}
	if _, exists := ix.docs[doc.ID]; !exists {
		ix.ids = append(ix.ids, doc.ID)
	}
	ix.docs[doc.ID] = doc
	for _, field := range ix.fields {
		text := doc.FieldText(field)
		if text == "" {
			continue
		}
		for _, tok := range Tokenize(text) {
			entry := ix.terms[tok]
			if entry == nil {
				entry = make(map[string]int)
				ix.terms[tok] = entry
			}
			entry[doc.ID]++
		}
	}
	return nil
}

// AddAll adds every document in order, stopping at the first failure.
func (ix *Index) AddAll(docs []core.Document) error {
	for i, doc := range docs {
		if err := ix.Add(doc); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}
	return nil
}

// Tokenize lower-cases text and extracts maximal runs of Unicode letters
// and digits. Empty input yields no tokens.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Search answers a ranked query. Terms combine with AND semantics and
// zero tolerance: a term matching no indexed token empties the whole
// result. With an empty query it degrades to browsing: every document
// passing the filter, score 0, ordered by recency.
func (ix *Index) Search(query string, opts SearchOptions) []Result {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return ix.browse(opts.Filter)
	}

	// Resolve each term to its matched tokens, intersecting candidate
	// document sets as we go so a dead end exits early.
	termTokens := make([][]string, 0, len(terms))
	var candidates map[string]struct{}
	for _, term := range terms {
		tokens := ix.matchTokens(term, opts.Prefix)
		if len(tokens) == 0 {
			return nil
		}
		termTokens = append(termTokens, tokens)

		union := make(map[string]struct{})
		for _, tok := range tokens {
			for id := range ix.terms[tok] {
				union[id] = struct{}{}
			}
		}
		if candidates == nil {
			candidates = union
		} else {
			for id := range candidates {
				if _, ok := union[id]; !ok {
					delete(candidates, id)
				}
			}
		}
		if len(candidates) == 0 {
			return nil
		}
	}

	results := make([]Result, 0, len(candidates))
	for _, id := range ix.ids {
		if _, ok := candidates[id]; !ok {
			continue
		}
		doc := ix.docs[id]
		if opts.Filter != nil && !opts.Filter(doc) {
			continue
		}
		score := 0
		for _, tokens := range termTokens {
			for _, tok := range tokens {
				score += ix.terms[tok][id]
			}
		}
		results = append(results, Result{Document: doc, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Timestamp > results[j].Timestamp
	})
	return results
}

// matchTokens resolves one query term to the indexed tokens it matches.
func (ix *Index) matchTokens(term string, prefix bool) []string {
	if !prefix {
		if _, ok := ix.terms[term]; ok {
			return []string{term}
		}
		return nil
	}
	var tokens []string
	for tok := range ix.terms {
		if strings.HasPrefix(tok, term) {
			tokens = append(tokens, tok)
		}
	}
	sort.Strings(tokens)
	return tokens
}

// browse returns every document passing the filter, newest first.
func (ix *Index) browse(filter func(core.Document) bool) []Result {
	results := make([]Result, 0, len(ix.ids))
	for _, id := range ix.ids {
		doc := ix.docs[id]
		if filter != nil && !filter(doc) {
			continue
		}
		results = append(results, Result{Document: doc})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp > results[j].Timestamp
	})
	return results
}
