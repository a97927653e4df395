package api

import (
	"time"

	"github.com/vrypan/bsearch/pkg/core"
	"github.com/vrypan/bsearch/pkg/index"
	"github.com/vrypan/bsearch/pkg/search"
)

// ResultResponse is one search hit: the document's fields, its score and
// the pre-rendered HTML card.
type ResultResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	Excerpt     string         `json:"excerpt,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Type        string         `json:"type,omitempty"`
	Language    string         `json:"language,omitempty"`
	DateISO     string         `json:"date_iso,omitempty"`
	DateDisplay string         `json:"date_display,omitempty"`
	URL         string         `json:"url,omitempty"`
	Timestamp   int64          `json:"timestamp,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	Score       int            `json:"score"`
	HTML        string         `json:"html"`
}

// SearchResponse is the /api/search (and live channel) result frame.
type SearchResponse struct {
	Query   string           `json:"query"`
	Status  string           `json:"status"`
	Sort    string           `json:"sort"`
	Tokens  []string         `json:"tokens,omitempty"`
	Total   int              `json:"total"`
	Results []ResultResponse `json:"results"`
}

// FacetsResponse lists the filterable dimensions.
type FacetsResponse struct {
	Languages []core.Language `json:"languages"`
	Types     []string        `json:"types"`
	Tags      []string        `json:"tags"`
	Years     []string        `json:"years"`
}

// HealthResponse reports service and index state.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Documents int       `json:"documents"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// liveRequest is one inbound frame on the live channel: the current query
// state as of a keystroke or control change.
type liveRequest struct {
	Query    string `json:"q"`
	Language string `json:"language,omitempty"`
	Type     string `json:"type,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Year     string `json:"year,omitempty"`
	Sort     string `json:"sort,omitempty"`
}

func (r liveRequest) params() search.Params {
	return search.Params{
		Query:    r.Query,
		Language: r.Language,
		Type:     r.Type,
		Tag:      r.Tag,
		Year:     r.Year,
		Sort:     r.Sort,
	}
}

// liveResponse is one outbound frame on the live channel.
type liveResponse struct {
	// Event is "results" for query evaluations and "reload" when a fresh
	// index was swapped in.
	Event string `json:"event"`
	SearchResponse
}

func (s *Server) resultResponses(items []index.Result, tokens []string) []ResultResponse {
	out := make([]ResultResponse, len(items))
	for i, item := range items {
		out[i] = ResultResponse{
			ID:          item.ID,
			Title:       item.Title,
			Excerpt:     item.Excerpt,
			Tags:        item.Tags,
			Type:        item.Type,
			Language:    item.Language,
			DateISO:     item.DateISO,
			DateDisplay: item.DateDisplay,
			URL:         item.URL,
			Timestamp:   item.Timestamp,
			Payload:     item.Payload,
			Score:       item.Score,
			HTML:        string(s.renderers.Render(item.Document, tokens)),
		}
	}
	return out
}

func (s *Server) searchResponse(res search.Results) SearchResponse {
	return SearchResponse{
		Query:   res.Query,
		Status:  res.StatusLine(),
		Sort:    res.Sort,
		Tokens:  res.Tokens,
		Total:   res.Total,
		Results: s.resultResponses(res.Items, res.Tokens),
	}
}
