// Package render turns search results into HTML cards. Each document type
// can have its own renderer; the registry picks one per document and falls
// back to the default post card. Highlighting and escaping live in the
// common subpackage so individual renderers stay small.
package render

import (
	"html"
	"html/template"

	"github.com/vrypan/bsearch/pkg/core"
	"github.com/vrypan/bsearch/pkg/render/common"
	"github.com/vrypan/bsearch/pkg/render/defaultcard"
	"github.com/vrypan/bsearch/pkg/render/farcaster"
)

// DocumentRenderer renders result cards for one document type
// (re-exported for convenience).
type DocumentRenderer = common.DocumentRenderer

// TemplateData holds data passed to card renderers (re-exported for
// convenience).
type TemplateData = common.TemplateData

// Registry picks the renderer for a document's type and produces one
// result card. Type matching is case-insensitive; anything without a
// dedicated renderer falls back to the default post card.
type Registry struct {
	baseURL         string
	renderers       []DocumentRenderer
	defaultRenderer DocumentRenderer
}

// NewRegistry creates a registry with the built-in renderers. baseURL is
// prepended to site-relative result links.
func NewRegistry(baseURL string) *Registry {
	return &Registry{
		baseURL:         baseURL,
		renderers:       []DocumentRenderer{farcaster.New()},
		defaultRenderer: defaultcard.New(),
	}
}

// Register adds a custom renderer, consulted before the built-ins.
func (r *Registry) Register(renderer DocumentRenderer) {
	if renderer == nil {
		return
	}
	r.renderers = append([]DocumentRenderer{renderer}, r.renderers...)
}

// Render produces the HTML card for one search result. tokens are the
// active highlight tokens.
func (r *Registry) Render(doc core.Document, tokens []string) template.HTML {
	data := common.TemplateData{
		Doc:     doc,
		Title:   common.Highlight(doc.Title, tokens),
		URL:     common.CanonicalURL(r.baseURL, doc.URL),
		Date:    common.DisplayDate(doc),
		Tokens:  tokens,
		Payload: doc.Payload,
		BaseURL: r.baseURL,
	}
	for _, renderer := range r.renderers {
		if renderer.CanRender(doc) {
			return renderer.Render(data)
		}
	}
	if r.defaultRenderer != nil {
		return r.defaultRenderer.Render(data)
	}
	return template.HTML("<article>" + html.EscapeString(doc.Title) + "</article>")
}

// Re-exported helpers for callers that only need the primitives.
var (
	Highlight    = common.Highlight
	CanonicalURL = common.CanonicalURL
	FacetLabel   = common.FacetLabel
)
