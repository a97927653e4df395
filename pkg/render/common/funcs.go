package common

import (
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vrypan/bsearch/pkg/core"
)

// DocumentRenderer renders one result card for a given document type.
// Implementations return trusted HTML: all document text must pass through
// Highlight (or equivalent escaping) before reaching the output.
type DocumentRenderer interface {
	Render(data TemplateData) template.HTML
	CanRender(doc core.Document) bool
	DocumentType() string
}

// TemplateData is what card renderers receive: the raw document plus the
// pre-highlighted title, the canonicalized link target and the active
// highlight tokens. Type-specific pieces (abstract, cast body) are built
// by the renderer itself.
type TemplateData struct {
	Doc     core.Document
	Title   template.HTML
	URL     string
	Date    string
	Tokens  []string
	Payload map[string]any
	BaseURL string
}

var titleCaser = cases.Title(language.English)

// FacetLabel title-cases a facet value for display ("farcaster" ->
// "Farcaster").
func FacetLabel(s string) string {
	return titleCaser.String(s)
}

// CanonicalURL prefixes site-relative targets with the configured base
// URL. Absolute URLs pass through untouched.
func CanonicalURL(baseURL, target string) string {
	if target == "" {
		return baseURL
	}
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	base := strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return base + target
}

// DisplayDate prefers the generator's pre-formatted date and falls back to
// the ISO date's day part.
func DisplayDate(doc core.Document) string {
	if doc.DateDisplay != "" {
		return doc.DateDisplay
	}
	if len(doc.DateISO) >= 10 {
		return doc.DateISO[:10]
	}
	return doc.DateISO
}

// TruncateAbstract shortens body text to at most max runes, cutting at a
// word boundary and appending an ellipsis.
func TruncateAbstract(text string, max int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= max {
		return text, false
	}
	cut := string(runes[:max])
	if i := strings.LastIndexAny(cut, " \n\t"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " \n\t.,;:") + "…", true
}

// GetTemplateFuncs returns the functions shared by card templates.
func GetTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"facetLabel": FacetLabel,
		"safeHTML":   func(s string) template.HTML { return template.HTML(s) },
		"isImageKey": IsImageKey,
	}
}

// IsImageKey reports whether a payload key should render as an image
// source rather than text content.
func IsImageKey(key string) bool {
	switch strings.ToLower(key) {
	case "image", "avatar", "thumbnail":
		return true
	}
	return false
}
