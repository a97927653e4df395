// Package defaultcard renders the standard post card used for any
// document type without a dedicated renderer.
package defaultcard

import (
	_ "embed"
	"html/template"
	"strings"

	"github.com/vrypan/bsearch/pkg/core"
	"github.com/vrypan/bsearch/pkg/render/common"
)

//go:embed template.html
var cardTemplate string

// AbstractLength is the rune cap for the truncated abstract.
const AbstractLength = 280

// Renderer produces the default post card: time, title link, tag links
// and a truncated abstract with a continue link.
type Renderer struct {
	template *template.Template
}

// New parses the embedded card template.
func New() *Renderer {
	tmpl, err := template.New("defaultcard").Funcs(common.GetTemplateFuncs()).Parse(cardTemplate)
	if err != nil {
		return nil
	}
	return &Renderer{template: tmpl}
}

type cardData struct {
	common.TemplateData
	Abstract  template.HTML
	Truncated bool
}

// Render produces the card HTML for one result.
func (r *Renderer) Render(data common.TemplateData) template.HTML {
	abstract := data.Doc.Excerpt
	if abstract == "" {
		abstract = data.Doc.Content
	}
	abstract, truncated := common.TruncateAbstract(abstract, AbstractLength)

	var buf strings.Builder
	err := r.template.Execute(&buf, cardData{
		TemplateData: data,
		Abstract:     common.Highlight(abstract, data.Tokens),
		Truncated:    truncated,
	})
	if err != nil {
		return template.HTML("<!-- default card render error -->")
	}
	return template.HTML(buf.String())
}

// CanRender accepts any document; this is the fallback renderer.
func (r *Renderer) CanRender(doc core.Document) bool {
	return true
}

// DocumentType returns "" since this renderer has no specific type.
func (r *Renderer) DocumentType() string {
	return ""
}
