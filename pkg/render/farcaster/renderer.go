// Package farcaster renders cast documents: short multi-paragraph posts
// mirrored from the farcaster network, displayed body-first instead of as
// a titled post card.
package farcaster

import (
	_ "embed"
	"html/template"
	"regexp"
	"strings"

	"github.com/vrypan/bsearch/pkg/core"
	"github.com/vrypan/bsearch/pkg/render/common"
)

//go:embed template.html
var cardTemplate string

// Type is the document type this renderer handles. Matching is
// case-insensitive.
const Type = "farcaster"

// Renderer renders cast cards.
type Renderer struct {
	template *template.Template
}

// New parses the embedded cast template.
func New() *Renderer {
	tmpl, err := template.New("farcaster").Funcs(common.GetTemplateFuncs()).Parse(cardTemplate)
	if err != nil {
		return nil
	}
	return &Renderer{template: tmpl}
}

type cardData struct {
	common.TemplateData
	Body template.HTML
}

// Render produces the cast card HTML for one result.
func (r *Renderer) Render(data common.TemplateData) template.HTML {
	var buf strings.Builder
	err := r.template.Execute(&buf, cardData{
		TemplateData: data,
		Body:         Body(data.Doc.Content, data.Tokens),
	})
	if err != nil {
		return template.HTML("<!-- farcaster card render error -->")
	}
	return template.HTML(buf.String())
}

// CanRender matches cast documents case-insensitively.
func (r *Renderer) CanRender(doc core.Document) bool {
	return strings.EqualFold(doc.Type, Type)
}

// DocumentType returns the handled document type.
func (r *Renderer) DocumentType() string {
	return Type
}

// Body renders the cast text: blank-line boundaries split paragraphs and
// single newlines become line breaks. Every paragraph goes through
// Highlight, so escaping happens before the structural markup is added.
func Body(content string, tokens []string) template.HTML {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	var b strings.Builder
	for _, para := range splitParagraphs(content) {
		b.WriteString("<p>")
		for i, line := range strings.Split(para, "\n") {
			if i > 0 {
				b.WriteString("<br>")
			}
			b.WriteString(string(common.Highlight(line, tokens)))
		}
		b.WriteString("</p>")
	}
	return template.HTML(b.String())
}

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n+`)

// splitParagraphs splits on blank-line boundaries, dropping empty chunks.
func splitParagraphs(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	var paras []string
	for _, chunk := range paragraphBreak.Split(normalized, -1) {
		chunk = strings.Trim(chunk, "\n")
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		paras = append(paras, chunk)
	}
	return paras
}
