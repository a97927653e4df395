package common

import (
	"html"
	"html/template"
	"regexp"
	"sort"
	"strings"
)

// Highlight HTML-escapes text and wraps every case-insensitive occurrence
// of the active tokens in <mark>. Escaping happens first so document text
// can never inject markup. Tokens are processed longest-first: a longer
// token is claimed before a shorter token that is one of its substrings,
// so "blogging" is never double-wrapped when both "blogging" and "blog"
// are active.
//
// With no tokens (or blank text) only the escaping is applied.
func Highlight(text string, tokens []string) template.HTML {
	escaped := html.EscapeString(text)
	if escaped == "" || len(tokens) == 0 {
		return template.HTML(escaped)
	}

	ordered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok != "" {
			ordered = append(ordered, tok)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})

	// Claim non-overlapping [start,end) intervals, longest tokens first.
	var spans [][2]int
	for _, tok := range ordered {
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(tok))
		if err != nil {
			continue
		}
		for _, m := range re.FindAllStringIndex(escaped, -1) {
			if overlaps(spans, m[0], m[1]) {
				continue
			}
			spans = append(spans, [2]int{m[0], m[1]})
		}
	}
	if len(spans) == 0 {
		return template.HTML(escaped)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(escaped[last:s[0]])
		b.WriteString("<mark>")
		b.WriteString(escaped[s[0]:s[1]])
		b.WriteString("</mark>")
		last = s[1]
	}
	b.WriteString(escaped[last:])
	return template.HTML(b.String())
}

func overlaps(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}
