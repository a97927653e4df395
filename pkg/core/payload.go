package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultType is assigned to documents whose payload entry carries no type.
const DefaultType = "post"

// Language is one entry of the payload's declared language list. The
// generator may emit either full {id, name} objects or bare id strings.
type Language struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts both `"en"` and `{"id": "en", "name": "English"}`.
func (l *Language) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		l.ID = id
		l.Name = ""
		return nil
	}
	type alias Language
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*l = Language(a)
	return nil
}

// Label returns the display name for the language, falling back to its id.
func (l Language) Label() string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

// Facets holds the distinct categorical values declared by the generator.
// Years may arrive as JSON numbers; they are normalized to strings.
type Facets struct {
	Types []string   `json:"types,omitempty"`
	Tags  []string   `json:"tags,omitempty"`
	Years YearValues `json:"years,omitempty"`
}

// YearValues decodes a mixed list of strings and numbers into strings.
type YearValues []string

func (y *YearValues) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case float64:
			out = append(out, strconv.Itoa(int(t)))
		default:
			return fmt.Errorf("year facet: unsupported value %v", v)
		}
	}
	*y = out
	return nil
}

// Payload is the search-index artifact consumed at load time. It is the
// only input contract between the site generator and this service.
type Payload struct {
	Documents []Document `json:"documents"`
	Languages []Language `json:"languages,omitempty"`
	Facets    Facets     `json:"facets,omitempty"`
}

// Normalize prepares freshly decoded documents for indexing: derives
// tags_text, defaults the type, and fills any facet sets the generator
// left out by scanning the document set. Idempotent.
func (p *Payload) Normalize() {
	for i := range p.Documents {
		d := &p.Documents[i]
		d.TagsText = strings.Join(d.Tags, " ")
		if d.Type == "" {
			d.Type = DefaultType
		}
	}
	if len(p.Facets.Types) == 0 {
		p.Facets.Types = collectDistinct(p.Documents, func(d Document) []string {
			return []string{d.Type}
		})
	}
	if len(p.Facets.Tags) == 0 {
		p.Facets.Tags = collectDistinct(p.Documents, func(d Document) []string {
			return d.Tags
		})
	}
	if len(p.Facets.Years) == 0 {
		p.Facets.Years = collectDistinct(p.Documents, func(d Document) []string {
			return []string{d.Year()}
		})
	}
	sort.Strings(p.Facets.Types)
	sort.Strings(p.Facets.Tags)
	// Years are presented newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(p.Facets.Years)))
	// The language select shows display labels, so order by them.
	sort.SliceStable(p.Languages, func(i, j int) bool {
		return p.Languages[i].Label() < p.Languages[j].Label()
	})
}

func collectDistinct(docs []Document, extract func(Document) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range docs {
		for _, v := range extract(d) {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
