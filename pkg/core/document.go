package core

import (
	"strings"
)

// Document represents a single searchable unit in the site's search index:
// a blog post or an external item such as a farcaster cast.
//
// Documents are decoded from the search-index payload produced by the site
// generator and are immutable after loading. Known fields are typed below;
// anything type-specific travels in the open Payload map so new document
// kinds don't require a schema change.
type Document struct {
	// ID uniquely identifies the document across the whole index.
	// A document without an ID is rejected at load time.
	ID string `json:"id"`

	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`

	// Tags is the ordered tag list, possibly empty.
	Tags []string `json:"tags,omitempty"`

	// Type is a free-form category ("post", "farcaster", ...) used to pick
	// a renderer and as a facet value.
	Type string `json:"type,omitempty"`

	Language    string `json:"language,omitempty"`
	DateISO     string `json:"date_iso,omitempty"`
	DateDisplay string `json:"date_display,omitempty"`
	URL         string `json:"url,omitempty"`

	// Timestamp is an epoch value used for recency ordering. Documents
	// without one sort as timestamp 0.
	Timestamp int64 `json:"timestamp,omitempty"`

	// Payload carries auxiliary key/value data for type-specific rendering.
	Payload map[string]any `json:"payload,omitempty"`

	// TagsText is derived at normalization time: the tag list joined with
	// single spaces so the engine can index tags as one text field.
	TagsText string `json:"-"`
}

// Year returns the 4-character year prefix of DateISO, or "" when the date
// is absent or too short.
func (d Document) Year() string {
	if len(d.DateISO) < 4 {
		return ""
	}
	return d.DateISO[:4]
}

// FieldText returns the indexable text for a named field. List-valued
// fields are joined with single spaces. Unknown names fall through to
// string values in the Payload map.
func (d Document) FieldText(name string) string {
	switch name {
	case "id":
		return d.ID
	case "title":
		return d.Title
	case "content":
		return d.Content
	case "excerpt":
		return d.Excerpt
	case "tags":
		return strings.Join(d.Tags, " ")
	case "tags_text":
		return d.TagsText
	case "type":
		return d.Type
	case "language":
		return d.Language
	case "url":
		return d.URL
	default:
		if v, ok := d.Payload[name]; ok {
			switch t := v.(type) {
			case string:
				return t
			case []string:
				return strings.Join(t, " ")
			case []any:
				parts := make([]string, 0, len(t))
				for _, e := range t {
					if s, ok := e.(string); ok {
						parts = append(parts, s)
					}
				}
				return strings.Join(parts, " ")
			}
		}
		return ""
	}
}

// HasTag reports whether the document's tag list contains tag (exact match).
func (d Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
