package render

import (
	"strings"
	"testing"

	"github.com/vrypan/bsearch/pkg/core"
)

func TestRegistryDefaultCard(t *testing.T) {
	reg := NewRegistry("https://example.com")
	doc := core.Document{
		ID:      "a",
		Type:    "post",
		Title:   "Hello <World>",
		Excerpt: "A post about hello things.",
		Tags:    []string{"go"},
		URL:     "/posts/hello/",
		DateISO: "2024-01-02T00:00:00Z",
	}
	out := string(reg.Render(doc, []string{"hello"}))

	if !strings.Contains(out, `href="https://example.com/posts/hello/"`) {
		t.Errorf("canonical link missing: %s", out)
	}
	if !strings.Contains(out, "<mark>Hello</mark> &lt;World&gt;") {
		t.Errorf("highlighted escaped title missing: %s", out)
	}
	if !strings.Contains(out, "<mark>hello</mark> things") {
		t.Errorf("highlighted abstract missing: %s", out)
	}
	if !strings.Contains(out, `href="https://example.com/tags/go/"`) {
		t.Errorf("tag link missing: %s", out)
	}
	if !strings.Contains(out, "2024-01-02") {
		t.Errorf("date missing: %s", out)
	}
}

func TestRegistryFarcasterCard(t *testing.T) {
	reg := NewRegistry("https://example.com")
	doc := core.Document{
		ID:      "cast",
		Type:    "Farcaster", // case-insensitive match
		Content: "first line\nsecond line\n\nnext paragraph",
		URL:     "https://warpcast.example/cast",
	}
	out := string(reg.Render(doc, nil))

	if !strings.Contains(out, "result-card-cast") {
		t.Fatalf("farcaster renderer not selected: %s", out)
	}
	if !strings.Contains(out, "<p>first line<br>second line</p>") {
		t.Errorf("line break handling: %s", out)
	}
	if !strings.Contains(out, "<p>next paragraph</p>") {
		t.Errorf("paragraph split: %s", out)
	}
}

func TestRegistryUnknownTypeFallsBack(t *testing.T) {
	reg := NewRegistry("https://example.com")
	out := string(reg.Render(core.Document{ID: "x", Type: "photo", Title: "Pic"}, nil))
	if !strings.Contains(out, "result-card-photo") {
		t.Errorf("default card should carry the document type class: %s", out)
	}
}

func TestRegistryPayloadSlots(t *testing.T) {
	reg := NewRegistry("https://example.com")
	doc := core.Document{
		ID:    "a",
		Type:  "post",
		Title: "With payload",
		Payload: map[string]any{
			"image":  "/img/cover.png",
			"source": "mirror",
		},
	}
	out := string(reg.Render(doc, nil))
	if !strings.Contains(out, `src="/img/cover.png"`) {
		t.Errorf("image payload should render as src attribute: %s", out)
	}
	if !strings.Contains(out, ">mirror</span>") {
		t.Errorf("text payload should render as content: %s", out)
	}
}
