package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePost(t *testing.T, root, folder, content string) {
	t.Helper()
	dir := filepath.Join(root, "2024", folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating post dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte(content), 0644); err != nil {
		t.Fatalf("writing post: %v", err)
	}
}

func TestBuildPayload(t *testing.T) {
	root := t.TempDir()

	writePost(t, root, "240115-hello-world", `---
title: Hello World
date: 2024-01-15T10:00:00Z
author: vrypan
slug: hello-world
tags:
  - golang
  - blogging
lang: en
---

This is the **first** paragraph of the post.

And a second paragraph with more detail.
`)
	writePost(t, root, "240302-second-post", `---
title: Second Post
date: 2024-03-02T09:30:00Z
slug: second-post
lang: el
---

Δεύτερη ανάρτηση.
`)

	payload, err := BuildPayload(root)
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}

	if len(payload.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(payload.Documents))
	}

	// Newest first.
	if payload.Documents[0].ID != "second-post" || payload.Documents[1].ID != "hello-world" {
		t.Errorf("unexpected document order: %s, %s", payload.Documents[0].ID, payload.Documents[1].ID)
	}

	doc := payload.Documents[1]
	if doc.Title != "Hello World" {
		t.Errorf("expected title Hello World, got %q", doc.Title)
	}
	if doc.DateISO != "2024-01-15" {
		t.Errorf("expected date_iso 2024-01-15, got %q", doc.DateISO)
	}
	if doc.URL != "/2024/hello-world/" {
		t.Errorf("expected URL /2024/hello-world/, got %q", doc.URL)
	}
	if doc.Excerpt != "This is the first paragraph of the post." {
		t.Errorf("unexpected excerpt %q", doc.Excerpt)
	}
	if !strings.Contains(doc.Content, "second paragraph") {
		t.Errorf("content missing body text: %q", doc.Content)
	}
	if strings.Contains(doc.Content, "**") {
		t.Errorf("content contains raw markdown: %q", doc.Content)
	}
	if doc.TagsText != "golang blogging" {
		t.Errorf("expected derived tags_text, got %q", doc.TagsText)
	}
	if author, ok := doc.Payload["author"].(string); !ok || author != "vrypan" {
		t.Errorf("expected author in payload, got %v", doc.Payload)
	}

	if len(payload.Languages) != 2 || payload.Languages[0].ID != "el" || payload.Languages[1].ID != "en" {
		t.Errorf("unexpected languages: %v", payload.Languages)
	}
	if len(payload.Facets.Years) != 1 || payload.Facets.Years[0] != "2024" {
		t.Errorf("unexpected year facet: %v", payload.Facets.Years)
	}
}

func TestBuildPayloadSlugFromFolder(t *testing.T) {
	root := t.TempDir()
	writePost(t, root, "240601-from-folder", `---
title: No Slug Field
date: 2024-06-01
---

Body text.
`)

	payload, err := BuildPayload(root)
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	if len(payload.Documents) != 1 || payload.Documents[0].ID != "from-folder" {
		t.Fatalf("expected folder-derived slug, got %+v", payload.Documents)
	}
}

func TestBuildPayloadMissingIDAborts(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "2024", "not-a-dated-folder")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	post := "---\ntitle: Nameless\ndate: 2024-06-01\n---\n\nBody.\n"
	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte(post), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := BuildPayload(root); err == nil {
		t.Fatal("expected build to abort for a post without a derivable id")
	}
}

func TestBuildPayloadMissingFrontmatter(t *testing.T) {
	root := t.TempDir()
	writePost(t, root, "240601-plain", "Just a body with no frontmatter.\n")

	if _, err := BuildPayload(root); err == nil {
		t.Fatal("expected build to fail for a post without frontmatter")
	}
}

func TestFirstParagraphSkipsHeadings(t *testing.T) {
	body := "# Heading\n\nActual lead paragraph.\n\nSecond."
	if got := firstParagraph(body); got != "Actual lead paragraph." {
		t.Errorf("expected lead paragraph, got %q", got)
	}
}
