package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/vrypan/bsearch/pkg/config"
	"github.com/vrypan/bsearch/pkg/core"
	"github.com/vrypan/bsearch/pkg/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// IndexCommand creates the index command
func IndexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Build the search-index payload from the posts tree",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "posts",
				Usage: "Posts directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Output payload file",
				Value: "search-index.json",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return buildIndex(c.String("config"), c.String("posts"), c.String("output"))
		},
	}
}

// frontmatter is the metadata block at the top of each post's index.md.
type frontmatter struct {
	Title  string   `yaml:"title"`
	Date   string   `yaml:"date"`
	Author string   `yaml:"author"`
	Slug   string   `yaml:"slug"`
	Tags   []string `yaml:"tags"`
	Lang   string   `yaml:"lang"`
}

func buildIndex(configPath, postsDir, output string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if postsDir == "" {
		postsDir = cfg.PostsDir
	}

	logger := log.ForComponent("indexer")

	payload, err := BuildPayload(postsDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("writing payload: %w", err)
	}

	logger.Infof("wrote %s: %d documents", output, len(payload.Documents))
	fmt.Printf("Indexed %d posts into %s\n", len(payload.Documents), output)
	return nil
}

// BuildPayload walks a posts tree laid out as posts/YYYY/YYMMDD-slug/index.md
// and produces a normalized search-index payload. A post whose id cannot be
// derived (no slug in frontmatter and no slug in the folder name) aborts the
// whole build.
func BuildPayload(postsDir string) (*core.Payload, error) {
	var docs []core.Document
	languages := make(map[string]struct{})

	err := filepath.WalkDir(postsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != "index.md" {
			return nil
		}
		doc, err := loadPost(path)
		if err != nil {
			return fmt.Errorf("post %s: %w", path, err)
		}
		docs = append(docs, doc)
		if doc.Language != "" {
			languages[doc.Language] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking posts: %w", err)
	}

	// Newest first, matching the generator's output order.
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Timestamp > docs[j].Timestamp
	})

	payload := &core.Payload{Documents: docs}
	for _, id := range sortedKeys(languages) {
		payload.Languages = append(payload.Languages, core.Language{ID: id})
	}
	payload.Normalize()
	return payload, nil
}

// folderPattern matches the post folder layout: a YYMMDD date prefix
// followed by the slug.
var folderPattern = regexp.MustCompile(`^(\d{6})-(.+)$`)

func loadPost(path string) (core.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return core.Document{}, err
	}

	fm, body, err := splitFrontmatter(raw)
	if err != nil {
		return core.Document{}, err
	}

	folder := filepath.Base(filepath.Dir(path))
	slug := fm.Slug
	if slug == "" {
		if m := folderPattern.FindStringSubmatch(folder); m != nil {
			slug = m[2]
		}
	}
	if slug == "" {
		return core.Document{}, fmt.Errorf("cannot derive post id from frontmatter or folder %q", folder)
	}

	posted, err := parsePostDate(fm.Date, folder)
	if err != nil {
		return core.Document{}, err
	}

	content := markdownToText(body)
	doc := core.Document{
		ID:          slug,
		Title:       fm.Title,
		Content:     content,
		Excerpt:     firstParagraph(body),
		Tags:        fm.Tags,
		Type:        core.DefaultType,
		Language:    fm.Lang,
		DateISO:     posted.Format("2006-01-02"),
		DateDisplay: posted.Format("January 2, 2006"),
		URL:         fmt.Sprintf("/%s/%s/", posted.Format("2006"), slug),
		Timestamp:   posted.Unix(),
	}
	if fm.Author != "" {
		doc.Payload = map[string]any{"author": fm.Author}
	}
	return doc, nil
}

// splitFrontmatter separates the YAML frontmatter block from the markdown
// body. Posts without a frontmatter block are rejected.
func splitFrontmatter(raw []byte) (frontmatter, string, error) {
	var fm frontmatter
	if !bytes.HasPrefix(raw, []byte("---\n")) {
		return fm, "", fmt.Errorf("missing frontmatter")
	}
	rest := raw[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		return fm, "", fmt.Errorf("unterminated frontmatter")
	}
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return fm, "", fmt.Errorf("parsing frontmatter: %w", err)
	}
	body := strings.TrimLeft(string(rest[end+5:]), "\n")
	return fm, body, nil
}

// parsePostDate reads the frontmatter date (RFC 3339 or plain date),
// falling back to the YYMMDD folder prefix.
func parsePostDate(date, folder string) (time.Time, error) {
	if date != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, date); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable date %q", date)
	}
	if m := folderPattern.FindStringSubmatch(folder); m != nil {
		if t, err := time.Parse("060102", m[1]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no date in frontmatter or folder %q", folder)
}

// markdown is the converter used to flatten post bodies into indexable text.
// GFM keeps tables and strikethrough from leaking raw punctuation.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// markdownToText renders markdown to HTML and strips the tags, leaving the
// plain text the engine tokenizes.
func markdownToText(body string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		// Conversion failures degrade to indexing the raw markdown.
		return body
	}
	text := html.UnescapeString(tagPattern.ReplaceAllString(buf.String(), " "))
	return strings.Join(strings.Fields(text), " ")
}

// firstParagraph returns the first non-heading paragraph of the body as
// plain text, for the result-card excerpt.
func firstParagraph(body string) string {
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") {
			continue
		}
		return markdownToText(block)
	}
	return ""
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
