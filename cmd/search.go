package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"github.com/vrypan/bsearch/pkg/config"
	"github.com/vrypan/bsearch/pkg/index"
	"github.com/vrypan/bsearch/pkg/render/common"
	"github.com/vrypan/bsearch/pkg/search"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1).
			Margin(0, 0, 1, 2)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32")).
			Margin(0, 0, 1, 0)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Margin(1, 0, 0, 0)
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the blog index from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search query (empty lists recent documents)",
			},
			&cli.StringFlag{
				Name:  "language",
				Usage: "Filter by language",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Filter by document type",
			},
			&cli.StringFlag{
				Name:  "tag",
				Usage: "Filter by tag",
			},
			&cli.StringFlag{
				Name:  "year",
				Usage: "Filter by year",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort order: relevance or newest",
				Value: search.SortRelevance,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "no-pager",
				Usage: "Disable pager and output directly to terminal",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			params := search.Params{
				Query:    c.String("query"),
				Language: c.String("language"),
				Type:     c.String("type"),
				Tag:      c.String("tag"),
				Year:     c.String("year"),
				Sort:     c.String("sort"),
				Limit:    c.Int("limit"),
			}
			return runSearch(ctx, c.String("config"), params, c.Bool("no-pager"))
		},
	}
}

// runSearch loads the payload, evaluates the query and prints styled cards.
func runSearch(ctx context.Context, configPath string, params search.Params, noPager bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	controller := search.NewController(cfg.IndexURL(), http.DefaultClient)
	if err := controller.Load(ctx); err != nil {
		return fmt.Errorf("loading search index: %w", err)
	}

	session := controller.Session()
	var results search.Results
	if strings.TrimSpace(params.Query) == "" {
		results = session.Browse(params)
	} else {
		results = session.Query(params)
	}

	output := formatSearchOutput(results, params)

	if noPager || !isTerminal() {
		fmt.Print(output)
		return nil
	}
	return displayWithPager(output)
}

// formatSearchOutput creates the formatted output for a result set.
func formatSearchOutput(results search.Results, params search.Params) string {
	var output strings.Builder

	title := "Search"
	if results.Query != "" {
		title = fmt.Sprintf("Search - %s", results.Query)
	}
	output.WriteString(titleStyle.Render(title))
	output.WriteString("\n")

	status := results.StatusLine()
	if filters := describeFilters(params); filters != "" {
		status += fmt.Sprintf(" (filtered to: %s)", filters)
	}
	output.WriteString(statusStyle.Render(status))
	output.WriteString("\n")

	if len(results.Items) == 0 {
		output.WriteString(noDataStyle.Render("Nothing to show."))
		output.WriteString("\n")
		return output.String()
	}

	for i, item := range results.Items {
		output.WriteString(formatResultCard(item, i+1, results.Query != ""))
		output.WriteString("\n")
	}

	return output.String()
}

// describeFilters renders the active facet selections for the status line.
func describeFilters(params search.Params) string {
	var parts []string
	for _, f := range []struct{ name, value string }{
		{"language", params.Language},
		{"type", params.Type},
		{"tag", params.Tag},
		{"year", params.Year},
	} {
		if f.value != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", f.name, f.value))
		}
	}
	return strings.Join(parts, ", ")
}

// formatResultCard formats a single result for display.
func formatResultCard(item index.Result, rank int, scored bool) string {
	var content strings.Builder

	header := fmt.Sprintf("#%d - %s", rank, item.Title)
	if item.Title == "" {
		header = fmt.Sprintf("#%d - %s", rank, item.ID)
	}
	content.WriteString(headingStyle.Render(header))
	content.WriteString("\n\n")

	excerpt := item.Excerpt
	if excerpt == "" {
		excerpt = item.Content
	}
	excerpt, _ = common.TruncateAbstract(excerpt, 280)
	content.WriteString(excerpt)

	if item.URL != "" {
		content.WriteString("\n" + urlStyle.Render(item.URL))
	}

	meta := fmt.Sprintf("%s | %s", item.DateDisplay, item.Type)
	if len(item.Tags) > 0 {
		meta += " | " + strings.Join(item.Tags, ", ")
	}
	if scored {
		meta += fmt.Sprintf(" | score %d", item.Score)
	}
	content.WriteString("\n\n")
	content.WriteString(metaStyle.Render(meta))

	return cardStyle.Render(content.String())
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// displayWithPager displays content using a pager
func displayWithPager(content string) error {
	pagerCmd := os.Getenv("PAGER")
	if pagerCmd == "" {
		for _, pager := range []string{"less", "more", "cat"} {
			if _, err := exec.LookPath(pager); err == nil {
				pagerCmd = pager
				break
			}
		}
	}

	if pagerCmd == "" {
		fmt.Print(content)
		return nil
	}

	args := []string{}
	if strings.Contains(pagerCmd, "less") {
		args = []string{"-R", "-S", "-F", "-X"}
	}

	cmd := exec.Command(pagerCmd, args...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
