// Package cli renders research reports, corpus stats and hotspots for the kiji command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hyperjump/kiji/internal/corpus"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/sentiment"
	"github.com/hyperjump/kiji/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one line per hit.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, compact, json)", s)
	}
}

// WriteReport writes a research report to w in the given format.
// Unknown formats fall back to text.
func WriteReport(w io.Writer, report *models.Report, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, report)
	case OutputCompact:
		writeReportCompact(w, report)
		return nil
	default:
		writeReportText(w, report)
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReportText(w io.Writer, report *models.Report) {
	fmt.Fprintf(w, "\nResearch: %s\n", report.Query)
	fmt.Fprintf(w, "Scanned %d articles (depth %d) in %dms, %d results\n\n",
		report.WindowSize, report.Depth, report.QueryTime, len(report.Hits))
	if report.Summary == nil {
		fmt.Fprintln(w, "No results.")
		return
	}

	fmt.Fprintf(w, "Executive Summary: %s\n", report.Summary.Text)
	if len(report.Trend) > 0 {
		fmt.Fprintln(w, "\nReporting Trend:")
		for _, p := range report.Trend {
			fmt.Fprintf(w, "  %s  %s %d\n", p.Date, strings.Repeat("#", p.Count), p.Count)
		}
	}
	fmt.Fprintln(w)
	for _, hit := range report.Hits {
		writeOneHit(w, hit)
	}
}

func writeOneHit(w io.Writer, hit *models.ResearchHit) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Match: %.1f%% | Score: %.4f | Sentiment: %s\n",
		hit.Rank, hit.MatchPercent, hit.Score, hit.Article.Sentiment)
	if hit.Article.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", hit.Article.Title)
	}
	if hit.Article.PubDate != nil {
		fmt.Fprintf(w, "Published: %s\n", hit.Article.PubDate.Format("2006-01-02 15:04"))
	}
	if hit.Article.Link != "" {
		fmt.Fprintf(w, "Link: %s\n", hit.Article.Link)
	}
	fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(hit.Article.Description, 300))
}

func writeReportCompact(w io.Writer, report *models.Report) {
	if report.Summary != nil {
		fmt.Fprintf(w, "%s [mood: %s]\n", report.Query, report.Summary.Mood)
	}
	for _, hit := range report.Hits {
		fmt.Fprintf(w, "%d. [%5.1f%%] %s (%s)\n", hit.Rank, hit.MatchPercent, TruncateWords(hit.Article.Title, 12), hit.Article.Sentiment)
	}
}

// WriteStats writes corpus statistics to w.
func WriteStats(w io.Writer, stats corpus.Stats, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, stats)
	}
	fmt.Fprintf(w, "Total Articles: %d\n", stats.Total)
	if stats.Source != "" {
		fmt.Fprintf(w, "Source: %s\n", stats.Source)
	}
	fmt.Fprintln(w, "Sentiment Distribution:")
	labels := make([]sentiment.Sentiment, 0, len(stats.Sentiment))
	for s := range stats.Sentiment {
		labels = append(labels, s)
	}
	// Most frequent first, as value_counts orders them.
	slices.SortFunc(labels, func(a, b sentiment.Sentiment) int {
		if d := stats.Sentiment[b] - stats.Sentiment[a]; d != 0 {
			return d
		}
		return strings.Compare(string(a), string(b))
	})
	for _, s := range labels {
		fmt.Fprintf(w, "  %-9s %d\n", s, stats.Sentiment[s])
	}
	return nil
}

// WriteHotspots writes the suggested topics to w.
func WriteHotspots(w io.Writer, topics []string, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string][]string{"hotspots": topics})
	}
	for _, t := range topics {
		fmt.Fprintln(w, t)
	}
	return nil
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
