package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kiji/internal/corpus"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/sentiment"
)

func sampleReport() *models.Report {
	pub := time.Date(2024, 3, 7, 8, 1, 0, 0, time.UTC)
	return &models.Report{
		ID:         "id-1",
		Query:      "climate",
		Depth:      300,
		WindowSize: 300,
		QueryTime:  42,
		Hits: []*models.ResearchHit{
			{
				Rank:  1,
				Index: 12,
				Article: &models.Article{
					Title:       "Climate talks stall",
					Description: "Negotiators fail to agree",
					Link:        "https://bbc.co.uk/1",
					PubDate:     &pub,
					Sentiment:   sentiment.Negative,
				},
				Score:            0.8734,
				MatchPercent:     87.3,
				Progress:         0.8734,
				HighlightedTitle: "<mark>Climate</mark> talks stall",
			},
		},
		Summary: &models.Summary{
			TopTitle: "Climate talks stall",
			Mood:     sentiment.Negative,
			Text:     "The top reports focus on Climate talks stall. Overall mood is Negative.",
		},
		Trend: []models.TrendPoint{{Date: "2024-03-07", Count: 1}},
	}
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleReport(), OutputJSON); err != nil {
		t.Fatalf("WriteReport(json): %v", err)
	}
	var decoded models.Report
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "climate" || decoded.QueryTime != 42 || len(decoded.Hits) != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Hits[0].Article.Sentiment != sentiment.Negative || decoded.Hits[0].HighlightedTitle == "" {
		t.Errorf("decoded hit = %+v", decoded.Hits[0])
	}
}

func TestWriteReport_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleReport(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{
		"Research: climate", "Scanned 300 articles", "42ms", "Overall mood is Negative",
		"Reporting Trend", "2024-03-07", "Rank: 1", "Match: 87.3%", "Climate talks stall",
		"https://bbc.co.uk/1", "Negotiators fail to agree",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
	if strings.Contains(out, "<mark>") {
		t.Error("text output should not contain HTML markup")
	}
}

func TestWriteReport_textEmpty(t *testing.T) {
	var buf bytes.Buffer
	report := &models.Report{Query: "nothing", Hits: []*models.ResearchHit{}}
	if err := WriteReport(&buf, report, OutputFormat("unknown")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No results.") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestWriteReport_compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleReport(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	want := "climate [mood: Negative]\n1. [ 87.3%] Climate talks stall (Negative)\n"
	if buf.String() != want {
		t.Errorf("compact output = %q, want %q", buf.String(), want)
	}
}

func TestWriteStats(t *testing.T) {
	stats := corpus.Stats{
		Total:     6,
		Sentiment: map[sentiment.Sentiment]int{sentiment.Neutral: 3, sentiment.Positive: 2, sentiment.Negative: 1},
	}
	var buf bytes.Buffer
	if err := WriteStats(&buf, stats, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Total Articles: 6") {
		t.Errorf("missing total:\n%s", out)
	}
	iNeutral, iPositive, iNegative := strings.Index(out, "Neutral"), strings.Index(out, "Positive"), strings.Index(out, "Negative")
	if !(iNeutral < iPositive && iPositive < iNegative) {
		t.Errorf("labels should be ordered by count:\n%s", out)
	}

	buf.Reset()
	if err := WriteStats(&buf, stats, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded corpus.Stats
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || decoded.Total != 6 || decoded.Sentiment[sentiment.Neutral] != 3 {
		t.Errorf("json stats = %+v, %v", decoded, err)
	}
}

func TestWriteHotspots(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHotspots(&buf, []string{"Technology", "Economy"}, OutputText); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Technology\nEconomy\n" {
		t.Errorf("got %q", buf.String())
	}
	buf.Reset()
	if err := WriteHotspots(&buf, []string{"Health"}, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"hotspots"`) {
		t.Errorf("got %q", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": OutputText, "TEXT": OutputText, "compact": OutputCompact, "json": OutputJSON} {
		got, err := ParseOutputFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxWords int
		want     string
	}{
		{"empty", "", 3, ""},
		{"few words", "one two", 3, "one two"},
		{"exact", "one two three", 3, "one two three"},
		{"more", "one two three four", 3, "one two three..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateWords(tt.s, tt.maxWords); got != tt.want {
				t.Errorf("TruncateWords(%q, %d) = %q, want %q", tt.s, tt.maxWords, got, tt.want)
			}
		})
	}
}
