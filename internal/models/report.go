package models

import "github.com/hyperjump/kiji/internal/sentiment"

// ResearchHit is one ranked article in a report.
type ResearchHit struct {
	Rank             int      `json:"rank"`
	Index            int      `json:"index"` // position in the candidate window
	Article          *Article `json:"article"`
	Score            float64  `json:"score"`         // raw dot product
	MatchPercent     float64  `json:"match_percent"` // score*100, one decimal
	Progress         float64  `json:"progress"`      // score clamped to [0, 1]
	HighlightedTitle string   `json:"highlighted_title"`
}

// Summary is the executive summary of a report.
type Summary struct {
	TopTitle string              `json:"top_title"`
	Mood     sentiment.Sentiment `json:"mood"`
	Text     string              `json:"text"`
}

// TrendPoint is the number of hits published on one day (YYYY-MM-DD, UTC).
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Report is the result of a research query. Summary is nil when there are no hits.
type Report struct {
	ID         string         `json:"id"`
	Query      string         `json:"query"`
	Hits       []*ResearchHit `json:"hits"`
	Summary    *Summary       `json:"summary,omitempty"`
	Trend      []TrendPoint   `json:"trend"`
	Depth      int            `json:"depth"`
	WindowSize int            `json:"window_size"`
	QueryTime  int64          `json:"query_time_ms"`
}
