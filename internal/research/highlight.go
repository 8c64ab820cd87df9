package research

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/kiji/internal/models"
)

// Highlight HTML-escapes title and wraps every case-insensitive occurrence of query in <mark>.
// The query is matched literally against the unescaped title.
func Highlight(title, query string) string {
	if query == "" {
		return html.EscapeString(title)
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return html.EscapeString(title)
	}
	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(title, -1) {
		b.WriteString(html.EscapeString(title[last:m[0]]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(title[m[0]:m[1]]))
		b.WriteString("</mark>")
		last = m[1]
	}
	b.WriteString(html.EscapeString(title[last:]))
	return b.String()
}

// Trend counts hits per UTC day from the earliest to the latest publication date,
// including days with no hits. Hits without a date are ignored.
func Trend(hits []*models.ResearchHit) []models.TrendPoint {
	counts := make(map[time.Time]int)
	for _, h := range hits {
		if h.Article == nil || h.Article.PubDate == nil {
			continue
		}
		counts[day(*h.Article.PubDate)]++
	}
	if len(counts) == 0 {
		return []models.TrendPoint{}
	}

	days := make([]time.Time, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var trend []models.TrendPoint
	for d := days[0]; !d.After(days[len(days)-1]); d = d.AddDate(0, 0, 1) {
		trend = append(trend, models.TrendPoint{Date: d.Format(time.DateOnly), Count: counts[d]})
	}
	return trend
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
