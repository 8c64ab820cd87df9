package research

import (
	"testing"

	"github.com/hyperjump/kiji/internal/models"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		title string
		query string
		want  string
	}{
		{"case insensitive", "Economy grows; economy slows", "ECONOMY", "<mark>Economy</mark> grows; <mark>economy</mark> slows"},
		{"no match", "Rain expected", "climate", "Rain expected"},
		{"regex metacharacters literal", "Is C++ (still) popular?", "c++ (still)", "Is <mark>C++ (still)</mark> popular?"},
		{"dot is literal", "a.b and axb", "a.b", "<mark>a.b</mark> and axb"},
		{"title escaped", "<script>x</script>", "x", "&lt;script&gt;<mark>x</mark>&lt;/script&gt;"},
		{"query with ampersand", "Tom & Jerry", "tom & jerry", "<mark>Tom &amp; Jerry</mark>"},
		{"empty query", "Plain", "", "Plain"},
		{"query does not match inside entities", "a < b", "lt", "a &lt; b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Highlight(tt.title, tt.query); got != tt.want {
				t.Errorf("Highlight(%q, %q) = %q, want %q", tt.title, tt.query, got, tt.want)
			}
		})
	}
}

func TestTrend(t *testing.T) {
	hits := []*models.ResearchHit{
		{Article: &models.Article{PubDate: date("2024-02-28")}},
		{Article: &models.Article{}},
		{Article: &models.Article{PubDate: date("2024-03-01")}},
		{Article: &models.Article{PubDate: date("2024-02-28")}},
	}
	got := Trend(hits)
	want := []models.TrendPoint{{Date: "2024-02-28", Count: 2}, {Date: "2024-02-29", Count: 0}, {Date: "2024-03-01", Count: 1}}
	if len(got) != len(want) {
		t.Fatalf("Trend = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Trend[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	if got := Trend([]*models.ResearchHit{{Article: &models.Article{}}}); got == nil || len(got) != 0 {
		t.Errorf("Trend without dates = %#v, want empty slice", got)
	}
}
