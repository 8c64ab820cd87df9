// Package corpus loads news articles from tabular datasets and holds the current corpus.
package corpus

import (
	"errors"
	"time"

	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/sentiment"
)

var (
	// ErrUnsupportedFormat is returned for dataset files that are not CSV, XLSX or SQLite.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrNoDescription is returned when a dataset has no description column.
	ErrNoDescription = errors.New("dataset has no description column")
)

// Corpus is an immutable, ordered set of articles.
type Corpus struct {
	articles []models.Article
	source   string
	loadedAt time.Time
}

// New wraps articles. The slice must not be modified afterwards.
func New(articles []models.Article, source string) *Corpus {
	return &Corpus{articles: articles, source: source, loadedAt: time.Now()}
}

// Len returns the number of articles.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.articles)
}

// Article returns the article at i.
func (c *Corpus) Article(i int) models.Article {
	return c.articles[i]
}

// Window returns the first min(n, Len()) articles in dataset order.
// The returned slice shares storage with the corpus and must be treated as read-only.
func (c *Corpus) Window(n int) []models.Article {
	if c == nil || n <= 0 {
		return nil
	}
	return c.articles[:min(n, len(c.articles))]
}

// Stats summarizes a corpus.
type Stats struct {
	Total     int                         `json:"total_articles"`
	Sentiment map[sentiment.Sentiment]int `json:"sentiment_distribution"`
	Source    string                      `json:"source,omitempty"`
	LoadedAt  time.Time                   `json:"loaded_at"`
}

// Stats returns the article count and sentiment distribution.
func (c *Corpus) Stats() Stats {
	if c == nil {
		return Stats{Sentiment: map[sentiment.Sentiment]int{}}
	}
	labels := make([]sentiment.Sentiment, len(c.articles))
	for i, a := range c.articles {
		labels[i] = a.Sentiment
	}
	return Stats{
		Total:     len(c.articles),
		Sentiment: sentiment.Distribution(labels),
		Source:    c.source,
		LoadedAt:  c.loadedAt,
	}
}
