// Package research answers topic queries against the news corpus: it ranks the candidate
// window by embedding similarity and assembles a report with summary, mood and trend.
package research

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kiji/internal/corpus"
	"github.com/hyperjump/kiji/internal/embedding"
	"github.com/hyperjump/kiji/internal/metrics"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/retrieval"
	"github.com/hyperjump/kiji/internal/sentiment"
)

var (
	// ErrEmptyQuery is returned for blank queries.
	ErrEmptyQuery = models.ErrEmptyQuery
	// ErrNoCorpus is returned when no dataset has been loaded.
	ErrNoCorpus = errors.New("no corpus loaded")
)

// CorpusSource provides the current corpus snapshot.
type CorpusSource interface {
	Current() *corpus.Corpus
}

// Engine runs research queries.
type Engine struct {
	source    CorpusSource
	embedder  embedding.Embedder
	retriever *retrieval.Retriever
	limits    models.Limits
	hotspots  []string
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithHotspots sets the suggested topics returned by Hotspots.
func WithHotspots(topics []string) Option {
	return func(e *Engine) { e.hotspots = topics }
}

// NewEngine creates an engine. The embedder must already be initialized.
func NewEngine(source CorpusSource, embedder embedding.Embedder, limits models.Limits, opts ...Option) *Engine {
	e := &Engine{
		source:    source,
		embedder:  embedder,
		retriever: retrieval.NewRetriever(),
		limits:    limits,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Research ranks the first Depth articles against the query and returns the top Results.
// The query is validated and normalized in place.
func (e *Engine) Research(ctx context.Context, q *models.ResearchQuery) (*models.Report, error) {
	start := time.Now()
	report, err := e.research(ctx, q)
	metrics.ResearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ResearchRequestsTotal.WithLabelValues("error").Inc()
		e.logger.Debug("research failed", zap.String("query", q.Query), zap.Error(err))
		return nil, err
	}
	report.QueryTime = time.Since(start).Milliseconds()
	status := "success"
	if len(report.Hits) == 0 {
		status = "empty"
	}
	metrics.ResearchRequestsTotal.WithLabelValues(status).Inc()
	e.logger.Debug("research done",
		zap.String("id", report.ID),
		zap.String("query", report.Query),
		zap.Int("window", report.WindowSize),
		zap.Int("hits", len(report.Hits)),
		zap.Int64("took_ms", report.QueryTime),
	)
	return report, nil
}

func (e *Engine) research(ctx context.Context, q *models.ResearchQuery) (*models.Report, error) {
	if err := q.Validate(e.limits); err != nil {
		return nil, err
	}
	c := e.source.Current()
	if c == nil {
		return nil, ErrNoCorpus
	}

	window := c.Window(q.Depth)
	report := &models.Report{
		ID:         uuid.NewString(),
		Query:      q.Query,
		Hits:       []*models.ResearchHit{},
		Trend:      []models.TrendPoint{},
		Depth:      q.Depth,
		WindowSize: len(window),
	}
	metrics.CandidateWindowSize.Observe(float64(len(window)))
	if len(window) == 0 {
		return report, nil
	}

	texts := make([]string, len(window)+1)
	texts[0] = q.Query
	for i, a := range window {
		texts[i+1] = a.Description
	}
	vectors, err := e.embedder.Encode(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("encode: got %d vectors for %d texts: %w", len(vectors), len(texts), embedding.ErrProvider)
	}

	docs := make([]retrieval.Document, len(window))
	for i := range window {
		docs[i] = retrieval.Document{Index: i, Text: window[i].Description, Metadata: &window[i]}
	}
	candidates, err := retrieval.NewCandidateSet(docs, vectors[1:])
	if err != nil {
		return nil, err
	}
	ranked, err := e.retriever.TopK(ctx, vectors[0], candidates, q.Results)
	if err != nil {
		return nil, err
	}

	labels := make([]sentiment.Sentiment, len(ranked))
	for rank, hit := range ranked {
		article := window[hit.Index]
		report.Hits = append(report.Hits, &models.ResearchHit{
			Rank:             rank + 1,
			Index:            hit.Index,
			Article:          &article,
			Score:            hit.Score,
			MatchPercent:     MatchPercent(hit.Score),
			Progress:         Progress(hit.Score),
			HighlightedTitle: Highlight(article.Title, q.Query),
		})
		labels[rank] = article.Sentiment
	}
	report.Summary = summarize(report.Hits, labels)
	report.Trend = Trend(report.Hits)
	return report, nil
}

// Stats returns the current corpus statistics.
func (e *Engine) Stats() corpus.Stats {
	return e.source.Current().Stats()
}

// Hotspots returns the suggested research topics.
func (e *Engine) Hotspots() []string {
	return e.hotspots
}

// MatchPercent is the score as a percentage rounded to one decimal.
func MatchPercent(score float64) float64 {
	return math.Round(score*1000) / 10
}

// Progress clamps the score to [0, 1]. NaN maps to 0.
func Progress(score float64) float64 {
	if !(score > 0) {
		return 0
	}
	return math.Min(score, 1)
}

func summarize(hits []*models.ResearchHit, labels []sentiment.Sentiment) *models.Summary {
	if len(hits) == 0 {
		return nil
	}
	mood := sentiment.Mode(labels)
	top := hits[0].Article.Title
	return &models.Summary{
		TopTitle: top,
		Mood:     mood,
		Text:     fmt.Sprintf("The top reports focus on %s. Overall mood is %s.", top, mood),
	}
}
