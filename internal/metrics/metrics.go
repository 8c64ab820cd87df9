// Package metrics holds the Prometheus collectors for encoding, retrieval and HTTP.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kiji"

// Encoding metrics.
var (
	EncodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_requests_total",
			Help:      "Total number of Encode calls",
		},
		[]string{"provider", "status"},
	)

	EncodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Encode call duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	EncodeTextsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_texts_total",
			Help:      "Total number of texts sent to an embedder",
		},
		[]string{"provider"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// Research metrics.
var (
	ResearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "research_requests_total",
			Help:      "Total number of research queries",
		},
		[]string{"status"},
	)

	ResearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "research_duration_seconds",
			Help:      "End-to-end research query duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CandidateWindowSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidate_window_size",
			Help:      "Number of articles scored per query",
			Buckets:   prometheus.LinearBuckets(100, 100, 10),
		},
	)

	CorpusArticles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_articles",
			Help:      "Number of articles in the loaded corpus",
		},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EncodeRequestsTotal,
			EncodeDuration,
			EncodeTextsTotal,
			EmbeddingCacheTotal,
			ResearchRequestsTotal,
			ResearchDuration,
			CandidateWindowSize,
			CorpusArticles,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}
