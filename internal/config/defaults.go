package config

import (
	"slices"

	"github.com/hyperjump/kiji/internal/sentiment"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = "/usr/local/var/kiji/data/bbc_news.csv"
	}
	if cfg.Corpus.Table == "" {
		cfg.Corpus.Table = "articles"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/kiji/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.OutputName == "" {
		cfg.Embedding.OutputName = "last_hidden_state"
	}
	if cfg.Embedding.Pooling == "" {
		cfg.Embedding.Pooling = "mean"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.OpenAI.Model == "" {
		cfg.Embedding.OpenAI.Model = "text-embedding-3-small"
	}
	if cfg.Search.DefaultResults == 0 {
		cfg.Search.DefaultResults = 3
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 10
	}
	if cfg.Search.DepthOptions == nil {
		cfg.Search.DepthOptions = []int{100, 200, 300, 500}
	}
	if cfg.Search.DefaultDepth == 0 {
		cfg.Search.DefaultDepth = 300
	}
	// The default depth is always selectable.
	if !slices.Contains(cfg.Search.DepthOptions, cfg.Search.DefaultDepth) {
		cfg.Search.DepthOptions = append(cfg.Search.DepthOptions, cfg.Search.DefaultDepth)
		slices.Sort(cfg.Search.DepthOptions)
	}
	if cfg.Search.Hotspots == nil {
		cfg.Search.Hotspots = []string{"Technology", "Economy", "Climate", "Politics", "Health"}
	}
	if cfg.Sentiment.Positive == nil {
		cfg.Sentiment.Positive = slices.Clone(sentiment.DefaultPositive)
	}
	if cfg.Sentiment.Negative == nil {
		cfg.Sentiment.Negative = slices.Clone(sentiment.DefaultNegative)
	}
	// Watch defaults to true when unset (nil).
	if cfg.Corpus.Watch == nil {
		t := true
		cfg.Corpus.Watch = &t
	}
}
