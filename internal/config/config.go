// Package config provides configuration loading and structs for the kiji server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Server    ServerConfig    `yaml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Sentiment SentimentConfig `yaml:"sentiment"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CorpusConfig locates the news dataset.
type CorpusConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // csv | xlsx | sqlite; empty detects from the extension
	Sheet  string `yaml:"sheet"`
	Table  string `yaml:"table"`
	Watch  *bool  `yaml:"watch"`
}

// WatchOrDefault returns whether to reload the dataset on change; defaults to true when unset.
func (c *CorpusConfig) WatchOrDefault() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return true
}

// EmbeddingConfig holds embedder settings.
type EmbeddingConfig struct {
	Provider    string       `yaml:"provider"` // onnx | openai | hash
	ModelPath   string       `yaml:"model_path"`
	VocabPath   string       `yaml:"vocab_path"`
	LibraryPath string       `yaml:"library_path"`
	OutputName  string       `yaml:"output_name"`
	Pooling     string       `yaml:"pooling"`
	Dimensions  int          `yaml:"dimensions"`
	MaxTokens   int          `yaml:"max_tokens"`
	CacheSize   int          `yaml:"cache_size"`
	Workers     int          `yaml:"workers"` // 0 = GOMAXPROCS
	OpenAI      OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig holds OpenAI-compatible API settings.
// An empty APIKey falls back to the OPENAI_API_KEY environment variable.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// SearchConfig holds research defaults and bounds.
type SearchConfig struct {
	DefaultResults int      `yaml:"default_results"`
	MaxResults     int      `yaml:"max_results"`
	DefaultDepth   int      `yaml:"default_depth"`
	DepthOptions   []int    `yaml:"depth_options"`
	Hotspots       []string `yaml:"hotspots"`
}

// SentimentConfig holds the keyword lists of the sentiment classifier.
type SentimentConfig struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// Load reads and parses the config file at path, applies defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.Path = expandPath(cfg.Corpus.Path, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	if cfg.Embedding.VocabPath != "" {
		cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, configDir)
	}
	if cfg.Embedding.LibraryPath != "" {
		cfg.Embedding.LibraryPath = expandPath(cfg.Embedding.LibraryPath, configDir)
	}
	if cfg.Embedding.OpenAI.APIKey == "" {
		cfg.Embedding.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "onnx", "openai", "hash":
	default:
		return fmt.Errorf("invalid embedding.provider %q (supported: onnx, openai, hash)", c.Embedding.Provider)
	}
	if c.Search.MaxResults < c.Search.DefaultResults {
		return fmt.Errorf("search.max_results (%d) is below search.default_results (%d)", c.Search.MaxResults, c.Search.DefaultResults)
	}
	for _, d := range c.Search.DepthOptions {
		if d <= 0 {
			return fmt.Errorf("search.depth_options must be positive, got %d", d)
		}
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
