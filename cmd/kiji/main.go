// Package main is the kiji CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kiji/internal/cli"
	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/corpus"
	"github.com/hyperjump/kiji/internal/embedding"
	"github.com/hyperjump/kiji/internal/metrics"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/research"
	"github.com/hyperjump/kiji/internal/sentiment"
	"github.com/hyperjump/kiji/internal/server"
	"github.com/hyperjump/kiji/internal/watcher"
	"github.com/hyperjump/kiji/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/kiji/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// errServerUnreachable marks a request that never got an HTTP response.
var errServerUnreachable = errors.New("server unreachable")

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "research":
		runResearch()
	case "stats":
		runStats()
	case "hotspots":
		runHotspots()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("kiji version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (dataset reloads, encode batches, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode, cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("provider", cfg.Embedding.Provider),
	)
	metrics.Register()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(ctx)
	defer watchCancel()
	if cfg.Corpus.WatchOrDefault() {
		store := components.Store
		watchSvc := watcher.NewWatcher(cfg.Corpus.Path, func(path string) {
			if err := store.Reload(watchCtx); err != nil {
				logger.Warn("dataset reload failed", zap.String("path", path), zap.Error(err))
			}
		}, watcher.WithLogger(logger))
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Warn("dataset watcher not started", zap.String("path", cfg.Corpus.Path), zap.Error(err))
		}
	}

	srv := server.NewServer(components.Engine, components.Store, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

// printResearchUsage prints research subcommand usage.
func printResearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kiji research [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Articles are ranked by how closely their description matches the query meaning.
  • --depth sets how many of the first dataset rows are scanned.
  • --results sets how many articles are returned (clamped to the configured maximum).

Examples:
  kiji research climate policy
  kiji research --results 5 --depth 500 "interest rates"
  kiji research --output json artificial intelligence
`)
}

// buildQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runResearch() {
	fs := flag.NewFlagSet("research", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = research directly against the dataset)")
	results := fs.Int("results", 0, "number of articles to return (0 = configured default)")
	depth := fs.Int("depth", 0, "number of dataset rows to scan (0 = configured default)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printResearchUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	queryStr := buildQuery(fs.Args())
	if queryStr == "" {
		printResearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	query := &models.ResearchQuery{Query: queryStr, Results: *results, Depth: *depth}

	if *serverURL != "" {
		report, err := researchViaHTTP(*serverURL, query)
		switch {
		case err == nil:
			writeReportOrExit(report, format)
			return
		case !errors.Is(err, errServerUnreachable):
			fmt.Fprintf(os.Stderr, "Research failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Server not reachable at %s; researching directly.\n", *serverURL)
	}

	// Direct mode: load the model and dataset in-process.
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	report, err := components.Engine.Research(ctx, query)
	if err != nil {
		if errors.Is(err, research.ErrEmptyQuery) {
			fmt.Fprintf(os.Stderr, "Research failed: %v\n", err)
		} else {
			logger.Debug("research failed", zap.Error(err))
			fmt.Fprintln(os.Stderr, "No results. Try again or rephrase the query.")
		}
		os.Exit(1)
	}
	writeReportOrExit(report, format)
}

func writeReportOrExit(report *models.Report, format cli.OutputFormat) {
	if err := cli.WriteReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func researchViaHTTP(serverURL string, query *models.ResearchQuery) (*models.Report, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/research", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errServerUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp)
	}
	var report models.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &report, nil
}

func getJSON(serverURL, path string, out any) error {
	resp, err := http.Get(serverURL + path)
	if err != nil {
		return fmt.Errorf("%w: %v", errServerUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// httpError turns a non-200 response into an error carrying the server's message.
func httpError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the dataset directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var stats corpus.Stats
	if *serverURL != "" {
		err = getJSON(*serverURL, "/api/v1/stats", &stats)
	}
	if *serverURL == "" || errors.Is(err, errServerUnreachable) {
		// The dataset is read without loading any embedding model.
		var cfg *config.Config
		cfg, _, err = loadConfig(*configPath)
		if err == nil {
			var c *corpus.Corpus
			c, err = corpus.Load(context.Background(), cfg.Corpus.Path, loadOptions(cfg))
			stats = c.Stats()
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteStats(os.Stdout, stats, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path to create")
	force := fs.Bool("force", false, "overwrite an existing config file")
	_ = fs.Parse(os.Args[2:])

	if err := writeDefaultConfig(*configPath, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", *configPath)
}

// writeDefaultConfig saves a config with every default filled in. An existing file
// is left alone unless force is set.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return config.Save(path, cfg)
}

func runHotspots() {
	fs := flag.NewFlagSet("hotspots", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var hotspots []string
	if *serverURL != "" {
		var out struct {
			Hotspots []string `json:"hotspots"`
		}
		err = getJSON(*serverURL, "/api/v1/hotspots", &out)
		hotspots = out.Hotspots
	}
	if *serverURL == "" || errors.Is(err, errServerUnreachable) {
		var cfg *config.Config
		cfg, _, err = loadConfig(*configPath)
		if err == nil {
			hotspots = cfg.Search.Hotspots
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hotspots failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteHotspots(os.Stdout, hotspots, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Embedder embedding.Embedder
	Store    *corpus.Store
	Engine   *research.Engine
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func loadOptions(cfg *config.Config) corpus.LoadOptions {
	return corpus.LoadOptions{
		Format:     cfg.Corpus.Format,
		Sheet:      cfg.Corpus.Sheet,
		Table:      cfg.Corpus.Table,
		Classifier: sentiment.NewKeywordClassifier(cfg.Sentiment.Positive, cfg.Sentiment.Negative),
	}
}

func embeddingOptions(cfg *config.Config) embedding.Options {
	e := cfg.Embedding
	return embedding.Options{
		Provider:   e.Provider,
		Dimensions: e.Dimensions,
		CacheSize:  e.CacheSize,
		ONNX: embedding.ONNXOptions{
			ModelPath:   e.ModelPath,
			VocabPath:   e.VocabPath,
			LibraryPath: e.LibraryPath,
			OutputName:  e.OutputName,
			Pooling:     e.Pooling,
			Dimensions:  e.Dimensions,
			MaxTokens:   e.MaxTokens,
			Workers:     e.Workers,
		},
		OpenAI: embedding.OpenAIOptions{
			APIKey:     e.OpenAI.APIKey,
			BaseURL:    e.OpenAI.BaseURL,
			Model:      e.OpenAI.Model,
			Dimensions: e.Dimensions,
		},
	}
}

func limits(cfg *config.Config) models.Limits {
	return models.Limits{
		DefaultResults: cfg.Search.DefaultResults,
		MaxResults:     cfg.Search.MaxResults,
		DefaultDepth:   cfg.Search.DefaultDepth,
		DepthOptions:   cfg.Search.DepthOptions,
	}
}

// initializeComponents loads the model and the dataset. A model that cannot be
// loaded is fatal; a dataset that cannot be read leaves the engine answering
// ErrNoCorpus until a reload succeeds.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	embedder, err := embedding.New(embeddingOptions(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	if err := embedder.Initialize(ctx); err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	logger.Info("embedder initialized",
		zap.String("provider", cfg.Embedding.Provider),
		zap.Int("dimensions", embedder.Dimensions()))

	store := corpus.NewStore(cfg.Corpus.Path, loadOptions(cfg), corpus.WithLogger(logger))
	if err := store.Reload(ctx); err != nil {
		logger.Warn("dataset not loaded", zap.String("path", cfg.Corpus.Path), zap.Error(err))
	}

	engine := research.NewEngine(store, embedder, limits(cfg),
		research.WithLogger(logger),
		research.WithHotspots(cfg.Search.Hotspots),
	)
	return &Components{Embedder: embedder, Store: store, Engine: engine}, nil
}

func printUsage() {
	fmt.Println(`kiji - Semantic news research

Usage:
  kiji server [flags]             Start the HTTP server
  kiji research [flags] <query>   Rank news articles by meaning
  kiji stats [flags]              Show dataset size and sentiment distribution
  kiji hotspots [flags]           List suggested research topics
  kiji init [flags]               Write a default config file
  kiji version                    Show version
  kiji help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kiji/config.yaml)
  --debug            Enable debug logging

Research Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to research directly.
  --results int      Number of articles to return (default from config)
  --depth int        Number of dataset rows to scan (default from config)
  --output string    Output format: text, compact, or json (default: text)

Stats / Hotspots Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8080)
  --output string    Output format: text or json (default: text)

Init Flags:
  --config string    Config file path to create (default: /usr/local/etc/kiji/config.yaml)
  --force            Overwrite an existing config file

Examples:
  kiji init --config ./config.yaml
  kiji server
  kiji research "climate policy"
  kiji research --results 5 --depth 500 interest rates
  kiji research --output json "artificial intelligence"
  kiji stats
  kiji hotspots --output json`)
}
