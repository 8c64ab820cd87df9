package corpus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kiji/internal/metrics"
)

// Store holds the current corpus. Readers get a consistent snapshot while Reload
// swaps in a freshly loaded one.
type Store struct {
	path    string
	opts    LoadOptions
	logger  *zap.Logger
	current atomic.Pointer[Corpus]
	reload  sync.Mutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a store for the dataset at path. Call Reload to load it.
func NewStore(path string, opts LoadOptions, options ...StoreOption) *Store {
	s := &Store{path: path, opts: opts, logger: zap.NewNop()}
	for _, o := range options {
		o(s)
	}
	return s
}

// Path returns the dataset path.
func (s *Store) Path() string {
	return s.path
}

// Current returns the loaded corpus, or nil before the first successful Reload.
func (s *Store) Current() *Corpus {
	return s.current.Load()
}

// Swap installs c and returns the previous corpus.
func (s *Store) Swap(c *Corpus) *Corpus {
	metrics.CorpusArticles.Set(float64(c.Len()))
	return s.current.Swap(c)
}

// Reload reads the dataset again. On failure the current corpus is kept.
func (s *Store) Reload(ctx context.Context) error {
	s.reload.Lock()
	defer s.reload.Unlock()

	start := time.Now()
	c, err := Load(ctx, s.path, s.opts)
	if err != nil {
		s.logger.Error("corpus load failed", zap.String("path", s.path), zap.Error(err))
		return err
	}
	prev := s.Swap(c)
	s.logger.Info("corpus loaded",
		zap.String("path", s.path),
		zap.Int("articles", c.Len()),
		zap.Int("previous", prev.Len()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}
