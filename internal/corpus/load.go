package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/sentiment"
)

// Dataset formats.
const (
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// DefaultTable is the SQLite table read when none is configured.
const DefaultTable = "articles"

// LoadOptions controls how a dataset is read.
type LoadOptions struct {
	Format     string // empty detects from the file extension
	Sheet      string // XLSX sheet; empty uses the first sheet
	Table      string // SQLite table; empty uses DefaultTable
	Classifier sentiment.Classifier
}

// table is a header row plus data rows, as read from any format.
type table struct {
	header []string
	rows   [][]string
}

// Load reads the dataset at path and labels every article's sentiment from its description.
func Load(ctx context.Context, path string, opts LoadOptions) (*Corpus, error) {
	format := opts.Format
	if format == "" {
		format = DetectFormat(path)
	}

	var (
		t   *table
		err error
	)
	switch format {
	case FormatCSV:
		t, err = readCSV(path)
	case FormatXLSX:
		t, err = readXLSX(path, opts.Sheet)
	case FormatSQLite:
		table := opts.Table
		if table == "" {
			table = DefaultTable
		}
		t, err = readSQLite(ctx, path, table)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = sentiment.NewKeywordClassifier(nil, nil)
	}
	articles, err := t.articles(classifier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return New(articles, path), nil
}

// DetectFormat maps a file extension to a dataset format, or "" if unknown.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return ""
	}
}

func (t *table) articles(classifier sentiment.Classifier) ([]models.Article, error) {
	cols := make(map[string]int, len(t.header))
	for i, name := range t.header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	if _, ok := cols["description"]; !ok {
		return nil, ErrNoDescription
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	articles := make([]models.Article, 0, len(t.rows))
	for _, row := range t.rows {
		a := models.Article{
			Title:       cell(row, "title"),
			Description: cell(row, "description"),
			Link:        cell(row, "link"),
			GUID:        cell(row, "guid"),
			PubDate:     parseDate(cell(row, "pubdate")),
		}
		a.Sentiment = classifier.Classify(a.Description)
		articles = append(articles, a)
	}
	return articles, nil
}

var dateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	time.RFC3339Nano,
	time.RFC822,
	time.RFC822Z,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01-02-06",
	"01/02/2006",
	"02 Jan 2006",
}

// parseDate tries common dataset date layouts; values that match none yield nil.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
