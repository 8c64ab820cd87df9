package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/corpus"
	"github.com/hyperjump/kiji/internal/embedding"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/research"
	"github.com/hyperjump/kiji/internal/server"
)

const (
	e2eResults    = 10
	e2eItems      = 60
	e2eDimensions = 512
)

var e2eLimits = models.Limits{DefaultResults: 3, MaxResults: e2eResults, DefaultDepth: e2eItems}

func newEngine(t *testing.T, path string) (*research.Engine, *corpus.Store) {
	t.Helper()
	embedder, err := embedding.New(embedding.Options{
		Provider:   string(embedding.ProviderHash),
		Dimensions: e2eDimensions,
		CacheSize:  500,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = embedder.Close() })
	if err := embedder.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	store := corpus.NewStore(path, corpus.LoadOptions{})
	if err := store.Reload(context.Background()); err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	return research.NewEngine(store, embedder, e2eLimits), store
}

func TestE2E_ResearchReturnsCorrectArticles(t *testing.T) {
	dataset := BuildDataset(e2eItems)
	if dataset.TotalQueries == 0 {
		t.Fatal("dataset has no query test cases")
	}
	for _, ext := range SupportedFormats {
		t.Run(ext, func(t *testing.T) {
			path, err := WriteDataset(t.TempDir(), ext, dataset.Items)
			if err != nil {
				t.Fatal(err)
			}
			engine, _ := newEngine(t, path)
			ctx := context.Background()

			for _, tc := range dataset.TestCases {
				t.Run(tc.Description, func(t *testing.T) {
					report, err := engine.Research(ctx, &models.ResearchQuery{Query: tc.Query, Results: e2eResults})
					if err != nil {
						t.Fatalf("research failed: %v", err)
					}
					if report.WindowSize != e2eItems {
						t.Errorf("window size = %d, want %d", report.WindowSize, e2eItems)
					}
					guids := guidsFromReport(report)
					if !containsAny(guids, tc.ExpectedGUIDs) {
						t.Errorf("query %q: expected one of %v in hits, got %v", tc.Query, tc.ExpectedGUIDs, guids)
					}
				})
			}
		})
	}
}

func TestE2E_HTTPResearch(t *testing.T) {
	dataset := BuildDataset(e2eItems)
	path, err := WriteDataset(t.TempDir(), ".csv", dataset.Items)
	if err != nil {
		t.Fatal(err)
	}
	engine, store := newEngine(t, path)
	srv := server.NewServer(engine, store, &config.ServerConfig{Host: "localhost", Port: 0}, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	tc := dataset.TestCases[0]
	body, _ := json.Marshal(models.ResearchQuery{Query: tc.Query, Results: 5})
	resp, err := http.Post(ts.URL+"/api/v1/research", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var report models.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if len(report.Hits) != 5 {
		t.Fatalf("hits = %d, want 5", len(report.Hits))
	}
	if !containsAny(guidsFromReport(&report), tc.ExpectedGUIDs) {
		t.Errorf("expected one of %v in hits", tc.ExpectedGUIDs)
	}
	for i := 1; i < len(report.Hits); i++ {
		prev, cur := report.Hits[i-1], report.Hits[i]
		if cur.Score > prev.Score || (cur.Score == prev.Score && cur.Index < prev.Index) {
			t.Errorf("hits %d and %d out of order: %+v then %+v", i-1, i, prev, cur)
		}
	}
	if report.Summary == nil || report.Summary.TopTitle != report.Hits[0].Article.Title {
		t.Errorf("summary = %+v", report.Summary)
	}

	empty, _ := json.Marshal(models.ResearchQuery{Query: "   "})
	resp2, err := http.Post(ts.URL+"/api/v1/research", "application/json", bytes.NewReader(empty))
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Errorf("blank query status = %d, want 400", resp2.StatusCode)
	}

	resp3, err := http.Get(ts.URL + "/api/v1/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp3.Body.Close()
	var stats corpus.Stats
	if err := json.NewDecoder(resp3.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Total != e2eItems {
		t.Errorf("stats total = %d, want %d", stats.Total, e2eItems)
	}
}

func guidsFromReport(report *models.Report) []string {
	ids := make([]string, 0, len(report.Hits))
	for _, h := range report.Hits {
		if h.Article != nil {
			ids = append(ids, h.Article.GUID)
		}
	}
	return ids
}

func containsAny(got []string, expected []string) bool {
	set := make(map[string]bool)
	for _, id := range got {
		set[id] = true
	}
	for _, id := range expected {
		if set[id] {
			return true
		}
	}
	return false
}
