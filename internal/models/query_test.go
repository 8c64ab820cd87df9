package models

import (
	"errors"
	"testing"
)

var testLimits = Limits{DefaultResults: 3, MaxResults: 10, DefaultDepth: 300, DepthOptions: []int{100, 200, 300, 500}}

func TestResearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name        string
		query       ResearchQuery
		wantErr     error
		wantQuery   string
		wantResults int
		wantDepth   int
	}{
		{"empty query", ResearchQuery{Query: ""}, ErrEmptyQuery, "", 0, 0},
		{"whitespace query", ResearchQuery{Query: "  \t"}, ErrEmptyQuery, "", 0, 0},
		{"defaults", ResearchQuery{Query: " climate "}, nil, "climate", 3, 300},
		{"explicit values kept", ResearchQuery{Query: "x", Results: 7, Depth: 500}, nil, "x", 7, 500},
		{"results capped", ResearchQuery{Query: "x", Results: 50}, nil, "x", 10, 300},
		{"negative results default", ResearchQuery{Query: "x", Results: -2}, nil, "x", 3, 300},
		{"depth not an option", ResearchQuery{Query: "x", Depth: 250}, nil, "x", 3, 300},
		{"negative depth", ResearchQuery{Query: "x", Depth: -1}, nil, "x", 3, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			err := q.Validate(testLimits)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if q.Query != tt.wantQuery || q.Results != tt.wantResults || q.Depth != tt.wantDepth {
				t.Errorf("got %+v, want query=%q results=%d depth=%d", q, tt.wantQuery, tt.wantResults, tt.wantDepth)
			}
		})
	}
}

func TestResearchQuery_ValidateFreeDepth(t *testing.T) {
	q := ResearchQuery{Query: "x", Depth: 250}
	if err := q.Validate(Limits{DefaultResults: 0, MaxResults: 0, DefaultDepth: 300}); err != nil {
		t.Fatal(err)
	}
	if q.Depth != 250 {
		t.Errorf("Depth = %d, want 250 when no options are configured", q.Depth)
	}
	if q.Results != 1 {
		t.Errorf("Results = %d, want 1 with zero limits", q.Results)
	}
}
