package models

import (
	"errors"
	"slices"
	"strings"
)

// ErrEmptyQuery is returned for queries that are empty after trimming whitespace.
var ErrEmptyQuery = errors.New("query cannot be empty")

// ResearchQuery is a research request. Zero Results or Depth means "use the default".
type ResearchQuery struct {
	Query   string `json:"query"`
	Results int    `json:"results,omitempty"`
	Depth   int    `json:"depth,omitempty"`
}

// Limits bounds and defaults a ResearchQuery.
type Limits struct {
	DefaultResults int
	MaxResults     int
	DefaultDepth   int
	DepthOptions   []int
}

// Validate trims the query and normalizes Results and Depth.
// Results is clamped to [1, MaxResults]. A Depth that is not one of DepthOptions
// falls back to DefaultDepth; with no options configured any positive depth is kept.
func (q *ResearchQuery) Validate(l Limits) error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return ErrEmptyQuery
	}

	maxResults := max(l.MaxResults, 1)
	if q.Results <= 0 {
		q.Results = l.DefaultResults
	}
	q.Results = min(max(q.Results, 1), maxResults)

	switch {
	case q.Depth <= 0:
		q.Depth = l.DefaultDepth
	case len(l.DepthOptions) > 0 && !slices.Contains(l.DepthOptions, q.Depth):
		q.Depth = l.DefaultDepth
	}
	return nil
}
