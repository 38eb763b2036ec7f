// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the hedwig search pipeline.
package types

// SortMode selects the ordering of merged search results.
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortDate      SortMode = "date"
	SortCitations SortMode = "citations"
)

// Valid reports whether m is a recognized sort mode.
func (m SortMode) Valid() bool {
	switch m {
	case SortRelevance, SortDate, SortCitations:
		return true
	}
	return false
}

// Result-count bounds applied to SearchRequest.MaxResults.
const (
	DefaultMaxResults = 5
	MaxMaxResults     = 50
)

// SearchRequest holds the parameters of one aggregated search. Fields left
// at their zero value are filled in by WithDefaults.
type SearchRequest struct {
	// Query is the free-text search string. Required.
	Query string `json:"query" yaml:"query"`

	// MaxResults bounds the returned paper list (default 5, max 50).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SortBy selects the result ordering (default relevance).
	SortBy SortMode `json:"sort_by" yaml:"sort_by"`

	// Sources is the subset of source tags to query. Empty means all.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// DateFrom and DateTo bound the publication date ("YYYY-MM-DD").
	DateFrom string `json:"date_from,omitempty" yaml:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty" yaml:"date_to,omitempty"`
}

// WithDefaults returns a copy of the request with defaults applied and
// MaxResults clamped to the allowed range.
func (r SearchRequest) WithDefaults() SearchRequest {
	if r.MaxResults <= 0 {
		r.MaxResults = DefaultMaxResults
	}
	if r.MaxResults > MaxMaxResults {
		r.MaxResults = MaxMaxResults
	}
	if r.SortBy == "" {
		r.SortBy = SortRelevance
	}
	if len(r.Sources) == 0 {
		r.Sources = []string{SourceArxiv, SourceOpenAlex, SourceCrossref}
	}
	return r
}

// SourceResult is the per-source outcome of one search. When Error is empty
// the paper list, possibly empty, is authoritative for that source.
type SourceResult struct {
	Papers []Paper `json:"papers" yaml:"papers"`
	Count  int     `json:"count" yaml:"count"`
	Error  string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// SearchParams echoes the effective parameters a search ran with.
type SearchParams struct {
	MaxResults int      `json:"max_results" yaml:"max_results"`
	SortBy     SortMode `json:"sort_by" yaml:"sort_by"`
	Sources    []string `json:"sources" yaml:"sources"`
	DateFrom   string   `json:"date_from,omitempty" yaml:"date_from,omitempty"`
	DateTo     string   `json:"date_to,omitempty" yaml:"date_to,omitempty"`
}

// SearchResponse is the aggregated result of one search.
//
// TotalResults is the size of the deduplicated pool before truncation, so
// callers can tell when more papers matched than were returned.
type SearchResponse struct {
	Query        string                  `json:"query" yaml:"query"`
	TotalResults int                     `json:"total_results" yaml:"total_results"`
	Papers       []Paper                 `json:"papers" yaml:"papers"`
	Sources      map[string]SourceResult `json:"sources" yaml:"sources"`
	SearchParams SearchParams            `json:"search_params" yaml:"search_params"`
}
