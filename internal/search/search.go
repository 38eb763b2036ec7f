// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search aggregates paper results from bibliographic APIs into one
// merged, deduplicated, sorted response.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/pdiddy/hedwig/pkg/types"
)

// Source searches a single bibliographic API. Each source (arXiv, OpenAlex,
// Crossref) implements this interface; the orchestrator depends on nothing
// else, so adding a source means one new implementation and one registry
// entry.
type Source interface {
	Name() string
	Search(ctx context.Context, req types.SearchRequest, cfg types.SearchConfig) ([]types.Paper, error)
}

// ErrInvalidRequest marks request-validation failures. Callers map it to a
// client error; nothing past validation is fatal to a request.
var ErrInvalidRequest = errors.New("invalid search request")

const dateFmt = "2006-01-02"

// Validate checks the request against the available source set. It runs
// before any adapter is invoked.
func Validate(req types.SearchRequest, available map[string]Source) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: query must not be empty", ErrInvalidRequest)
	}
	if !req.SortBy.Valid() {
		return fmt.Errorf("%w: unknown sort mode %q", ErrInvalidRequest, req.SortBy)
	}
	for _, name := range req.Sources {
		if _, ok := available[name]; !ok {
			return fmt.Errorf("%w: unknown source %q", ErrInvalidRequest, name)
		}
	}
	for _, d := range []string{req.DateFrom, req.DateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateFmt, d); err != nil {
			return fmt.Errorf("%w: date %q is not in YYYY-MM-DD form", ErrInvalidRequest, d)
		}
	}
	return nil
}

// Search fans the request out to every selected source concurrently, waits
// for all of them to settle, and merges whatever succeeded. A source failure
// is recorded in the response's per-source map and never fails the request;
// even all sources failing yields a valid empty response.
func Search(ctx context.Context, req types.SearchRequest, sources map[string]Source, cfg types.SearchConfig, logger *zap.Logger) (types.SearchResponse, error) {
	req = req.WithDefaults()
	if err := Validate(req, sources); err != nil {
		return types.SearchResponse{}, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	type outcome struct {
		name   string
		papers []types.Paper
		err    error
	}

	ch := make(chan outcome, len(req.Sources))
	var wg sync.WaitGroup

	for _, name := range req.Sources {
		src := sources[name]
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			papers, err := src.Search(ctx, req, cfg)
			ch <- outcome{name: src.Name(), papers: papers, err: err}
		}(src)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	perSource := make(map[string]types.SourceResult, len(req.Sources))
	byName := make(map[string][]types.Paper, len(req.Sources))
	for o := range ch {
		if o.err != nil {
			logger.Warn("source search failed",
				zap.String("source", o.name),
				zap.Error(o.err))
			perSource[o.name] = types.SourceResult{Papers: []types.Paper{}, Error: o.err.Error()}
			continue
		}
		perSource[o.name] = types.SourceResult{Papers: o.papers, Count: len(o.papers)}
		byName[o.name] = o.papers
	}

	// Merge in canonical priority order so relevance ordering and dedup
	// tie-breaks are reproducible regardless of which source answered first.
	// Iterating the requested names keeps sources outside SourceOrder in
	// the pool; those rank after the known ones.
	names := append([]string(nil), req.Sources...)
	sort.SliceStable(names, func(i, j int) bool {
		return sourceRank(names[i]) < sourceRank(names[j])
	})
	var pool []types.Paper
	for _, name := range names {
		pool = append(pool, byName[name]...)
	}

	deduped := deduplicate(pool)
	sortPapers(deduped, req.SortBy)

	total := len(deduped)
	if len(deduped) > req.MaxResults {
		deduped = deduped[:req.MaxResults]
	}
	if deduped == nil {
		deduped = []types.Paper{}
	}

	return types.SearchResponse{
		Query:        req.Query,
		TotalResults: total,
		Papers:       deduped,
		Sources:      perSource,
		SearchParams: types.SearchParams{
			MaxResults: req.MaxResults,
			SortBy:     req.SortBy,
			Sources:    req.Sources,
			DateFrom:   req.DateFrom,
			DateTo:     req.DateTo,
		},
	}, nil
}

// deduplicate collapses papers that represent the same work: equal DOI
// (case-insensitive) or equal normalized title. The survivor keeps its
// position in the merged order. A record whose DOI and title match two
// different survivors links them as one work, so those survivors collapse
// too; the result is stable under repeated application.
func deduplicate(papers []types.Paper) []types.Paper {
	byDOI := make(map[string]int)
	byTitle := make(map[string]int)
	var out []types.Paper

	register := func(p types.Paper, idx int) {
		if doi := strings.ToLower(p.DOI); doi != "" {
			byDOI[doi] = idx
		}
		if key := normalizeTitle(p.Title); key != "" {
			byTitle[key] = idx
		}
	}

	reindex := func() {
		byDOI = make(map[string]int, len(out))
		byTitle = make(map[string]int, len(out))
		for i, p := range out {
			register(p, i)
		}
	}

	for _, p := range papers {
		doiIdx, titleIdx := -1, -1
		if doi := strings.ToLower(p.DOI); doi != "" {
			if i, ok := byDOI[doi]; ok {
				doiIdx = i
			}
		}
		if key := normalizeTitle(p.Title); key != "" {
			if i, ok := byTitle[key]; ok {
				titleIdx = i
			}
		}

		if doiIdx < 0 && titleIdx < 0 {
			out = append(out, p)
			register(p, len(out)-1)
			continue
		}

		idx := doiIdx
		if idx < 0 {
			idx = titleIdx
		}

		// Two distinct survivors matched: collapse the later one into the
		// earlier one before merging the incoming record.
		if doiIdx >= 0 && titleIdx >= 0 && doiIdx != titleIdx {
			lo, hi := doiIdx, titleIdx
			if lo > hi {
				lo, hi = hi, lo
			}
			out[lo] = pickRepresentative(out[lo], out[hi])
			out = append(out[:hi], out[hi+1:]...)
			idx = lo
			reindex()
		}

		out[idx] = pickRepresentative(out[idx], p)
		register(out[idx], idx)
	}
	return out
}

// pickRepresentative chooses which of two duplicate records to keep: the one
// with richer metadata wins, source priority breaks ties. Fields the winner
// is missing are filled from the loser.
func pickRepresentative(a, b types.Paper) types.Paper {
	winner, loser := a, b
	if richness(b) > richness(a) ||
		(richness(b) == richness(a) && sourceRank(b.Source) < sourceRank(a.Source)) {
		winner, loser = b, a
	}
	return fillMissing(winner, loser)
}

// richness scores the metadata a record carries beyond the required fields.
func richness(p types.Paper) int {
	score := 0
	if p.Abstract != "" {
		score++
	}
	if p.CitationCount != nil {
		score++
	}
	return score
}

// fillMissing copies fields dst lacks from src.
func fillMissing(dst, src types.Paper) types.Paper {
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
	if dst.Published.IsZero() {
		dst.Published = src.Published
	}
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if len(dst.Categories) == 0 {
		dst.Categories = src.Categories
	}
	if dst.CitationCount == nil {
		dst.CitationCount = src.CitationCount
	}
	return dst
}

// normalizeTitle lowercases the title, strips punctuation, and collapses
// whitespace so minor formatting differences compare equal.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// sortPapers orders the deduplicated pool. Relevance keeps the merge order,
// which is each API's own ranking concatenated in source-priority order.
// Papers without a date or citation count always sort last for their mode.
func sortPapers(papers []types.Paper, mode types.SortMode) {
	switch mode {
	case types.SortDate:
		sort.SliceStable(papers, func(i, j int) bool {
			di, dj := papers[i].Published, papers[j].Published
			if di.IsZero() || dj.IsZero() {
				return !di.IsZero() && dj.IsZero()
			}
			return di.After(dj)
		})
	case types.SortCitations:
		sort.SliceStable(papers, func(i, j int) bool {
			ci, cj := papers[i].CitationCount, papers[j].CitationCount
			switch {
			case ci == nil && cj == nil:
				return papers[i].Published.After(papers[j].Published)
			case ci == nil:
				return false
			case cj == nil:
				return true
			case *ci != *cj:
				return *ci > *cj
			}
			return papers[i].Published.After(papers[j].Published)
		})
	}
}
