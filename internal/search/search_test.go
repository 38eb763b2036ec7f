// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pdiddy/hedwig/pkg/types"
)

// --- mock source ---

type mockSource struct {
	name   string
	papers []types.Paper
	err    error
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Search(_ context.Context, _ types.SearchRequest, _ types.SearchConfig) ([]types.Paper, error) {
	return m.papers, m.err
}

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
	}
}

func intp(n int) *int { return &n }

// --- Validate ---

func TestValidate(t *testing.T) {
	available := map[string]Source{
		types.SourceArxiv:    &mockSource{name: types.SourceArxiv},
		types.SourceOpenAlex: &mockSource{name: types.SourceOpenAlex},
	}

	tests := []struct {
		name    string
		req     types.SearchRequest
		wantErr bool
	}{
		{"valid", types.SearchRequest{Query: "transformers", MaxResults: 5, SortBy: types.SortRelevance, Sources: []string{"arxiv"}}, false},
		{"empty query", types.SearchRequest{Query: "", MaxResults: 5, SortBy: types.SortRelevance}, true},
		{"whitespace query", types.SearchRequest{Query: "   \t", MaxResults: 5, SortBy: types.SortRelevance}, true},
		{"unknown sort mode", types.SearchRequest{Query: "x", MaxResults: 5, SortBy: "popularity"}, true},
		{"unknown source", types.SearchRequest{Query: "x", MaxResults: 5, SortBy: types.SortDate, Sources: []string{"scholar"}}, true},
		{"bad date_from", types.SearchRequest{Query: "x", MaxResults: 5, SortBy: types.SortDate, DateFrom: "01/02/2023"}, true},
		{"bad date_to", types.SearchRequest{Query: "x", MaxResults: 5, SortBy: types.SortDate, DateTo: "2023-13-40"}, true},
		{"valid dates", types.SearchRequest{Query: "x", MaxResults: 5, SortBy: types.SortDate, DateFrom: "2022-01-01", DateTo: "2023-06-30"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req, available)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("error should wrap ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

// --- Deduplication ---

func TestDeduplicateByDOICaseInsensitive(t *testing.T) {
	papers := []types.Paper{
		{ID: "openalex:W1", Title: "Paper A", DOI: "10.1145/abc123", Source: "openalex"},
		{ID: "crossref:10.1145/ABC123", Title: "Paper A, revised edition", DOI: "10.1145/ABC123", Source: "crossref"},
		{ID: "arxiv:2301.99999", Title: "Paper B", Source: "arxiv"},
	}

	deduped := deduplicate(papers)
	if len(deduped) != 2 {
		t.Fatalf("len(deduped) = %d, want 2", len(deduped))
	}
}

func TestDeduplicateByNormalizedTitle(t *testing.T) {
	papers := []types.Paper{
		{ID: "arxiv:1706.03762", Title: "Attention Is All You Need", Source: "arxiv"},
		{ID: "crossref:10.555/x", Title: "  attention is all you need!  ", DOI: "10.555/x", Source: "crossref"},
	}

	deduped := deduplicate(papers)
	if len(deduped) != 1 {
		t.Fatalf("len(deduped) = %d, want 1", len(deduped))
	}
	// The DOI from the collapsed record should survive on the representative.
	if deduped[0].DOI != "10.555/x" {
		t.Errorf("DOI = %q, want %q", deduped[0].DOI, "10.555/x")
	}
}

func TestDeduplicateNoDuplicates(t *testing.T) {
	papers := []types.Paper{
		{ID: "arxiv:2301.07041", Title: "Paper A", Source: "arxiv"},
		{ID: "arxiv:2301.99999", Title: "Paper B", Source: "arxiv"},
	}

	deduped := deduplicate(papers)
	if len(deduped) != 2 {
		t.Errorf("len(deduped) = %d, want 2", len(deduped))
	}
}

func TestDeduplicateCollapsesLinkedSurvivors(t *testing.T) {
	// The third record shares its title with the first survivor and its DOI
	// with the second, so all three are the same work.
	papers := []types.Paper{
		{ID: "arxiv:1", Title: "Same Work", Source: "arxiv"},
		{ID: "openalex:W1", Title: "Other Title", DOI: "10.1/x", Source: "openalex"},
		{ID: "crossref:10.1/x", Title: "Same Work", DOI: "10.1/x", Source: "crossref"},
	}

	deduped := deduplicate(papers)
	if len(deduped) != 1 {
		t.Fatalf("len(deduped) = %d, want 1", len(deduped))
	}

	twice := deduplicate(deduped)
	if len(twice) != 1 {
		t.Errorf("second pass len = %d, dedup must be idempotent", len(twice))
	}

	seen := make(map[string]bool)
	for _, p := range deduped {
		key := normalizeTitle(p.Title)
		if seen[key] {
			t.Errorf("two papers share normalized title %q", key)
		}
		seen[key] = true
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	papers := []types.Paper{
		{ID: "arxiv:1", Title: "Paper A", Source: "arxiv"},
		{ID: "openalex:W1", Title: "Paper A", DOI: "10.1/a", Source: "openalex"},
		{ID: "crossref:10.1/a", Title: "Totally Different", DOI: "10.1/a", Source: "crossref"},
	}

	once := deduplicate(papers)
	twice := deduplicate(once)
	if len(once) != len(twice) {
		t.Errorf("dedup not idempotent: first pass %d, second pass %d", len(once), len(twice))
	}
}

func TestPickRepresentativeRicherWins(t *testing.T) {
	sparse := types.Paper{ID: "arxiv:1", Title: "Paper A", Source: "arxiv"}
	rich := types.Paper{
		ID: "openalex:W1", Title: "Paper A", Source: "openalex",
		Abstract: "An abstract.", CitationCount: intp(42), DOI: "10.1/a",
	}

	got := pickRepresentative(sparse, rich)
	if got.ID != "openalex:W1" {
		t.Errorf("representative ID = %q, want the richer record", got.ID)
	}
	if got.CitationCount == nil || *got.CitationCount != 42 {
		t.Errorf("CitationCount not carried over")
	}
}

func TestPickRepresentativeTieBySourcePriority(t *testing.T) {
	a := types.Paper{ID: "crossref:10.1/a", Title: "Paper A", Source: "crossref", Abstract: "x", CitationCount: intp(1)}
	b := types.Paper{ID: "openalex:W1", Title: "Paper A", Source: "openalex", Abstract: "y", CitationCount: intp(1)}

	got := pickRepresentative(a, b)
	if got.Source != "openalex" {
		t.Errorf("tie should go to the higher-priority source, got %q", got.Source)
	}
}

func TestPickRepresentativeFillsMissingFields(t *testing.T) {
	winner := types.Paper{
		ID: "openalex:W1", Title: "Paper A", Source: "openalex",
		Abstract: "An abstract.", CitationCount: intp(3),
	}
	loser := types.Paper{
		ID: "crossref:10.1/a", Title: "Paper A", Source: "crossref",
		Abstract: "Other abstract.", DOI: "10.1/a", URL: "https://doi.org/10.1/a",
		Authors:   []types.Author{{Name: "Ada Lovelace"}},
		Published: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	got := pickRepresentative(winner, loser)
	if got.ID != "openalex:W1" {
		t.Fatalf("representative ID = %q, want %q", got.ID, "openalex:W1")
	}
	if got.Abstract != "An abstract." {
		t.Errorf("winner's abstract should be kept, got %q", got.Abstract)
	}
	if got.DOI != "10.1/a" {
		t.Errorf("missing DOI should be filled from loser, got %q", got.DOI)
	}
	if len(got.Authors) != 1 || got.Authors[0].Name != "Ada Lovelace" {
		t.Errorf("missing authors should be filled from loser, got %v", got.Authors)
	}
	if got.Published.IsZero() {
		t.Error("missing date should be filled from loser")
	}
}

// --- normalizeTitle ---

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Attention Is All You Need", "attention is all you need"},
		{"  attention   is ALL you need! ", "attention is all you need"},
		{"BERT: Pre-training of Deep Bidirectional Transformers", "bert pretraining of deep bidirectional transformers"},
		{"", ""},
		{"?!...", ""},
	}
	for _, tt := range tests {
		if got := normalizeTitle(tt.input); got != tt.want {
			t.Errorf("normalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// --- Sorting ---

func TestSortPapersByDate(t *testing.T) {
	papers := []types.Paper{
		{Title: "Old", Published: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "No date"},
		{Title: "New", Published: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	sortPapers(papers, types.SortDate)

	if papers[0].Title != "New" || papers[1].Title != "Old" {
		t.Errorf("order = [%s %s %s], want newest first", papers[0].Title, papers[1].Title, papers[2].Title)
	}
	if papers[2].Title != "No date" {
		t.Errorf("dateless paper should sort last, got %q last", papers[2].Title)
	}
}

func TestSortPapersByCitations(t *testing.T) {
	papers := []types.Paper{
		{Title: "Uncounted"},
		{Title: "Few", CitationCount: intp(3)},
		{Title: "Many", CitationCount: intp(4000)},
		{Title: "Few but newer", CitationCount: intp(3), Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	sortPapers(papers, types.SortCitations)

	want := []string{"Many", "Few but newer", "Few", "Uncounted"}
	for i, w := range want {
		if papers[i].Title != w {
			t.Errorf("papers[%d] = %q, want %q", i, papers[i].Title, w)
		}
	}
}

func TestSortPapersRelevanceKeepsMergeOrder(t *testing.T) {
	papers := []types.Paper{
		{Title: "First"},
		{Title: "Second"},
		{Title: "Third"},
	}

	sortPapers(papers, types.SortRelevance)

	for i, w := range []string{"First", "Second", "Third"} {
		if papers[i].Title != w {
			t.Errorf("papers[%d] = %q, want %q", i, papers[i].Title, w)
		}
	}
}

// --- Search integration ---

func TestSearchEmptyQuery(t *testing.T) {
	sources := map[string]Source{
		types.SourceArxiv: &mockSource{name: types.SourceArxiv},
	}
	_, err := Search(context.Background(), types.SearchRequest{Sources: []string{"arxiv"}}, sources, testCfg(), nil)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestSearchContinuesAfterSourceFailure(t *testing.T) {
	sources := map[string]Source{
		types.SourceArxiv: &mockSource{name: types.SourceArxiv, err: fmt.Errorf("network error")},
		types.SourceOpenAlex: &mockSource{name: types.SourceOpenAlex, papers: []types.Paper{
			{ID: "openalex:W1", Title: "Paper A", Source: "openalex"},
		}},
	}

	resp, err := Search(context.Background(), types.SearchRequest{
		Query:   "test",
		Sources: []string{"arxiv", "openalex"},
	}, sources, testCfg(), nil)
	if err != nil {
		t.Fatalf("Search should not fail entirely: %v", err)
	}
	if len(resp.Papers) != 1 {
		t.Errorf("len(Papers) = %d, want 1", len(resp.Papers))
	}
	if resp.Sources["arxiv"].Error == "" {
		t.Error("arxiv result should carry an error message")
	}
	if resp.Sources["openalex"].Count != 1 {
		t.Errorf("openalex Count = %d, want 1", resp.Sources["openalex"].Count)
	}
}

func TestSearchAllSourcesFailYieldsEmptyResponse(t *testing.T) {
	sources := map[string]Source{
		types.SourceArxiv:    &mockSource{name: types.SourceArxiv, err: fmt.Errorf("timeout")},
		types.SourceOpenAlex: &mockSource{name: types.SourceOpenAlex, err: fmt.Errorf("HTTP 500")},
	}

	resp, err := Search(context.Background(), types.SearchRequest{
		Query:   "test",
		Sources: []string{"arxiv", "openalex"},
	}, sources, testCfg(), nil)
	if err != nil {
		t.Fatalf("all sources failing should still return a response: %v", err)
	}
	if resp.TotalResults != 0 {
		t.Errorf("TotalResults = %d, want 0", resp.TotalResults)
	}
	if resp.Papers == nil || len(resp.Papers) != 0 {
		t.Errorf("Papers should be an empty slice, got %v", resp.Papers)
	}
	for _, name := range []string{"arxiv", "openalex"} {
		if resp.Sources[name].Error == "" {
			t.Errorf("source %q should carry an error message", name)
		}
	}
}

func TestSearchMergesAndDeduplicates(t *testing.T) {
	// arXiv returns three papers, OpenAlex four; one appears in both.
	arxiv := &mockSource{name: types.SourceArxiv, papers: []types.Paper{
		{ID: "arxiv:1", Title: "Graph Networks", Source: "arxiv"},
		{ID: "arxiv:2", Title: "Deep Sets", Source: "arxiv"},
		{ID: "arxiv:3", Title: "Attention Is All You Need", Source: "arxiv"},
	}}
	openalex := &mockSource{name: types.SourceOpenAlex, papers: []types.Paper{
		{ID: "openalex:W1", Title: "attention is all you need", Source: "openalex", Abstract: "x", CitationCount: intp(90000), DOI: "10.5555/3295222"},
		{ID: "openalex:W2", Title: "Word2vec", Source: "openalex"},
		{ID: "openalex:W3", Title: "GloVe", Source: "openalex"},
		{ID: "openalex:W4", Title: "ELMo", Source: "openalex"},
	}}

	resp, err := Search(context.Background(), types.SearchRequest{
		Query:      "embeddings",
		MaxResults: 20,
		Sources:    []string{"arxiv", "openalex"},
	}, map[string]Source{"arxiv": arxiv, "openalex": openalex}, testCfg(), nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if resp.TotalResults != 6 {
		t.Errorf("TotalResults = %d, want 6 (3 + 4 - 1 duplicate)", resp.TotalResults)
	}
	if len(resp.Papers) != 6 {
		t.Fatalf("len(Papers) = %d, want 6", len(resp.Papers))
	}

	// The duplicate keeps the arXiv record's merge position but the richer
	// OpenAlex record represents it.
	dup := resp.Papers[2]
	if dup.ID != "openalex:W1" {
		t.Errorf("duplicate representative = %q, want the richer openalex record", dup.ID)
	}
	if dup.CitationCount == nil || *dup.CitationCount != 90000 {
		t.Error("duplicate should carry the OpenAlex citation count")
	}

	// Per-source results are reported pre-dedup.
	if resp.Sources["arxiv"].Count != 3 {
		t.Errorf("arxiv Count = %d, want 3", resp.Sources["arxiv"].Count)
	}
	if resp.Sources["openalex"].Count != 4 {
		t.Errorf("openalex Count = %d, want 4", resp.Sources["openalex"].Count)
	}
}

func TestSearchMixedOutcomeWithTruncation(t *testing.T) {
	arxiv := &mockSource{name: types.SourceArxiv, papers: []types.Paper{
		{ID: "arxiv:1", Title: "Traffic Flow Models", Source: "arxiv", DOI: "10.1/shared"},
		{ID: "arxiv:2", Title: "Network Congestion", Source: "arxiv"},
		{ID: "arxiv:3", Title: "Routing Games", Source: "arxiv"},
	}}
	openalex := &mockSource{name: types.SourceOpenAlex, papers: []types.Paper{
		{ID: "openalex:W1", Title: "Traffic flow models revisited", Source: "openalex", DOI: "10.1/SHARED"},
		{ID: "openalex:W2", Title: "Queueing Theory", Source: "openalex"},
		{ID: "openalex:W3", Title: "Braess Paradox", Source: "openalex"},
		{ID: "openalex:W4", Title: "Signal Timing", Source: "openalex"},
	}}
	crossref := &mockSource{name: types.SourceCrossref, err: fmt.Errorf("HTTP 502")}

	resp, err := Search(context.Background(), types.SearchRequest{
		Query:      "traffic networks",
		MaxResults: 5,
		SortBy:     types.SortRelevance,
		Sources:    []string{"arxiv", "openalex", "crossref"},
	}, map[string]Source{"arxiv": arxiv, "openalex": openalex, "crossref": crossref}, testCfg(), nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if resp.TotalResults != 6 {
		t.Errorf("TotalResults = %d, want 6 (3 + 4 - 1 shared DOI)", resp.TotalResults)
	}
	if len(resp.Papers) != 5 {
		t.Errorf("len(Papers) = %d, want 5 after truncation", len(resp.Papers))
	}
	cr := resp.Sources["crossref"]
	if cr.Error == "" || cr.Count != 0 || len(cr.Papers) != 0 {
		t.Errorf("crossref entry = %+v, want an error with 0 papers", cr)
	}
}

func TestSearchTruncatesToMaxResults(t *testing.T) {
	var papers []types.Paper
	for i := 0; i < 12; i++ {
		papers = append(papers, types.Paper{
			ID:    fmt.Sprintf("arxiv:%d", i),
			Title: fmt.Sprintf("Paper %d", i),
		})
	}
	sources := map[string]Source{
		types.SourceArxiv: &mockSource{name: types.SourceArxiv, papers: papers},
	}

	resp, err := Search(context.Background(), types.SearchRequest{
		Query:      "test",
		MaxResults: 5,
		Sources:    []string{"arxiv"},
	}, sources, testCfg(), nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Papers) != 5 {
		t.Errorf("len(Papers) = %d, want 5", len(resp.Papers))
	}
	if resp.TotalResults != 12 {
		t.Errorf("TotalResults = %d, want the pre-truncation pool size 12", resp.TotalResults)
	}
}

func TestSearchMergesSourceOutsideCanonicalOrder(t *testing.T) {
	zeta := &mockSource{name: "zeta", papers: []types.Paper{
		{ID: "zeta:1", Title: "Zeta Paper", Source: "zeta"},
	}}
	arxiv := &mockSource{name: types.SourceArxiv, papers: []types.Paper{
		{ID: "arxiv:1", Title: "Arxiv Paper", Source: "arxiv"},
	}}

	resp, err := Search(context.Background(), types.SearchRequest{
		Query:      "test",
		MaxResults: 10,
		Sources:    []string{"zeta", "arxiv"},
	}, map[string]Source{"arxiv": arxiv, "zeta": zeta}, testCfg(), nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if resp.TotalResults != 2 {
		t.Fatalf("TotalResults = %d, want papers from both registered sources", resp.TotalResults)
	}
	// Known sources rank before unknown ones in the merge order.
	if resp.Papers[0].ID != "arxiv:1" || resp.Papers[1].ID != "zeta:1" {
		t.Errorf("merge order = [%s %s], want arxiv before zeta", resp.Papers[0].ID, resp.Papers[1].ID)
	}
}

func TestSearchEchoesEffectiveParams(t *testing.T) {
	sources := map[string]Source{
		types.SourceArxiv:    &mockSource{name: types.SourceArxiv},
		types.SourceOpenAlex: &mockSource{name: types.SourceOpenAlex},
		types.SourceCrossref: &mockSource{name: types.SourceCrossref},
	}

	// Zero-valued fields should come back with defaults applied.
	resp, err := Search(context.Background(), types.SearchRequest{Query: "test"}, sources, testCfg(), nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.SearchParams.MaxResults != types.DefaultMaxResults {
		t.Errorf("MaxResults = %d, want %d", resp.SearchParams.MaxResults, types.DefaultMaxResults)
	}
	if resp.SearchParams.SortBy != types.SortRelevance {
		t.Errorf("SortBy = %q, want %q", resp.SearchParams.SortBy, types.SortRelevance)
	}
	if len(resp.SearchParams.Sources) != 3 {
		t.Errorf("Sources = %v, want all three", resp.SearchParams.Sources)
	}
}

// --- registry ---

func TestSourceRank(t *testing.T) {
	if sourceRank(types.SourceArxiv) >= sourceRank(types.SourceOpenAlex) {
		t.Error("arxiv should rank before openalex")
	}
	if sourceRank(types.SourceOpenAlex) >= sourceRank(types.SourceCrossref) {
		t.Error("openalex should rank before crossref")
	}
	if sourceRank("unknown") != len(SourceOrder) {
		t.Errorf("unknown source rank = %d, want %d", sourceRank("unknown"), len(SourceOrder))
	}
}

func TestNewSourcesCoversSourceOrder(t *testing.T) {
	sources := NewSources(nil, testCfg(), nil)
	for _, name := range SourceOrder {
		src, ok := sources[name]
		if !ok {
			t.Fatalf("registry missing source %q", name)
		}
		if src.Name() != name {
			t.Errorf("source registered as %q reports Name() = %q", name, src.Name())
		}
	}
}
