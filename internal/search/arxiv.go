// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/hedwig/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv Atom API.
type ArxivSource struct {
	Client *http.Client
}

// Name returns the source tag.
func (s *ArxivSource) Name() string { return types.SourceArxiv }

// Search queries the arXiv API and returns normalized papers. arXiv has no
// citation counts and no date filter in this query form; the date-range
// bounds of the request are ignored here.
func (s *ArxivSource) Search(ctx context.Context, req types.SearchRequest, cfg types.SearchConfig) ([]types.Paper, error) {
	q := buildArxivQuery(req.Query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	url := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=%s&sortOrder=descending",
		arxivAPIBase, q, req.MaxResults, arxivSortBy(req.SortBy))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var papers []types.Paper
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		title := collapseSpace(entry.Title)
		if arxivID == "" || title == "" {
			continue
		}

		p := types.Paper{
			ID:         types.SourceArxiv + ":" + arxivID,
			Title:      title,
			Abstract:   collapseSpace(entry.Summary),
			Source:     types.SourceArxiv,
			SourceName: types.SourceNames[types.SourceArxiv],
			URL:        entry.Link(),
		}

		for _, a := range entry.Authors {
			name := strings.TrimSpace(a.Name)
			if name != "" {
				p.Authors = append(p.Authors, types.Author{Name: name})
			}
		}

		for _, c := range entry.Categories {
			if c.Term != "" {
				p.Categories = append(p.Categories, c.Term)
			}
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			p.Published = t
		}

		papers = append(papers, p)
	}
	return papers, nil
}

// buildArxivQuery turns free text into the field-scoped search_query form
// (e.g. "all:traffic+AND+all:networks"). Each word is query-escaped so
// characters like "&" or "#" cannot corrupt the URL.
func buildArxivQuery(query string) string {
	words := strings.Fields(query)
	if len(words) == 0 {
		return ""
	}
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = "all:" + url.QueryEscape(w)
	}
	return strings.Join(parts, "+AND+")
}

// arxivSortBy maps a sort mode to the API's sortBy parameter. arXiv cannot
// sort by citations, so that mode falls back to relevance.
func arxivSortBy(mode types.SortMode) string {
	if mode == types.SortDate {
		return "submittedDate"
	}
	return "relevance"
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
	Links      []arxivLink     `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// Link returns the entry's landing page: the alternate link when present,
// otherwise the <id> URL.
func (e arxivEntry) Link() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" && l.Href != "" {
			return l.Href
		}
	}
	return e.ID
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// collapseSpace trims s and collapses runs of whitespace, including the
// newlines arXiv embeds in long titles and abstracts.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
