// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/hedwig/internal/httputil"
	"github.com/pdiddy/hedwig/pkg/types"
)

// openAlexAPIBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlexSource queries the OpenAlex API.
type OpenAlexSource struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email string
	// Logger receives rate-limit retry warnings. May be nil.
	Logger *zap.Logger
}

// Name returns the source tag.
func (s *OpenAlexSource) Name() string { return types.SourceOpenAlex }

// Search queries the OpenAlex API and returns normalized papers. Works
// without an abstract are filtered out server-side.
func (s *OpenAlexSource) Search(ctx context.Context, req types.SearchRequest, cfg types.SearchConfig) ([]types.Paper, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("empty OpenAlex query")
	}

	params := url.Values{
		"search":   {query},
		"per_page": {fmt.Sprintf("%d", req.MaxResults)},
		"page":     {"1"},
		"sort":     {openAlexSort(req.SortBy)},
	}

	filters := []string{"has_abstract:true"}
	if req.DateFrom != "" {
		filters = append(filters, "from_publication_date:"+req.DateFrom)
	}
	if req.DateTo != "" {
		filters = append(filters, "to_publication_date:"+req.DateTo)
	}
	params.Set("filter", strings.Join(filters, ","))

	if s.Email != "" {
		params.Set("mailto", s.Email)
	}

	reqURL := openAlexAPIBase + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, httpReq, 0, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	var papers []types.Paper
	for _, work := range oar.Results {
		title := strings.TrimSpace(work.Title)
		if title == "" {
			continue
		}

		p := types.Paper{
			ID:            types.SourceOpenAlex + ":" + openAlexShortID(work.ID),
			Title:         title,
			Abstract:      reconstructAbstract(work.AbstractInvertedIndex),
			Source:        types.SourceOpenAlex,
			SourceName:    types.SourceNames[types.SourceOpenAlex],
			CitationCount: work.CitedByCount,
		}

		for _, authorship := range work.Authorships {
			if authorship.Author.DisplayName == "" {
				continue
			}
			a := types.Author{
				Name:  authorship.Author.DisplayName,
				ORCID: strings.TrimPrefix(authorship.Author.ORCID, "https://orcid.org/"),
			}
			if len(authorship.Institutions) > 0 {
				a.Affiliation = authorship.Institutions[0].DisplayName
			}
			p.Authors = append(p.Authors, a)
		}

		// Top concepts stand in for subject categories.
		for _, c := range work.Concepts {
			if c.DisplayName != "" && len(p.Categories) < 5 {
				p.Categories = append(p.Categories, c.DisplayName)
			}
		}

		if work.PublicationDate != "" {
			if t, parseErr := time.Parse(dateFmt, work.PublicationDate); parseErr == nil {
				p.Published = t
			}
		} else if work.PublicationYear > 0 {
			p.Published = time.Date(work.PublicationYear, 1, 1, 0, 0, 0, 0, time.UTC)
		}

		if work.DOI != "" {
			p.DOI = strings.TrimPrefix(work.DOI, "https://doi.org/")
			p.URL = "https://doi.org/" + p.DOI
		} else {
			p.URL = work.ID
		}

		papers = append(papers, p)
	}
	return papers, nil
}

// openAlexSort maps a sort mode to the API's sort parameter.
func openAlexSort(mode types.SortMode) string {
	switch mode {
	case types.SortDate:
		return "publication_date:desc"
	case types.SortCitations:
		return "cited_by_count:desc"
	default:
		return "relevance_score:desc"
	}
}

// openAlexShortID strips the https://openalex.org/ prefix from a work ID
// (e.g. "https://openalex.org/W2741809807" → "W2741809807").
func openAlexShortID(id string) string {
	if idx := strings.LastIndex(id, "/"); idx >= 0 {
		return id[idx+1:]
	}
	return id
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	// Build position→word map.
	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationDate       string               `json:"publication_date"`
	PublicationYear       int                  `json:"publication_year"`
	CitedByCount          *int                 `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	Concepts              []openAlexConcept    `json:"concepts"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
}

type openAlexAuthorship struct {
	Author       openAlexAuthor        `json:"author"`
	Institutions []openAlexInstitution `json:"institutions"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid"`
}

type openAlexInstitution struct {
	DisplayName string `json:"display_name"`
}

type openAlexConcept struct {
	DisplayName string `json:"display_name"`
}
