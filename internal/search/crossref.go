// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/hedwig/internal/httputil"
	"github.com/pdiddy/hedwig/pkg/types"
)

// crossrefAPIBase is the Crossref works search endpoint. Declared as a var
// so tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossrefSource queries the Crossref REST API.
type CrossrefSource struct {
	Client *http.Client
	// Mailto is sent as mailto parameter for polite pool access.
	Mailto string
	// Logger receives rate-limit retry warnings. May be nil.
	Logger *zap.Logger
}

// Name returns the source tag.
func (s *CrossrefSource) Name() string { return types.SourceCrossref }

// Search queries the Crossref API and returns normalized papers. Only
// journal and proceedings articles carrying an abstract are requested;
// items that still come back without a usable title or abstract are
// skipped rather than failing the call.
func (s *CrossrefSource) Search(ctx context.Context, req types.SearchRequest, cfg types.SearchConfig) ([]types.Paper, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("empty Crossref query")
	}

	filters := []string{
		"type:journal-article",
		"type:proceedings-article",
		"has-abstract:true",
	}
	if req.DateFrom != "" {
		filters = append(filters, "from-pub-date:"+req.DateFrom)
	}
	if req.DateTo != "" {
		filters = append(filters, "until-pub-date:"+req.DateTo)
	}

	params := url.Values{
		"query":  {query},
		"rows":   {fmt.Sprintf("%d", req.MaxResults)},
		"sort":   {crossrefSort(req.SortBy)},
		"filter": {strings.Join(filters, ",")},
	}
	if s.Mailto != "" {
		params.Set("mailto", s.Mailto)
	}

	reqURL := crossrefAPIBase + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, httpReq, 0, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("Crossref API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Crossref API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing Crossref response: %w", err)
	}

	var papers []types.Paper
	for _, item := range cr.Message.Items {
		p, ok := crossrefItemToPaper(item)
		if !ok {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// crossrefSort maps a sort mode to the API's sort parameter.
func crossrefSort(mode types.SortMode) string {
	switch mode {
	case types.SortDate:
		return "published"
	case types.SortCitations:
		return "is-referenced-by-count"
	default:
		return "relevance"
	}
}

// crossrefItemToPaper normalizes one works item. The second return value is
// false when the item lacks the fields a Paper requires.
func crossrefItemToPaper(item crossrefItem) (types.Paper, bool) {
	if len(item.Title) == 0 {
		return types.Paper{}, false
	}
	title := collapseSpace(item.Title[0])
	abstract := stripJATS(item.Abstract)
	if title == "" || abstract == "" {
		return types.Paper{}, false
	}

	doi := strings.TrimSpace(item.DOI)
	id := types.SourceCrossref + ":" + doi
	pageURL := item.URL
	if doi != "" {
		pageURL = "https://doi.org/" + doi
	} else {
		id = types.SourceCrossref + ":" + item.URL
	}

	p := types.Paper{
		ID:            id,
		Title:         title,
		Abstract:      abstract,
		Source:        types.SourceCrossref,
		SourceName:    types.SourceNames[types.SourceCrossref],
		URL:           pageURL,
		DOI:           doi,
		CitationCount: item.IsReferencedByCount,
	}

	for _, a := range item.Authors {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if a.Family == "" {
			continue
		}
		author := types.Author{
			Name:  name,
			ORCID: strings.TrimPrefix(strings.TrimPrefix(a.ORCID, "https://orcid.org/"), "http://orcid.org/"),
		}
		if len(a.Affiliation) > 0 {
			author.Affiliation = a.Affiliation[0].Name
		}
		p.Authors = append(p.Authors, author)
	}

	for _, subj := range item.Subject {
		if len(p.Categories) < 5 {
			p.Categories = append(p.Categories, subj)
		}
	}

	if t, ok := crossrefDate(item.PublishedPrint, item.PublishedOnline); ok {
		p.Published = t
	}

	return p, true
}

// crossrefDate resolves the publication date from the print or online
// date-parts, whichever is present, tolerating year-only and year-month
// precision.
func crossrefDate(dates ...crossrefDateParts) (time.Time, bool) {
	for _, d := range dates {
		if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
			continue
		}
		parts := d.DateParts[0]
		year, month, day := parts[0], 1, 1
		if len(parts) > 1 {
			month = parts[1]
		}
		if len(parts) > 2 {
			day = parts[2]
		}
		if year <= 0 || month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// stripJATS removes the JATS XML markup Crossref embeds in abstracts
// (e.g. "<jats:p>...</jats:p>") and collapses the remaining whitespace.
func stripJATS(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return collapseSpace(b.String())
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	TotalResults int            `json:"total-results"`
	Items        []crossrefItem `json:"items"`
}

type crossrefItem struct {
	DOI                 string            `json:"DOI"`
	Title               []string          `json:"title"`
	Abstract            string            `json:"abstract"`
	URL                 string            `json:"URL"`
	Subject             []string          `json:"subject"`
	Authors             []crossrefAuthor  `json:"author"`
	PublishedPrint      crossrefDateParts `json:"published-print"`
	PublishedOnline     crossrefDateParts `json:"published-online"`
	IsReferencedByCount *int              `json:"is-referenced-by-count"`
}

type crossrefAuthor struct {
	Given       string                `json:"given"`
	Family      string                `json:"family"`
	ORCID       string                `json:"ORCID"`
	Affiliation []crossrefAffiliation `json:"affiliation"`
}

type crossrefAffiliation struct {
	Name string `json:"name"`
}

type crossrefDateParts struct {
	DateParts [][]int `json:"date-parts"`
}
