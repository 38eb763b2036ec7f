// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// Source tags for the supported bibliographic APIs.
const (
	SourceArxiv    = "arxiv"
	SourceOpenAlex = "openalex"
	SourceCrossref = "crossref"
)

// SourceNames maps source tags to their human-readable labels.
var SourceNames = map[string]string{
	SourceArxiv:    "arXiv",
	SourceOpenAlex: "OpenAlex",
	SourceCrossref: "Crossref",
}

// Author is one paper author as reported by a source.
type Author struct {
	// Name is the author's display name.
	Name string `json:"name" yaml:"name"`

	// Affiliation is the author's institution, when the source reports one.
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`

	// ORCID is the author's persistent identifier, when available.
	ORCID string `json:"orcid,omitempty" yaml:"orcid,omitempty"`
}

// Paper is a normalized research-paper record. Adapters construct one Paper
// per upstream record and never mutate it afterwards.
type Paper struct {
	// ID is the source-qualified identifier (e.g. "arxiv:2301.07041",
	// "crossref:10.1145/3292500").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with upstream whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Source identifies which adapter produced this record.
	Source string `json:"source" yaml:"source"`

	// SourceName is the human-readable label for Source.
	SourceName string `json:"source_name" yaml:"source_name"`

	// Published is the publication or preprint date. Zero when the source
	// does not report one.
	Published time.Time `json:"published_date" yaml:"published_date"`

	// URL is the canonical landing page for the paper.
	URL string `json:"url" yaml:"url"`

	// DOI is the bare DOI (no https://doi.org/ prefix), when known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Categories holds subject or category tags, when the source reports them.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// CitationCount is the source-reported citation count. Nil when the
	// source does not track citations (e.g. arXiv).
	CitationCount *int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`
}

// PrimaryAuthor returns the first author, or a zero Author when the list is empty.
func (p Paper) PrimaryAuthor() Author {
	if len(p.Authors) == 0 {
		return Author{}
	}
	return p.Authors[0]
}

// FormattedAuthors returns the author list formatted for display: all names
// for up to three authors, "First et al." beyond that.
func (p Paper) FormattedAuthors() string {
	switch {
	case len(p.Authors) == 0:
		return ""
	case len(p.Authors) <= 3:
		names := make([]string, len(p.Authors))
		for i, a := range p.Authors {
			names[i] = a.Name
		}
		return strings.Join(names, ", ")
	default:
		return p.Authors[0].Name + " et al."
	}
}
