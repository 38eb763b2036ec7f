// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/hedwig/pkg/types"
)

// SourceOrder is the canonical source priority. It fixes the merge order for
// relevance sorting and breaks ties when duplicates are equally rich.
var SourceOrder = []string{types.SourceArxiv, types.SourceOpenAlex, types.SourceCrossref}

// sourceRank returns the position of a source in SourceOrder; unknown
// sources rank after all known ones.
func sourceRank(name string) int {
	for i, s := range SourceOrder {
		if s == name {
			return i
		}
	}
	return len(SourceOrder)
}

// NewSources builds the full adapter set sharing one HTTP client and
// logger. New sources are registered here and nowhere else.
func NewSources(client *http.Client, cfg types.SearchConfig, logger *zap.Logger) map[string]Source {
	return map[string]Source{
		types.SourceArxiv:    &ArxivSource{Client: client},
		types.SourceOpenAlex: &OpenAlexSource{Client: client, Email: cfg.OpenAlexEmail, Logger: logger},
		types.SourceCrossref: &CrossrefSource{Client: client, Mailto: cfg.CrossrefMailto, Logger: logger},
	}
}
