// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/hedwig/pkg/types"
)

// FormatTable writes the response as a human-readable table to w.
func FormatTable(resp types.SearchResponse, w io.Writer) {
	if len(resp.Papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		printSourceErrors(resp, w)
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-24s  %-4s  %-5s  %s\n",
		"Rank", "Title", "Authors", "Year", "Cites", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 112))

	for i, p := range resp.Papers {
		title := p.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := ""
		if !p.Published.IsZero() {
			year = fmt.Sprintf("%d", p.Published.Year())
		}
		cites := ""
		if p.CitationCount != nil {
			cites = fmt.Sprintf("%d", *p.CitationCount)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-24s  %-4s  %-5s  %s\n",
			i+1, title, truncate(p.FormattedAuthors(), 24), year, cites, p.SourceName)
	}

	fmt.Fprintf(w, "\n%d of %d results shown\n", len(resp.Papers), resp.TotalResults)
	printSourceErrors(resp, w)
}

func printSourceErrors(resp types.SearchResponse, w io.Writer) {
	for _, name := range SourceOrder {
		if sr, ok := resp.Sources[name]; ok && sr.Error != "" {
			fmt.Fprintf(w, "warning: %s failed: %s\n", name, sr.Error)
		}
	}
}

// FormatJSON writes the full response as indented JSON to w.
func FormatJSON(resp types.SearchResponse, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
