package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hedwig/internal/logging"
	"github.com/pdiddy/hedwig/internal/search"
	"github.com/pdiddy/hedwig/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search bibliographic APIs for papers matching a query",
	Long: `Search queries arXiv, OpenAlex, and Crossref concurrently for papers
matching a free-text query. Results are deduplicated across sources, sorted,
and truncated to the requested count. A source failing only drops that
source's papers; the remaining results are still returned.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "free-text search query (required)")
	searchCmd.Flags().Int("max-results", types.DefaultMaxResults, "maximum number of results to return")
	searchCmd.Flags().String("sort-by", string(types.SortRelevance), "sort mode: relevance, date, or citations")
	searchCmd.Flags().String("sources", "", "comma-separated sources to query (default: all)")
	searchCmd.Flags().String("from", "", "publication date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "publication date range end (YYYY-MM-DD)")
	searchCmd.Flags().Bool("json", false, "output the full response as JSON")
	searchCmd.Flags().String("csl", "", "write results as CSL-YAML to this file")
	searchCmd.Flags().String("save", "", "save request and response as a query file")
	searchCmd.Flags().String("load", "", "print a previously saved query file instead of searching")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	if path, _ := cmd.Flags().GetString("load"); path != "" {
		qf, err := search.ReadQueryFile(path)
		if err != nil {
			return err
		}
		if asJSON {
			return search.FormatJSON(qf.Response, os.Stdout)
		}
		search.FormatTable(qf.Response, os.Stdout)
		return nil
	}

	query, _ := cmd.Flags().GetString("query")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	sortBy, _ := cmd.Flags().GetString("sort-by")
	sourceList, _ := cmd.Flags().GetString("sources")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	req := types.SearchRequest{
		Query:      query,
		MaxResults: maxResults,
		SortBy:     types.SortMode(sortBy),
		DateFrom:   from,
		DateTo:     to,
	}
	if sourceList != "" {
		for _, s := range strings.Split(sourceList, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.Sources = append(req.Sources, s)
			}
		}
	}

	logger, err := logging.New(types.LogConfig{Level: "warn", Format: "console"})
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg := searchConfig()
	client := &http.Client{Timeout: cfg.Timeout}
	sources := search.NewSources(client, cfg, logger)

	resp, err := search.Search(cmd.Context(), req, sources, cfg, logger)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := search.WriteQueryFile(path, req, resp); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved query file: %s\n", path)
	}

	if path, _ := cmd.Flags().GetString("csl"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating CSL file: %w", err)
		}
		defer f.Close()
		if err := search.FormatCSL(resp, f); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote CSL file: %s\n", path)
	}

	if asJSON {
		return search.FormatJSON(resp, os.Stdout)
	}
	search.FormatTable(resp, os.Stdout)
	return nil
}
