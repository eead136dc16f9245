package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roomdir-dev/roomdir/internal/api"
	"github.com/roomdir-dev/roomdir/internal/catalog"
	"github.com/roomdir-dev/roomdir/internal/output"
	"github.com/roomdir-dev/roomdir/internal/search"
)

var (
	searchPage     int
	searchPerPage  int
	searchBuilding string
	searchFloor    string
	searchTags     []string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the room directory",
	Long: `Search rooms with free text.

Every word must match the room for it to be listed. Floors ("floor 3",
"3rd floor", "level 3"), buildings, departments, room types, staff names
and room numbers are recognized and ranked accordingly.

Examples:
  rd search "floor 2 exam"
  rd search office --building MAIN
  rd search lab --tag "Family Medicine" --per-page 5 --page 2
  rd search --floor 3`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Page of results to show")
	searchCmd.Flags().IntVarP(&searchPerPage, "per-page", "n", 0, "Results per page, 0 shows all (default: search.results_per_page)")
	searchCmd.Flags().StringVar(&searchBuilding, "building", "", "Only rooms in this building")
	searchCmd.Flags().StringVar(&searchFloor, "floor", "", "Only rooms on this floor")
	searchCmd.Flags().StringSliceVar(&searchTags, "tag", nil, "Require a tag (repeatable)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	filters := search.Filters{Building: searchBuilding, Floor: searchFloor, Tags: searchTags}
	if query == "" && filters.IsEmpty() {
		return ErrEmptyQuery()
	}
	if searchPage < 1 || searchPerPage < 0 {
		return NewCLIError("Invalid page settings", "--page starts at 1 and --per-page must not be negative")
	}

	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		if ws.svc.Directory().Len() == 0 {
			return ErrEmptyDirectory()
		}
		perPage := ws.cfg.Search.ResultsPerPage
		if cmd.Flags().Changed("per-page") {
			perPage = searchPerPage
		}

		start := time.Now()
		page := ws.svc.Search(query, catalog.SearchOptions{Filters: filters, Page: searchPage, PerPage: perPage})
		elapsed := time.Since(start)

		if page.TotalPages > 0 && searchPage > page.TotalPages {
			return NewCLIError(fmt.Sprintf("Page %d is out of range", searchPage),
				fmt.Sprintf("There are %d pages of results", page.TotalPages))
		}

		if IsJSONOutput() {
			return outputFor(cmd).JSON(searchResponse(query, page, elapsed))
		}
		renderPage(cmd.OutOrStdout(), newResultFormatter(filters.Query(query)), page, elapsed)
		return nil
	})
}

func newResultFormatter(query string) *output.Formatter {
	mode := output.FormatNormal
	if IsVerbose() {
		mode = output.FormatVerbose
	}
	f := output.NewFormatter(mode)
	f.Query = query
	return f
}

// searchResponse shapes a page the same way the daemon's /search does.
func searchResponse(query string, page search.Page, elapsed time.Duration) api.SearchResponse {
	return api.SearchResponse{
		Query:        query,
		Results:      page.Results,
		Page:         page.Page,
		PerPage:      page.PerPage,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalItems,
		SearchTimeMs: elapsed.Milliseconds(),
	}
}

func renderPage(w io.Writer, f *output.Formatter, page search.Page, elapsed time.Duration) {
	fmt.Fprintln(w, f.FormatSummary(output.Summary{
		Page:         page.Page,
		PerPage:      page.PerPage,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalItems,
		SearchTimeMs: elapsed.Milliseconds(),
	}))
	offset := 0
	if page.PerPage > 0 {
		offset = (page.Page - 1) * page.PerPage
	}
	for i := range page.Results {
		fmt.Fprintln(w, strings.TrimRight(f.FormatResult(&page.Results[i], offset+i), "\n"))
	}
}
