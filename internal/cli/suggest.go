package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roomdir-dev/roomdir/internal/api"
	"github.com/roomdir-dev/roomdir/internal/search"
)

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest <text>",
	Short: "Complete a partial query",
	Long: `List autocomplete suggestions for partially typed text.

Suggestions come from the directory's floors, buildings, room types,
departments, staff and room numbers.

Examples:
  rd suggest "3r"
  rd suggest exa`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "Maximum suggestions (default: search.suggest_limit)")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		var suggestions []string
		if suggestLimit > 0 {
			suggestions = search.Suggest(ws.svc.Autocomplete(), text, suggestLimit)
		} else {
			suggestions = ws.svc.Suggest(text)
		}
		if suggestions == nil {
			suggestions = []string{}
		}

		out := outputFor(cmd)
		if IsJSONOutput() {
			return out.JSON(api.AutocompleteResponse{Query: text, Suggestions: suggestions})
		}
		if len(suggestions) == 0 {
			out.Info("No suggestions for %q", text)
			return nil
		}
		for _, s := range suggestions {
			out.Info("%s", s)
		}
		return nil
	})
}
