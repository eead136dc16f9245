package cli

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roomdir-dev/roomdir/internal/api"
	"github.com/roomdir-dev/roomdir/internal/db"
)

var abbrevCmd = &cobra.Command{
	Use:   "abbrev",
	Short: "Review and map room type abbreviations",
	Long: `Room exports abbreviate room types ("OFF", "EXAM", "LAB"). roomdir
expands the common ones; the rest are reported as unmapped and can be
given a label, which applies to the next import.`,
}

var abbrevUnmappedCmd = &cobra.Command{
	Use:   "unmapped",
	Short: "List abbreviations without a label, most frequent first",
	Args:  cobra.NoArgs,
	RunE:  runAbbrevUnmapped,
}

var abbrevSetCmd = &cobra.Command{
	Use:   "set <abbr> <label>",
	Short: "Map an abbreviation to a label",
	Long: `Map an abbreviation to a label for future imports.

Examples:
  rd abbrev set XYZ "Research Lab"
  rd import rooms.xlsx`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAbbrevSet,
}

var abbrevListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your abbreviation mappings",
	Args:  cobra.NoArgs,
	RunE:  runAbbrevList,
}

func init() {
	rootCmd.AddCommand(abbrevCmd)
	abbrevCmd.AddCommand(abbrevUnmappedCmd, abbrevSetCmd, abbrevListCmd)
}

func runAbbrevUnmapped(cmd *cobra.Command, args []string) error {
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		unmapped, err := ws.svc.Unmapped(cmd.Context())
		if err != nil {
			return err
		}
		if unmapped == nil {
			unmapped = []db.UnmappedAbbreviation{}
		}

		out := outputFor(cmd)
		if IsJSONOutput() {
			return out.JSON(api.UnmappedResponse{Abbreviations: unmapped})
		}
		if len(unmapped) == 0 {
			out.Info("Every abbreviation has a label")
			return nil
		}
		rows := make([][]string, len(unmapped))
		for i, u := range unmapped {
			rows[i] = []string{u.Abbr, strconv.Itoa(u.Occurrences)}
		}
		out.Table([]string{"ABBR", "ROOMS"}, rows)
		out.Info("Map one with 'rd abbrev set <abbr> <label>'")
		return nil
	})
}

func runAbbrevSet(cmd *cobra.Command, args []string) error {
	abbr := strings.TrimSpace(args[0])
	label := strings.TrimSpace(strings.Join(args[1:], " "))
	if abbr == "" || label == "" {
		return NewCLIError("Abbreviation and label are required", "e.g. 'rd abbrev set XYZ \"Research Lab\"'")
	}

	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		if err := ws.svc.SetAbbreviation(cmd.Context(), abbr, label); err != nil {
			return err
		}
		ws.notifyDaemon()

		out := outputFor(cmd)
		if IsJSONOutput() {
			return out.JSON(map[string]string{"abbr": strings.ToUpper(abbr), "label": label})
		}
		out.Success("%s now reads %q", strings.ToUpper(abbr), label)
		out.Info("Re-import the room files to relabel rooms already in the directory")
		return nil
	})
}

func runAbbrevList(cmd *cobra.Command, args []string) error {
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		mappings := ws.svc.Abbreviations()
		out := outputFor(cmd)
		if IsJSONOutput() {
			if mappings == nil {
				mappings = map[string]string{}
			}
			return out.JSON(mappings)
		}
		if len(mappings) == 0 {
			out.Info("No abbreviation mappings")
			return nil
		}
		keys := make([]string, 0, len(mappings))
		for k := range mappings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, len(keys))
		for i, k := range keys {
			rows[i] = []string{k, mappings[k]}
		}
		out.Table([]string{"ABBR", "LABEL"}, rows)
		return nil
	})
}
