package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roomdir-dev/roomdir/internal/catalog"
)

var importCmd = &cobra.Command{
	Use:   "import <files...>",
	Short: "Import room, occupant, tag or session files",
	Long: `Import one or more files into the directory.

Files are classified by name:
  *.csv, *.xlsx   room data, or occupants when the name contains
                  "occupant" or "staff"
  *.json          exported custom tags
  *.umsess        a saved session (replaces the directory)

Sessions are applied first, then room files, occupants and tags, so a
single command can load a complete data set. A file that fails to import
is reported and the rest are still processed.

Examples:
  rd import rooms.xlsx occupants.csv
  rd import backup.umsess`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	paths := make([]string, len(args))
	for i, p := range args {
		paths[i] = absPath(p)
	}

	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		out := outputFor(cmd)
		report, importErr := ws.svc.ImportFiles(cmd.Context(), paths)
		if report != nil && len(report.Files) > 0 {
			ws.notifyDaemon()
		}

		if IsJSONOutput() {
			if err := out.JSON(report); err != nil {
				return err
			}
			return importErr
		}

		if report != nil {
			printImportReport(out, report)
			out.Info("Directory now holds %d rooms", ws.svc.Directory().Len())
		}
		if importErr != nil {
			return WrapError(importErr, "Some files could not be imported",
				"Check the file format; supported files are .csv, .xlsx, .json and .umsess")
		}
		return nil
	})
}

func printImportReport(out *OutputFormatter, report *catalog.ImportReport) {
	rows := make([][]string, 0, len(report.Files))
	for _, f := range report.Files {
		rows = append(rows, []string{filepath.Base(f.Path), f.Kind, describeFileReport(f)})
	}
	out.Table([]string{"FILE", "KIND", "RESULT"}, rows)
	for _, p := range report.Unsupported {
		out.Warn("skipped unsupported file %s", filepath.Base(p))
	}
}

func describeFileReport(f catalog.FileReport) string {
	if f.Error != "" {
		return "error: " + f.Error
	}
	switch f.Kind {
	case "session":
		return fmt.Sprintf("%d rooms, %d tags, %d staff restored", f.Rooms, f.Tags, f.Staff)
	case "rooms":
		return fmt.Sprintf("%d added, %d updated, %d skipped", f.Rooms, f.Updated, f.Skipped)
	case "occupants":
		return fmt.Sprintf("%d staff added, %d skipped", f.Staff, f.Skipped)
	case "tags":
		return fmt.Sprintf("%d imported, %d duplicates, %d unknown rooms", f.Tags, f.Duplicates, f.Skipped)
	}
	return "nothing imported"
}
