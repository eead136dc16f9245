package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roomdir-dev/roomdir/internal/transfer"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Export or import custom tags",
	Long: `Move custom tags between directories.

Exported tag files record enough about each room (record number, number
and building) to find it again after the room data is re-imported.`,
}

var tagsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write every custom tag to a JSON file (stdout when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTagsExport,
}

var tagsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Attach the tags of an exported tags file",
	Long: `Attach the tags of an exported tags file to the matching rooms.

Tags a room already carries are skipped, as are entries whose room cannot
be found.`,
	Args: cobra.ExactArgs(1),
	RunE: runTagsImport,
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Save or restore the whole directory",
	Long: `Save the complete directory, its tags and the current view to a
session file, or restore one. Restoring replaces the directory.`,
}

var sessionExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a session file (stdout when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionExport,
}

var sessionImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the directory with a session file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionImport,
}

func init() {
	rootCmd.AddCommand(tagsCmd, sessionCmd)
	tagsCmd.AddCommand(tagsExportCmd, tagsImportCmd)
	sessionCmd.AddCommand(sessionExportCmd, sessionImportCmd)
}

// absPath resolves a path argument against the working directory.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// writeExport sends buf to path, or to the command's stdout without a path.
func writeExport(cmd *cobra.Command, args []string, buf *bytes.Buffer, what string) error {
	if len(args) == 0 || args[0] == "-" {
		_, err := buf.WriteTo(cmd.OutOrStdout())
		return err
	}
	path := absPath(args[0])
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", what, err)
	}
	outputFor(cmd).Success("Wrote %s to %s", what, path)
	return nil
}

func nothingToExport(err error, what string) error {
	if errors.Is(err, transfer.ErrNothingToExport) {
		return WrapError(err, fmt.Sprintf("There are no %s to export", what),
			"Import room data and add tags first")
	}
	return err
}

func runTagsExport(cmd *cobra.Command, args []string) error {
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		var buf bytes.Buffer
		if err := ws.svc.ExportTags(&buf); err != nil {
			return nothingToExport(err, "custom tags")
		}
		return writeExport(cmd, args, &buf, "tags")
	})
}

func runTagsImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(absPath(args[0]))
	if err != nil {
		return fmt.Errorf("failed to open tags file: %w", err)
	}
	defer f.Close()

	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		result, err := ws.svc.ImportTags(cmd.Context(), f)
		if errors.Is(err, transfer.ErrInvalidTagsFile) {
			return WrapError(err, "Not a roomdir tags file", "Export tags with 'rd tags export <file>'")
		}
		if err != nil {
			return fmt.Errorf("failed to import tags: %w", err)
		}
		if result.Imported > 0 {
			ws.notifyDaemon()
		}

		out := outputFor(cmd)
		if IsJSONOutput() {
			return out.JSON(result)
		}
		out.Success("Imported %d tags (%d duplicates skipped, %d rooms not found)",
			result.Imported, result.Duplicates, result.SkippedRooms)
		return nil
	})
}

func runSessionExport(cmd *cobra.Command, args []string) error {
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		var buf bytes.Buffer
		if err := ws.svc.ExportSession(&buf, ws.svc.ViewState(cmd.Context())); err != nil {
			return nothingToExport(err, "rooms")
		}
		return writeExport(cmd, args, &buf, "session")
	})
}

func runSessionImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(absPath(args[0]))
	if err != nil {
		return fmt.Errorf("failed to open session file: %w", err)
	}
	defer f.Close()

	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		sess, err := ws.svc.ImportSession(cmd.Context(), f)
		if errors.Is(err, transfer.ErrInvalidSession) {
			return WrapError(err, "Not a roomdir session file", "Save one with 'rd session export <file>'")
		}
		if err != nil {
			return fmt.Errorf("failed to import session: %w", err)
		}
		ws.notifyDaemon()

		out := outputFor(cmd)
		if IsJSONOutput() {
			return out.JSON(map[string]interface{}{
				"rooms":     len(sess.Rooms),
				"timestamp": sess.Timestamp,
				"view":      sess.View,
			})
		}
		out.Success("Restored %d rooms from session saved %s", len(sess.Rooms), sess.Timestamp.Format("2006-01-02 15:04"))
		return nil
	})
}
