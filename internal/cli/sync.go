package cli

import "github.com/spf13/cobra"

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull shared tags from the collaboration backend",
	Long: `Merge every active shared tag of the project into the local directory.

The daemon does this continuously when collaboration is enabled; 'rd sync'
is for working without the daemon.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		if ws.syncer == nil {
			return ErrCollabDisabled()
		}
		merged, err := ws.syncer.Resync(cmd.Context())
		if err != nil {
			return WrapError(err, "Failed to reach the collaboration backend",
				"Check collab.url and collab.api_key with 'rd config get collab'")
		}
		if merged > 0 {
			ws.notifyDaemon()
		}

		out := outputFor(cmd)
		if IsJSONOutput() {
			return out.JSON(map[string]interface{}{"project_id": ws.syncer.ProjectID(), "merged": merged})
		}
		out.Success("Merged %d shared tags for project %s", merged, ws.syncer.ProjectID())
		return nil
	})
}
