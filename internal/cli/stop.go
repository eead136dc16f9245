package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/daemon"
)

const stopGrace = 5 * time.Second

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the roomdir daemon",
	Long:  `Stop the running roomdir daemon process.`,
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	root := GetProjectRoot()
	if !config.NewLoader(root).Exists() {
		return ErrNotInitialized()
	}

	out := outputFor(cmd)
	stateManager := daemon.NewStateManager(root)
	running, pid := stateManager.IsRunning()
	if !running {
		if pid > 0 {
			out.Info("Daemon was not running (cleaned up stale PID file for PID %d)", pid)
		} else {
			out.Info("Daemon is not running")
		}
		return nil
	}

	if err := daemon.TerminateProcess(pid, stopGrace); err != nil {
		return WrapError(err, "Failed to stop the daemon", "Stop the process manually and remove .roomdir/roomdir.pid")
	}
	_ = stateManager.RemovePID()
	out.Success("roomdir daemon stopped (PID %d)", pid)
	return nil
}
