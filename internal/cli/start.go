package cli

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/daemon"
	"github.com/roomdir-dev/roomdir/internal/logging"
)

const (
	startTimeout   = 10 * time.Second
	healthInterval = 100 * time.Millisecond
)

var (
	startForeground bool
	daemonBinary    = "roomdird"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the roomdir daemon",
	Long: `Start the roomdir daemon, which serves the HTTP API, watches the data
directory for new spreadsheets and keeps shared tags in sync.

Use --foreground to run in foreground mode for debugging.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().BoolVarP(&startForeground, "foreground", "f", false, "Run daemon in foreground (for debugging)")
}

func runStart(cmd *cobra.Command, args []string) error {
	root := GetProjectRoot()
	cfg, err := LoadMergedConfig(root)
	if err != nil {
		return err
	}

	stateManager := daemon.NewStateManager(root)
	if running, pid := stateManager.IsRunning(); running {
		return ErrDaemonAlreadyRunning(pid)
	}

	if startForeground {
		return runDaemonForeground(cmd, root, cfg)
	}

	logFile, err := os.OpenFile(stateManager.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return ErrDaemonStartFailed(err)
	}
	defer logFile.Close()

	daemonCmd := exec.Command(daemonBinary, "--project", root)
	daemonCmd.Stdout = logFile
	daemonCmd.Stderr = logFile
	if err := daemonCmd.Start(); err != nil {
		return ErrDaemonStartFailed(err)
	}

	client := NewClient(cfg)
	if err := client.WaitHealthy(cmd.Context(), startTimeout, healthInterval); err != nil {
		if daemonCmd.Process != nil {
			_ = daemonCmd.Process.Kill()
		}
		return ErrDaemonHealthTimeout(stateManager.LogPath())
	}
	_ = daemonCmd.Process.Release()

	out := outputFor(cmd)
	if IsJSONOutput() {
		return out.JSON(map[string]interface{}{"pid": daemonCmd.Process.Pid, "address": cfg.Daemon.Address()})
	}
	out.Success("roomdir daemon started (PID %d) on %s", daemonCmd.Process.Pid, cfg.Daemon.URL())
	return nil
}

// runDaemonForeground runs the daemon in this process until interrupted.
func runDaemonForeground(cmd *cobra.Command, root string, cfg *config.Config) error {
	out := outputFor(cmd)
	out.Info("Starting roomdir daemon in foreground mode...")
	out.Info("Press Ctrl+C to stop\n")

	level := cfg.Daemon.LogLevel
	if IsVerbose() {
		level = "debug"
	}
	logger, err := logging.New(level, "console", "roomdird")
	if err != nil {
		return ErrDaemonStartFailed(err)
	}
	defer logger.Sync()

	d, err := daemon.New(root, cfg, logger)
	if err != nil {
		return ErrDaemonStartFailed(err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	out.Info("Daemon stopped")
	return nil
}
