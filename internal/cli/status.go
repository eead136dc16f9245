package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roomdir-dev/roomdir/internal/api"
	"github.com/roomdir-dev/roomdir/internal/catalog"
	"github.com/roomdir-dev/roomdir/internal/daemon"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show directory and daemon status",
	Long: `Display the current status of the room directory and the daemon.

Shows information about:
  - Rooms, buildings and floors in the directory
  - Custom and staff tag counts
  - The last import and unmapped abbreviations
  - Daemon running state and uptime

Examples:
  rd status
  rd status --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// StatusReport is the JSON form of 'rd status'.
type StatusReport struct {
	Directory *catalog.Status   `json:"directory"`
	Daemon    *api.DaemonStatus `json:"daemon"`
	Address   string            `json:"address,omitempty"`
	Collab    bool              `json:"collab"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		st, err := ws.svc.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read status: %w", err)
		}
		report := StatusReport{
			Directory: st,
			Collab:    ws.cfg.Collab.Ready(),
		}
		report.Daemon, report.Address = daemonStatus(cmd.Context(), ws)

		out := outputFor(cmd)
		if IsJSONOutput() {
			return out.JSON(report)
		}
		printStatus(out, report)
		return nil
	})
}

// daemonStatus asks the running daemon for its status. A daemon that does
// not answer is reported as running without uptime.
func daemonStatus(ctx context.Context, ws *workspace) (*api.DaemonStatus, string) {
	sm := daemon.NewStateManager(ws.root)
	running, pid := sm.IsRunning()
	if !running {
		return &api.DaemonStatus{}, ""
	}

	address := ws.cfg.Daemon.Address()
	if state, err := sm.LoadState(); err == nil && state.Daemon.Address != "" {
		address = state.Daemon.Address
	}

	status := &api.DaemonStatus{Running: true, PID: pid}
	resp, err := NewClientWithURL("http://"+address).Status(ctx)
	if err != nil {
		ws.logger.Debug("daemon did not answer status request")
		return status, address
	}
	if resp.Daemon != nil {
		status.UptimeSeconds = resp.Daemon.UptimeSeconds
	}
	return status, address
}

func printStatus(out *OutputFormatter, r StatusReport) {
	st := r.Directory
	out.Info("roomdir Status")
	out.Info("==============")
	out.Info("")

	out.Info("Directory:")
	out.Info("  Rooms:      %d", st.Rooms)
	out.Info("  Buildings:  %s", joinOrNone(st.Buildings))
	out.Info("  Floors:     %s", joinOrNone(st.Floors))
	out.Info("  Custom tags: %d", st.CustomTags)
	out.Info("  Staff tags:  %d", st.StaffTags)
	if st.Unmapped > 0 {
		out.Info("  Unmapped:   %d abbreviations (see 'rd abbrev unmapped')", st.Unmapped)
	}
	if !st.LastImport.IsZero() {
		out.Info("  Last import: %s", st.LastImport.Local().Format(time.RFC3339))
	}
	out.Info("  Database:   %s", st.Database)
	out.Info("")

	out.Info("Daemon:")
	if r.Daemon.Running {
		out.Info("  Running:  true")
		out.Info("  PID:      %d", r.Daemon.PID)
		out.Info("  Address:  %s", r.Address)
		if r.Daemon.UptimeSeconds > 0 {
			out.Info("  Uptime:   %s", formatDuration(r.Daemon.UptimeSeconds))
		}
	} else {
		out.Info("  Running:  false")
	}
	out.Info("")

	if r.Collab {
		out.Info("Collaboration: enabled")
	} else {
		out.Info("Collaboration: disabled")
	}
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", seconds)
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
