//go:build windows

package daemon

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// IsProcessRunning reports whether pid names a live process. FindProcess
// always succeeds on Windows, so tasklist is consulted.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	out, err := exec.Command("tasklist", "/FI", "PID eq "+strconv.Itoa(pid), "/NH", "/FO", "CSV").Output()
	if err != nil {
		return false
	}
	s := string(out)
	if strings.Contains(s, "INFO:") {
		return false
	}
	return strings.Contains(s, `"`+strconv.Itoa(pid)+`"`)
}

// TerminateProcess kills pid. Windows has no graceful signal for a detached
// console process, so grace only bounds the wait for exit.
func TerminateProcess(pid int, grace time.Duration) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := process.Kill(); err != nil {
		return err
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) && IsProcessRunning(pid) {
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}

// ReloadProcess is not supported on Windows; the daemon picks up changes
// made by other processes after a restart.
func ReloadProcess(pid int) error {
	return nil
}
