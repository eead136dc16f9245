package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/roomdir-dev/roomdir/internal/config"
)

const (
	StateFile = "state.json"
	PIDFile   = "roomdir.pid"
	LogFile   = "daemon.log"
)

// DaemonState is what a running daemon records about itself in .roomdir.
type DaemonState struct {
	Version int `json:"version"`
	Daemon  struct {
		PID       int       `json:"pid"`
		StartedAt time.Time `json:"started_at"`
		Address   string    `json:"address"`
	} `json:"daemon"`
	Directory struct {
		Rooms      int       `json:"rooms"`
		Revision   uint64    `json:"revision"`
		LastImport time.Time `json:"last_import,omitempty"`
	} `json:"directory"`
}

// StateManager reads and writes the PID and state files of a project.
type StateManager struct {
	dir string
}

// NewStateManager creates a StateManager for the given project root.
func NewStateManager(projectRoot string) *StateManager {
	return &StateManager{dir: filepath.Join(projectRoot, config.ProjectDir)}
}

// Dir returns the state directory.
func (s *StateManager) Dir() string {
	return s.dir
}

// LogPath returns where a detached daemon writes its log.
func (s *StateManager) LogPath() string {
	return filepath.Join(s.dir, LogFile)
}

// SaveState persists state.
func (s *StateManager) SaveState(state *DaemonState) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", config.ProjectDir, err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, StateFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// LoadState reads the saved state. A missing file yields an empty version 1
// state.
func (s *StateManager) LoadState() (*DaemonState, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, StateFile))
	if os.IsNotExist(err) {
		return &DaemonState{Version: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state DaemonState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return &state, nil
}

// WritePID records pid.
func (s *StateManager) WritePID(pid int) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", config.ProjectDir, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, PIDFile), []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// ReadPID returns the recorded pid.
func (s *StateManager) ReadPID() (int, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, PIDFile))
	if err != nil {
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID format: %w", err)
	}
	return pid, nil
}

// RemovePID deletes the PID file; a missing file is not an error.
func (s *StateManager) RemovePID() error {
	err := os.Remove(filepath.Join(s.dir, PIDFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning reports whether the recorded daemon is alive. A PID file left by
// a dead process is removed and (false, pid) returned; (false, 0) means no
// PID file.
func (s *StateManager) IsRunning() (bool, int) {
	pid, err := s.ReadPID()
	if err != nil {
		return false, 0
	}
	if !IsProcessRunning(pid) {
		_ = s.RemovePID()
		return false, pid
	}
	return true, pid
}
