package cli

import (
	"fmt"
	"strings"
)

// CLIError represents a user-friendly error with context and suggestions.
type CLIError struct {
	Message    string
	Suggestion string
	Cause      error
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	if e.Suggestion != "" {
		sb.WriteString("\n\nSuggestion: ")
		sb.WriteString(e.Suggestion)
	}
	return sb.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLIError with a message and suggestion.
func NewCLIError(message, suggestion string) *CLIError {
	return &CLIError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapError wraps an existing error with additional context.
func WrapError(cause error, message, suggestion string) *CLIError {
	return &CLIError{
		Message:    message,
		Suggestion: suggestion,
		Cause:      cause,
	}
}

// =============================================================================
// Common CLI Errors
// =============================================================================

// ErrNotInitialized returns an error for uninitialized projects.
func ErrNotInitialized() *CLIError {
	return &CLIError{
		Message:    "roomdir has not been initialized in this project",
		Suggestion: "Run 'rd init' in your project root to set up roomdir",
	}
}

// ErrDaemonNotRunning returns an error when the daemon is not running.
func ErrDaemonNotRunning() *CLIError {
	return &CLIError{
		Message:    "roomdir daemon is not running",
		Suggestion: "Start the daemon with 'rd start'",
	}
}

// ErrDaemonAlreadyRunning returns an error when daemon is already running.
func ErrDaemonAlreadyRunning(pid int) *CLIError {
	return &CLIError{
		Message:    fmt.Sprintf("roomdir daemon is already running (PID %d)", pid),
		Suggestion: "Use 'rd status' to check the daemon, or 'rd stop' to stop it first",
	}
}

// ErrDaemonStartFailed returns an error when daemon fails to start.
func ErrDaemonStartFailed(cause error) *CLIError {
	return &CLIError{
		Message:    "Failed to start roomdir daemon",
		Suggestion: "Check that roomdird is installed and in your PATH. You may need to run 'go install ./cmd/roomdird'",
		Cause:      cause,
	}
}

// ErrDaemonHealthTimeout returns an error when daemon doesn't respond.
func ErrDaemonHealthTimeout(logPath string) *CLIError {
	return &CLIError{
		Message:    "Daemon failed to respond to health check within timeout",
		Suggestion: fmt.Sprintf("The daemon may have crashed during startup. Check %s, or run 'roomdird' directly to see errors", logPath),
	}
}

// ErrDaemonConnectionFailed returns an error when connection to daemon fails.
func ErrDaemonConnectionFailed(cause error) *CLIError {
	return &CLIError{
		Message:    "Cannot connect to roomdir daemon",
		Suggestion: "Is the daemon running? Check with 'rd status' or start it with 'rd start'",
		Cause:      cause,
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(cause error) *CLIError {
	return &CLIError{
		Message:    "Configuration file is invalid",
		Suggestion: "Check .roomdir/config.yaml for mistakes, or delete it and run 'rd init' to recreate",
		Cause:      cause,
	}
}

// ErrInvalidProjectRoot returns an error for invalid project directory.
func ErrInvalidProjectRoot(path string) *CLIError {
	return &CLIError{
		Message:    fmt.Sprintf("Invalid project root: %s", path),
		Suggestion: "Ensure the path exists and is a directory. Use --project to specify a different path",
	}
}

// ErrEmptyQuery returns an error for empty search queries.
func ErrEmptyQuery() *CLIError {
	return &CLIError{
		Message:    "Search query cannot be empty",
		Suggestion: "Provide a search query, e.g., 'rd search \"floor 2 exam\"'",
	}
}

// ErrRoomNotFound returns an error for an identifier that matches no room.
func ErrRoomNotFound(identifier string) *CLIError {
	return &CLIError{
		Message:    fmt.Sprintf("No room matches %q", identifier),
		Suggestion: "Use a record number, room id or room number. 'rd search' shows them",
	}
}

// ErrEmptyDirectory returns an error when an operation needs imported rooms.
func ErrEmptyDirectory() *CLIError {
	return &CLIError{
		Message:    "The directory has no rooms",
		Suggestion: "Import a room spreadsheet with 'rd import <file>'",
	}
}

// ErrCollabDisabled returns an error when sync is requested but not set up.
func ErrCollabDisabled() *CLIError {
	return &CLIError{
		Message:    "Collaboration is not configured",
		Suggestion: "Set collab.enabled and collab.url with 'rd config set'",
	}
}
