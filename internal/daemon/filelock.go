package daemon

import (
	"errors"
	"os"
	"runtime"
	"syscall"
	"time"
)

// FileLockError reports a data file that stayed locked by another process,
// typically a spreadsheet still open in an editor.
type FileLockError struct {
	Path string
	Err  error
}

func (e *FileLockError) Error() string {
	return "file is locked: " + e.Path
}

func (e *FileLockError) Unwrap() error {
	return e.Err
}

var lockBackoff = 100 * time.Millisecond

// waitUnlocked keeps trying to open path for reading until it succeeds. Errors that
// are not lock errors are returned at once.
func waitUnlocked(path string, attempts int) error {
	if attempts <= 0 {
		attempts = 3
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		f, err := os.Open(path)
		if err == nil {
			return f.Close()
		}
		lastErr = err
		if !isFileLocked(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * lockBackoff)
	}
	return &FileLockError{Path: path, Err: lastErr}
}

// isFileLocked reports whether err is a sharing or lock violation.
func isFileLocked(err error) bool {
	if err == nil {
		return false
	}
	if os.IsPermission(err) {
		return true
	}
	if runtime.GOOS == "windows" {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			if errno, ok := pathErr.Err.(syscall.Errno); ok {
				// ERROR_SHARING_VIOLATION, ERROR_LOCK_VIOLATION
				return errno == 32 || errno == 33
			}
		}
	}
	return false
}
