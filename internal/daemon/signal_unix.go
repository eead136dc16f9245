//go:build !windows

package daemon

import (
	"os"
	"syscall"
)

func shutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// SIGHUP reloads the directory from the database.
func reloadSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP}
}
