//go:build windows

package daemon

import "os"

// Only os.Interrupt is delivered reliably on Windows.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

func reloadSignals() []os.Signal {
	return nil
}
