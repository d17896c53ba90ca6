//go:build windows

package guardhook

import "os"

// watchedSignals on Windows maps to the console control events Go's
// os/signal already translates to os.Interrupt; there is no SIGHUP or
// SIGTERM equivalent delivered through this path (§4.5).
func watchedSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
