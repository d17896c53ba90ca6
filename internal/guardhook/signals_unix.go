//go:build !windows

package guardhook

import (
	"os"
	"syscall"
)

// watchedSignals lists the signals that should trigger cleanup on
// Unix: interrupt, termination request, and terminal hangup
// (§4.5).
func watchedSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}
}
