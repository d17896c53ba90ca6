//go:build !windows

package launcher

import (
	"os"
	"syscall"
)

// exitCodeOf maps a finished child's state to a platform-conventional
// exit code: its real exit code if it exited normally, or 128+signal
// if it died to a signal (the common shell convention), or 1 if the
// state could not be interpreted at all (§4.7 S4, §8 P3).
func exitCodeOf(state *os.ProcessState, waitErr error) int {
	if state == nil {
		return 1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
