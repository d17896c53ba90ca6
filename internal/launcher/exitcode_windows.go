//go:build windows

package launcher

import "os"

// exitCodeOf returns the child's real exit code; Windows has no
// signal-death convention to special-case (§4.7 S4, §8 P3).
func exitCodeOf(state *os.ProcessState, waitErr error) int {
	if state == nil {
		return 1
	}
	return state.ExitCode()
}
