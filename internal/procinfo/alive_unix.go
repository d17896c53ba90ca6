//go:build !windows

package procinfo

import (
	"errors"
	"syscall"
	"time"
)

// IsAlive sends signal 0 to pid: ESRCH means dead, EPERM means alive
// (we exist but lack privilege to signal it), nil means alive (§4.3).
func IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}

// Terminate best-effort forcefully kills pid: SIGTERM, a short grace
// window, then SIGKILL if still alive. Idempotent; it blocks only for
// the fixed terminationGrace window and never waits for the process to
// actually exit after SIGKILL, so it is safe to call from a
// signal-delivery path (§4.3, §4.5).
func Terminate(pid int) {
	if pid <= 0 || !IsAlive(pid) {
		return
	}
	_ = syscall.Kill(pid, syscall.SIGTERM)
	time.Sleep(terminationGrace)
	if !IsAlive(pid) {
		return
	}
	_ = syscall.Kill(pid, syscall.SIGKILL)
}
