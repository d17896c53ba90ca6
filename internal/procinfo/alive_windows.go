//go:build windows

package procinfo

import (
	"time"

	"golang.org/x/sys/windows"
)

const stillActive = 259 // STILL_ACTIVE

// IsAlive opens pid with limited query rights and checks its exit code
// against STILL_ACTIVE (§4.3).
func IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	var exitCode uint32
	if err := windows.GetExitCodeProcess(h, &exitCode); err != nil {
		return false
	}
	return exitCode == stillActive
}

// Terminate best-effort forcefully kills pid via TerminateProcess,
// waiting briefly for the OS to reap it. Idempotent.
func Terminate(pid int) {
	if pid <= 0 || !IsAlive(pid) {
		return
	}
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE|windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return
	}
	defer windows.CloseHandle(h)

	if windows.TerminateProcess(h, 1) == nil {
		windows.WaitForSingleObject(h, uint32(5*time.Second/time.Millisecond))
	}
}
