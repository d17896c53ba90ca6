//go:build windows

package launcher

import (
	"os/exec"
	"syscall"
)

// applyProcAttrs requests a new process group so a later
// GenerateConsoleCtrlEvent aimed at warden does not also reach the
// delegate directly; containment proper is the job object set up in
// afterSpawn.
func applyProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
