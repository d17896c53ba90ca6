//go:build linux

package launcher

import (
	"os/exec"
	"syscall"
)

// applyProcAttrs puts the child in its own process group and asks the
// kernel to SIGTERM it if warden itself dies before reaping it
// (Pdeathsig is Linux-only; other Unixes fall back to the process
// group alone, reaped by the startup sweep on next invocation).
func applyProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGTERM,
	}
}
