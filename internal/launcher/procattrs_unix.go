//go:build unix && !linux

package launcher

import (
	"os/exec"
	"syscall"
)

// applyProcAttrs puts the child in its own process group. Darwin and
// the BSDs have no Pdeathsig equivalent in syscall.SysProcAttr; an
// orphaned child is instead reclaimed by the startup sweep (§4.6).
func applyProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
