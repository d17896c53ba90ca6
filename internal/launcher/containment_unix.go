//go:build !windows

package launcher

import "os/exec"

// afterSpawn has nothing further to do on Unix: Setpgid (and, on
// Linux, Pdeathsig) already applied in applyProcAttrs fully describe
// the containment.
func afterSpawn(cmd *exec.Cmd) (func(), error) { return nil, nil }

// enableVirtualTerminalProcessing is a Windows-only concern; ANSI
// escapes work natively in Unix terminals.
func enableVirtualTerminalProcessing() {}
