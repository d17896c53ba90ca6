// Package procinfo implements the liveness, parentage, and
// termination primitives of §4.3: IsAlive, ParentOf, Terminate.
// Platform-specific mechanics live in the _unix/_windows build-tagged
// files; ParentOf is cross-platform via gopsutil.
package procinfo

import (
	"context"
	"time"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// ParentOf returns the parent PID of pid if the host can answer the
// query, else ok=false (§4.3; used solely by the orphan check in
// §4.6, which must degrade gracefully per spec.md §9 when parentage is
// unavailable).
func ParentOf(pid int) (parent int, ok bool) {
	proc, err := gopsproc.NewProcessWithContext(context.Background(), int32(pid))
	if err != nil {
		return 0, false
	}
	ppid, err := proc.Ppid()
	if err != nil || ppid <= 0 {
		return 0, false
	}
	return int(ppid), true
}

// terminationGrace is how long Terminate waits after a graceful signal
// before escalating to a forceful kill (Unix SIGTERM→SIGKILL; mirrors
// the distilled source's 500ms grace window).
const terminationGrace = 500 * time.Millisecond
