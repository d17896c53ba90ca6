// Package sweep implements the Startup Sweep (C6, §4.6): the
// unconditional reconciliation pass that runs before every spawn and
// reclaims stale, exited, or orphaned registry entries left behind by
// crashed or vanished wardens.
package sweep

import (
	"context"
	"time"

	"github.com/nullforge/warden/internal/config"
	"github.com/nullforge/warden/internal/logger"
	"github.com/nullforge/warden/internal/procinfo"
	"github.com/nullforge/warden/internal/registry"
)

// Removal records one entry the sweep reclaimed, for callers (tests,
// the admin CLI's `sweep` subcommand) that want to report what
// happened rather than only that it happened.
type Removal struct {
	PID    int
	Reason registry.CleanupReason
}

// Run applies the five-step reconciliation of §4.6 to every entry in
// reg, using now as the reference clock for age comparisons. Parse
// failures inside registry.Snapshot are already handled by the
// registry implementation itself (logged as a warning, then dropped
// and deleted); Run only sees well-formed entries from here on.
func Run(ctx context.Context, reg registry.Registry, now time.Time) ([]Removal, error) {
	entries, err := reg.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var removals []Removal
	for _, entry := range entries {
		reason, terminate := classify(entry, now)
		if reason == registry.CleanupNone {
			continue
		}
		if terminate {
			procinfo.Terminate(entry.PID)
		}
		if err := reg.Delete(ctx, entry.Key); err != nil {
			logger.Warn("sweep: delete failed", "pid", entry.PID, "reason", reason, "error", err)
			continue
		}
		logger.Debug("sweep: reclaimed entry", "pid", entry.PID, "reason", reason)
		removals = append(removals, Removal{PID: entry.PID, Reason: reason})
	}
	return removals, nil
}

// classify decides an entry's fate per §4.6 steps 3-6 (steps 1-2, key
// and started_at parsing, are already enforced by the time Snapshot
// returns an Entry). It reports whether the PID should be forcefully
// terminated before the registry entry is deleted.
func classify(entry registry.Entry, now time.Time) (reason registry.CleanupReason, terminate bool) {
	if now.Sub(entry.Record.StartedAt.Time) > config.MaxRecordAge {
		return registry.CleanupTimeout, true
	}
	if !procinfo.IsAlive(entry.PID) {
		return registry.CleanupExited, false
	}
	if isOrphaned(entry) {
		return registry.CleanupOrphan, true
	}
	return registry.CleanupNone, false
}

// isOrphaned implements §4.6 step 5: the PID's real OS parent must be
// knowable and must differ from the manager that registered it, and
// that manager must itself be gone. When parent_of cannot answer (host
// lacks the capability), the sweep degrades gracefully and skips the
// orphan check, relying on age-based eviction alone (§9 Open Question).
func isOrphaned(entry registry.Entry) bool {
	parent, ok := procinfo.ParentOf(entry.PID)
	if !ok {
		return false
	}
	if parent == entry.Record.ManagerPID {
		return false
	}
	return !procinfo.IsAlive(entry.Record.ManagerPID)
}
