// Package guard implements the Cleanup Guard (§4.4): the single
// idempotent primitive that terminates the delegate and removes its
// registry entry, invoked from every exit path — normal return,
// error, signal, or panic (§9 "guaranteed cleanup").
package guard

import (
	"context"
	"sync"

	"github.com/nullforge/warden/internal/logger"
	"github.com/nullforge/warden/internal/procinfo"
	"github.com/nullforge/warden/internal/registry"
)

// Guard owns exactly one registry entry for the lifetime of one
// supervised run. Grounded on the distilled source's RegistrationGuard
// (registry removal on drop) merged with signal.rs's terminate-on-signal
// path: because Go delivers signals to an ordinary goroutine rather
// than a restricted interrupt context, both halves collapse into one
// idempotent method instead of being split across a Drop impl and a
// C-style signal handler.
type Guard struct {
	reg registry.Registry
	pid int
	key string

	once sync.Once
	mu   sync.Mutex
	ran  bool
}

// New returns a Guard for the given registry key/pid pairing. Nothing
// is registered yet; the caller performs registry.Put separately (S2 in
// §4.7) so a failed Put never leaves a Guard believing it owns an entry
// that does not exist.
func New(reg registry.Registry, pid int, key string) *Guard {
	return &Guard{reg: reg, pid: pid, key: key}
}

// RunOnce terminates the delegate and deletes its registry entry.
// Safe to call concurrently and safe to call more than once: only the
// first call does any work (§4.4, idempotent cleanup).
func (g *Guard) RunOnce(ctx context.Context) {
	g.once.Do(func() {
		g.mu.Lock()
		g.ran = true
		g.mu.Unlock()

		procinfo.Terminate(g.pid)
		if err := g.reg.Delete(ctx, g.key); err != nil {
			logger.Warn("guard: registry delete failed", "pid", g.pid, "error", err)
		}
	})
}

// Ran reports whether RunOnce has already executed. The supervisor
// does not consult it: it calls RunOnce unconditionally in S4 (§4.7)
// and relies on RunOnce's idempotence.
func (g *Guard) Ran() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ran
}
