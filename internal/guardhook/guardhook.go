// Package guardhook wires OS signals and panics to the active Cleanup
// Guard (§4.5), so a warden killed by Ctrl+C, SIGTERM, or an unexpected
// panic still terminates its delegate and clears its registry entry
// before exiting.
package guardhook

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/nullforge/warden/internal/guard"
	"github.com/nullforge/warden/internal/logger"
)

// active holds the Guard for the run currently in flight, if any.
// Grounded on the distilled source's signal.rs CHILD_PID atomic: the
// same "one active target, swap it in and out" shape, but pointing at
// a whole Guard (terminate+delete) instead of a bare pid, since Go's
// signal goroutine can safely run the full guard body rather than only
// a raw kill(2) call.
var active atomic.Pointer[guard.Guard]

var installOnce sync.Once

// Install starts the signal-listening goroutine exactly once per
// process. Subsequent calls are no-ops; the caller re-arms the target
// guard via Arm for each new run.
func Install() {
	installOnce.Do(func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, watchedSignals()...)
		go func() {
			for sig := range sigCh {
				g := active.Load()
				if g == nil {
					continue
				}
				logger.Warn("guardhook: signal received, cleaning up", "signal", sig.String())
				g.RunOnce(context.Background())
				os.Exit(signalExitCode(sig))
			}
		}()
	})
}

// Arm marks g as the guard a delivered signal should invoke. Passing
// nil clears the current target once a run has finished cleanly, so a
// late-arriving signal after a run's own cleanup has no live guard to
// act on.
func Arm(g *guard.Guard) {
	active.Store(g)
}

// Disarm clears the current target if it is still g, avoiding a race
// where a new run's Arm gets wiped by a stale run's cleanup.
func Disarm(g *guard.Guard) {
	active.CompareAndSwap(g, nil)
}

// RecoverAndCleanup belongs in a deferred call at the top of the
// supervised run. If the run panics, it runs g's cleanup, logs the
// panic value, and re-panics so the process still terminates with a
// nonzero status and a visible stack trace (§4.5, §9 "guaranteed
// cleanup on panic").
func RecoverAndCleanup(g *guard.Guard) {
	if r := recover(); r != nil {
		g.RunOnce(context.Background())
		logger.Warn("guardhook: recovered panic after cleanup", "panic", r)
		panic(r)
	}
}

func signalExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
