// Package supervisor implements the Warden Supervisor (C7, §4.7): the
// S0-S4 state machine that sweeps stale entries, spawns the delegate,
// registers it, waits for it, and guarantees cleanup on every exit
// path.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nullforge/warden/internal/config"
	"github.com/nullforge/warden/internal/guard"
	"github.com/nullforge/warden/internal/guardhook"
	"github.com/nullforge/warden/internal/launcher"
	"github.com/nullforge/warden/internal/logger"
	"github.com/nullforge/warden/internal/registry"
	"github.com/nullforge/warden/internal/sweep"
)

// VersionCheck runs S0's empty-argv branch: `DELEGATE --version`.
// Returns exit code 0 on success, 1 with a user-facing error
// otherwise (§4.7, §6, §7 DelegateUnavailable).
func VersionCheck(ctx context.Context) (int, error) {
	out, err := exec.CommandContext(ctx, config.DelegateBinary, "--version").Output()
	if err != nil {
		return 1, fmt.Errorf("codex 版本检查失败: %w", err)
	}
	fmt.Print(string(out))
	return 0, nil
}

// RunSweep executes the Startup Sweep (C6) unconditionally at warden
// entry, before any spawn decision (§4.6, §4.7 S0).
func RunSweep(ctx context.Context, reg registry.Registry) {
	removals, err := sweep.Run(ctx, reg, time.Now().UTC())
	if err != nil {
		logger.Debug("supervisor: sweep failed", "error", err)
		return
	}
	for _, r := range removals {
		logger.Debug("supervisor: sweep reclaimed entry", "pid", r.PID, "reason", r.Reason)
	}
}

// Passthrough executes S1-S4 for any argv that is neither empty nor
// exactly ["wait"]: spawn the delegate, tee its output, register it in
// reg for the duration of the run, and return its exit code.
func Passthrough(ctx context.Context, reg registry.Registry, args []string) (int, error) {
	guardhook.Install()

	// S1 Prepare: generate log_id, create the log file path, and arm a
	// placeholder guard (pid=0 is inert to Terminate) so a signal
	// delivered mid-spawn has something safe to invoke.
	logID := uuid.NewString()
	logPath := filepath.Join(os.TempDir(), logID+".txt")
	placeholder := guard.New(reg, 0, "")
	guardhook.Arm(placeholder)

	// S2 Spawn.
	sp, err := launcher.Spawn(args, logPath)
	if err != nil {
		guardhook.Disarm(placeholder)
		return 1, fmt.Errorf("codex 启动失败: %w", err)
	}

	key := strconv.Itoa(sp.PID)
	liveGuard := guard.New(reg, sp.PID, key)
	guardhook.Arm(liveGuard)
	defer guardhook.RecoverAndCleanup(liveGuard)

	rec := registry.Record{
		StartedAt:  registry.Now(),
		LogID:      logID,
		LogPath:    logPath,
		ManagerPID: os.Getpid(),
	}
	if err := reg.Put(ctx, key, rec); err != nil {
		// §4.7 S2: put failure terminates the child immediately and
		// exits 1 without ever having made the entry visible.
		liveGuard.RunOnce(ctx)
		guardhook.Disarm(liveGuard)
		_, _ = sp.Wait()
		return 1, fmt.Errorf("注册任务失败: %w", err)
	}

	// S3 Supervise.
	code, waitErr := sp.Wait()

	// S4 Finalize.
	liveGuard.RunOnce(ctx)
	guardhook.Disarm(liveGuard)

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return code, fmt.Errorf("codex 执行异常: %w", waitErr)
		}
	}
	return code, nil
}
