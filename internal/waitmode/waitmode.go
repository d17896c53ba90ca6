// Package waitmode implements Wait Mode (C8, §4.8): polling the
// registry until every run it is watching has drained, then emitting
// the exact Chinese completion (or 24h-timeout) summary mandated by
// spec.md §6.
package waitmode

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nullforge/warden/internal/config"
	"github.com/nullforge/warden/internal/registry"
)

// Clock abstracts time.Now/time.Sleep and the 24h deadline itself so
// a test can shorten the deadline (§8 Scenario 6's "test hook") without
// also perturbing the unrelated 12h record-age comparison, which reads
// the same Clock's Now but is always measured against the fixed
// config.MaxRecordAge bound.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
	Deadline() time.Duration
}

type realClock struct{}

func (realClock) Now() time.Time          { return time.Now().UTC() }
func (realClock) Sleep(d time.Duration)   { time.Sleep(d) }
func (realClock) Deadline() time.Duration { return config.MaxWaitDuration }

// RealClock is the production Clock used by cmd/warden.
var RealClock Clock = realClock{}

// completion is one entry observed to have left the registry between
// rounds: it finished (or was reclaimed) by some other means, and its
// log path is worth reporting to the operator.
type completion struct {
	pid     int
	logPath string
}

// Run polls reg on Clock-driven intervals until either it observes an
// empty snapshot (drained, §4.8 condition 1) or the 24h deadline
// elapses (condition 2), writing the mandated summary to out and
// returning the process exit code (always 0 per §6, "Wait mode: always
// 0 except for internal fatal errors").
func Run(ctx context.Context, reg registry.Registry, clock Clock, out io.Writer) (int, error) {
	interval := config.WaitInterval()
	start := clock.Now()

	var finished []completion
	seen := map[string]bool{}
	prevKeys := map[string]registry.Entry{}

	for {
		now := clock.Now()

		entries, err := reg.Snapshot(ctx)
		if err != nil {
			return 1, err
		}
		curKeys := make(map[string]registry.Entry, len(entries))
		for _, e := range entries {
			curKeys[e.Key] = e
		}

		var removedThisRound []registry.Entry
		for key, prev := range prevKeys {
			if _, stillThere := curKeys[key]; !stillThere {
				removedThisRound = append(removedThisRound, prev)
			}
		}
		sort.Slice(removedThisRound, func(i, j int) bool {
			return removedThisRound[i].Key < removedThisRound[j].Key
		})
		for _, e := range removedThisRound {
			if seen[e.Key] {
				continue
			}
			seen[e.Key] = true
			c := completion{pid: e.PID, logPath: e.Record.LogPath}
			emitRealtimeUpdate(out, c)
			finished = append(finished, c)
		}

		// Age-based eviction (§4.8 last bullet): entries older than
		// MaxRecordAge are deleted as stale, not counted as finished.
		remaining := make(map[string]registry.Entry, len(curKeys))
		for key, e := range curKeys {
			if now.Sub(e.Record.StartedAt.Time) > config.MaxRecordAge {
				seen[key] = true
				_ = reg.Delete(ctx, key)
				continue
			}
			remaining[key] = e
		}
		prevKeys = remaining

		if len(remaining) == 0 {
			writeCompletionSummary(out, finished)
			return 0, nil
		}

		if now.Sub(start) >= clock.Deadline() {
			stillRunning := make([]registry.Entry, 0, len(remaining))
			for _, e := range remaining {
				stillRunning = append(stillRunning, e)
			}
			writeTimeoutSummary(out, finished, stillRunning)
			return 0, nil
		}

		clock.Sleep(interval)
	}
}

func emitRealtimeUpdate(out io.Writer, c completion) {
	fmt.Fprintf(out, "✅ 任务完成 PID=%d\n", c.pid)
	fmt.Fprintf(out, "日志文件: %s\n", c.logPath)
}

// writeCompletionSummary renders the exact §6 template for the drained
// case: every field below is load-bearing for scenario 5's assertion
// on stdout content, so the wording must not drift from spec.md.
func writeCompletionSummary(out io.Writer, finished []completion) {
	var b strings.Builder
	fmt.Fprintf(&b, "当前有 %d 个任务已完成，详见：\n", len(finished))
	for i, c := range finished {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.logPath)
	}
	b.WriteString("请逐一查看日志并继续后续工作。\n")
	io.WriteString(out, b.String())
}

// writeTimeoutSummary renders the 24h-deadline case: equivalent
// Chinese phrasing enumerating still-live (pid, log_path) pairs
// (§6).
func writeTimeoutSummary(out io.Writer, finished []completion, stillRunning []registry.Entry) {
	var b strings.Builder
	fmt.Fprintf(&b, "等待已达到 24 小时上限，仍有 %d 个任务未完成，详见：\n", len(stillRunning))
	sorted := append([]registry.Entry(nil), stillRunning...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	for i, e := range sorted {
		fmt.Fprintf(&b, "%d. PID=%d %s\n", i+1, e.PID, e.Record.LogPath)
	}
	if len(finished) > 0 {
		fmt.Fprintf(&b, "另有 %d 个任务已完成：\n", len(finished))
		for i, c := range finished {
			fmt.Fprintf(&b, "%d. %s\n", i+1, c.logPath)
		}
	}
	b.WriteString("请逐一查看日志并继续后续工作。\n")
	io.WriteString(out, b.String())
}
