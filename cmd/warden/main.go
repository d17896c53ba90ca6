// Command warden transparently wraps the codex delegate binary: it
// forwards argv verbatim, tees combined output to a per-run log file,
// and maintains a cross-process registry entry describing the run
// (§4.7, §6). Deliberately does not use a flag-parsing framework: the
// "wait" token must match argv exactly and every other argv, including
// one that merely starts with "wait", must pass through untouched —
// a property no subcommand-matching CLI library can guarantee without
// its own escape hatch getting in the way.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nullforge/warden/internal/config"
	"github.com/nullforge/warden/internal/logger"
	"github.com/nullforge/warden/internal/registry"
	"github.com/nullforge/warden/internal/supervisor"
	"github.com/nullforge/warden/internal/waitmode"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger.Init(config.DebugEnabled(), logger.Config{})

	ctx := context.Background()
	args := os.Args[1:]

	reg, err := registry.OpenOrCreate(ctx, registry.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法打开任务注册表: %v\n", err)
		return 1
	}
	defer func() { _ = reg.Close() }()

	supervisor.RunSweep(ctx, reg)

	if len(args) == 0 {
		code, err := supervisor.VersionCheck(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		return code
	}

	if len(args) == 1 && args[0] == "wait" {
		code, err := waitmode.Run(ctx, reg, waitmode.RealClock, os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return code
	}

	code, err := supervisor.Passthrough(ctx, reg, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return code
}
