// Package logger provides the warden's diagnostic stream: a
// DEBUG_ENABLE-gated slog logger, distinct from the per-run
// combined-output log file that internal/launcher writes (that file
// must stay byte-exact per the log-binding invariant and is never
// touched by this package).
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for the optional rotated log file that a
// caller enables by setting Config.FilePath. Neither binary in this
// tree sets one: cmd/warden calls Init with an empty Config and
// cmd/warden-admin does not call Init, so both log to stderr only.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// Config describes where diagnostic output goes in addition to
// stderr. An empty Config is valid and means "stderr only".
type Config struct {
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func (c Config) writer() io.Writer {
	if c.FilePath == "" {
		return nil
	}
	return &lj.Logger{
		Filename:   c.FilePath,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

var (
	mu      sync.Mutex
	enabled bool
	log     *slog.Logger = slog.New(NewColorTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}, false))
)

// Init configures the package-level diagnostic logger. debugEnabled
// toggles whether Debug() calls are emitted at all; cfg optionally
// adds a rotated file sink alongside stderr.
func Init(debugEnabled bool, cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	enabled = debugEnabled

	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}

	out := io.Writer(os.Stderr)
	if w := cfg.writer(); w != nil {
		out = io.MultiWriter(os.Stderr, w)
	}
	log = slog.New(NewColorTextHandler(out, &slog.HandlerOptions{Level: level}, debugEnabled))
}

// Debug emits a diagnostic line; it is a no-op unless Init was called
// with debugEnabled=true (SweepRemoval and similar non-surfaced events
// use this).
func Debug(msg string, args ...any) {
	mu.Lock()
	on, l := enabled, log
	mu.Unlock()
	if !on {
		return
	}
	l.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Warn always emits, regardless of DEBUG_ENABLE — used for user-facing
// but non-fatal anomalies (e.g. a corrupt registry record being
// discarded).
func Warn(msg string, args ...any) {
	mu.Lock()
	l := log
	mu.Unlock()
	l.Log(context.Background(), slog.LevelWarn, msg, args...)
}
