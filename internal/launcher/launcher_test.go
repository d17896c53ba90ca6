//go:build !windows

package launcher

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// fakeDelegate builds a tiny shell-driven stand-in for the delegate
// binary so tests never depend on codex actually being installed,
// mirroring the teacher's own pattern of exercising process.go against
// /bin/sh rather than a real managed service.
func fakeDelegate(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "codex")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write fake delegate: %v", err)
	}
	return dir
}

func withDelegateOnPath(t *testing.T, dir string) {
	t.Helper()
	old := os.Getenv("PATH")
	t.Setenv("PATH", dir+string(os.PathListSeparator)+old)
}

func TestSpawnTeesCombinedOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no /bin/sh on this host")
	}
	dir := fakeDelegate(t, "echo out-line; echo err-line 1>&2\n")
	withDelegateOnPath(t, dir)

	logPath := filepath.Join(t.TempDir(), "run.log")
	sp, err := Spawn(nil, logPath)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	code, _ := sp.Wait()
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "out-line") || !strings.Contains(text, "err-line") {
		t.Fatalf("expected both streams in combined log, got %q", text)
	}
}

func TestSpawnReportsNonZeroExit(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no /bin/sh on this host")
	}
	dir := fakeDelegate(t, "exit 7\n")
	withDelegateOnPath(t, dir)

	logPath := filepath.Join(t.TempDir(), "run.log")
	sp, err := Spawn(nil, logPath)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	code, _ := sp.Wait()
	if code != 7 {
		t.Fatalf("expected exit code 7, got %d", code)
	}
}

func TestSpawnFailsIfLogFileAlreadyExists(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no /bin/sh on this host")
	}
	dir := fakeDelegate(t, "true\n")
	withDelegateOnPath(t, dir)

	logPath := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(logPath, []byte("pre-existing"), 0o600); err != nil {
		t.Fatalf("seed existing log: %v", err)
	}
	if _, err := Spawn(nil, logPath); err == nil {
		t.Fatal("expected Spawn to refuse to overwrite an existing log file")
	}
}

func TestSpawnFailsWhenDelegateMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	logPath := filepath.Join(t.TempDir(), "run.log")
	if _, err := Spawn(nil, logPath); err == nil {
		t.Fatal("expected Spawn to fail when the delegate binary cannot be found")
	}
}
