package supervisor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nullforge/warden/internal/registry"
)

type memRegistry struct {
	mu      sync.Mutex
	entries map[string]registry.Record
}

func newMemRegistry() *memRegistry {
	return &memRegistry{entries: map[string]registry.Record{}}
}

func (m *memRegistry) Put(_ context.Context, key string, rec registry.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = rec
	return nil
}
func (m *memRegistry) Get(_ context.Context, key string) (registry.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.entries[key]
	return rec, ok, nil
}
func (m *memRegistry) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
func (m *memRegistry) Snapshot(context.Context) ([]registry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []registry.Entry
	for k, v := range m.entries {
		out = append(out, registry.Entry{Key: k, Record: v})
	}
	return out, nil
}
func (m *memRegistry) Close() error { return nil }

func (m *memRegistry) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func withFakeDelegate(t *testing.T, script string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no /bin/sh on this host")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "codex")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write fake delegate: %v", err)
	}
	old := os.Getenv("PATH")
	t.Setenv("PATH", dir+string(os.PathListSeparator)+old)
}

func TestPassthroughHappyPath(t *testing.T) {
	withFakeDelegate(t, "echo hello\n")
	reg := newMemRegistry()

	code, err := Passthrough(context.Background(), reg, []string{"exec", "run"})
	if err != nil {
		t.Fatalf("Passthrough: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if reg.count() != 0 {
		t.Fatalf("expected registry to be empty after exit, got %d entries", reg.count())
	}
}

func TestPassthroughPropagatesNonZeroExit(t *testing.T) {
	withFakeDelegate(t, "echo boom 1>&2; exit 7\n")
	reg := newMemRegistry()

	code, err := Passthrough(context.Background(), reg, []string{"exec"})
	if err != nil {
		t.Fatalf("Passthrough: %v", err)
	}
	if code != 7 {
		t.Fatalf("expected exit code 7, got %d", code)
	}
	if reg.count() != 0 {
		t.Fatalf("expected registry to be empty after exit, got %d entries", reg.count())
	}
}

func TestPassthroughFailsWhenDelegateMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	reg := newMemRegistry()

	code, err := Passthrough(context.Background(), reg, []string{"exec"})
	if err == nil {
		t.Fatal("expected an error when the delegate cannot be found")
	}
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(err.Error(), "启动失败") {
		t.Fatalf("expected a user-facing startup-failure message, got: %v", err)
	}
}
