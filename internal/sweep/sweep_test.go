package sweep

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/nullforge/warden/internal/registry"
)

type memRegistry struct {
	entries map[string]registry.Record
	deleted []string
}

func newMemRegistry(entries map[string]registry.Record) *memRegistry {
	return &memRegistry{entries: entries}
}

func (m *memRegistry) Put(_ context.Context, key string, rec registry.Record) error {
	m.entries[key] = rec
	return nil
}
func (m *memRegistry) Get(_ context.Context, key string) (registry.Record, bool, error) {
	rec, ok := m.entries[key]
	return rec, ok, nil
}
func (m *memRegistry) Delete(_ context.Context, key string) error {
	delete(m.entries, key)
	m.deleted = append(m.deleted, key)
	return nil
}
func (m *memRegistry) Snapshot(context.Context) ([]registry.Entry, error) {
	var out []registry.Entry
	for k, v := range m.entries {
		pid, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out = append(out, registry.Entry{Key: k, PID: pid, Record: v})
	}
	return out, nil
}
func (m *memRegistry) Close() error { return nil }

func TestRunReclaimsAgedOutEntry(t *testing.T) {
	now := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)
	rec := registry.Record{
		StartedAt:  registry.Timestamp{Time: now.Add(-13 * time.Hour)},
		ManagerPID: os.Getpid(),
	}
	reg := newMemRegistry(map[string]registry.Record{"999999": rec})

	removals, err := Run(context.Background(), reg, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(removals) != 1 || removals[0].Reason != registry.CleanupTimeout {
		t.Fatalf("expected one timeout removal, got %+v", removals)
	}
	if len(reg.entries) != 0 {
		t.Fatalf("expected entry to be deleted, registry still has %v", reg.entries)
	}
}

func TestRunReclaimsExitedProcess(t *testing.T) {
	now := time.Now().UTC()
	rec := registry.Record{
		StartedAt:  registry.Timestamp{Time: now.Add(-time.Minute)},
		ManagerPID: os.Getpid(),
	}
	// A PID this large is extremely unlikely to be a live process on
	// any host; procinfo.IsAlive should report it as dead.
	reg := newMemRegistry(map[string]registry.Record{"9999999": rec})

	removals, err := Run(context.Background(), reg, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(removals) != 1 || removals[0].Reason != registry.CleanupExited {
		t.Fatalf("expected one exited removal, got %+v", removals)
	}
}

func TestRunLeavesLiveOwnedEntryAlone(t *testing.T) {
	now := time.Now().UTC()
	rec := registry.Record{
		StartedAt:  registry.Timestamp{Time: now.Add(-time.Minute)},
		ManagerPID: os.Getpid(),
	}
	// Use our own PID as the registered "child" so IsAlive(pid) is true
	// and the manager (also our own PID) is alive too, so neither the
	// exited- nor the orphan-cleanup path should fire.
	reg := newMemRegistry(map[string]registry.Record{
		strconv.Itoa(os.Getpid()): rec,
	})

	removals, err := Run(context.Background(), reg, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(removals) != 0 {
		t.Fatalf("expected no removals for a live, owned entry, got %+v", removals)
	}
}
