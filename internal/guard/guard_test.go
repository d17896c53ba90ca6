package guard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nullforge/warden/internal/registry"
)

type fakeRegistry struct {
	mu       sync.Mutex
	deletes  int
	deleteFn func(key string) error
}

func (f *fakeRegistry) Put(context.Context, string, registry.Record) error { return nil }
func (f *fakeRegistry) Get(context.Context, string) (registry.Record, bool, error) {
	return registry.Record{}, false, nil
}
func (f *fakeRegistry) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteFn != nil {
		return f.deleteFn(key)
	}
	return nil
}
func (f *fakeRegistry) Snapshot(context.Context) ([]registry.Entry, error) { return nil, nil }
func (f *fakeRegistry) Close() error                                      { return nil }

func TestRunOnceDeletesExactlyOnce(t *testing.T) {
	fr := &fakeRegistry{}
	g := New(fr, 0, "notapid")

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.RunOnce(context.Background())
		}()
	}
	wg.Wait()

	if fr.deletes != 1 {
		t.Fatalf("expected exactly 1 delete, got %d", fr.deletes)
	}
	if !g.Ran() {
		t.Fatal("expected Ran() to report true after RunOnce")
	}
}

func TestRunOnceSurvivesDeleteError(t *testing.T) {
	fr := &fakeRegistry{deleteFn: func(string) error { return errors.New("boom") }}
	g := New(fr, 0, "key")
	g.RunOnce(context.Background())
	if fr.deletes != 1 {
		t.Fatalf("expected delete attempt despite error, got %d calls", fr.deletes)
	}
}
