// Package registry implements the cross-process task registry (§4.2,
// §3): a namespaced key/value store mapping a delegate child's PID to
// a JSON record describing the run, shared by every warden instance
// on the host.
package registry

import (
	"context"
	"strconv"
	"time"
)

// timeLayout is the ISO-8601 UTC, second-precision form required by
// RegistryValue.started_at (§3).
const timeLayout = "2006-01-02T15:04:05Z"

// Timestamp marshals as second-precision UTC ISO-8601, per §3.
type Timestamp struct{ time.Time }

// Now returns the current instant truncated to Timestamp's precision.
func Now() Timestamp { return Timestamp{time.Now().UTC().Truncate(time.Second)} }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.UTC().Format(timeLayout))), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	parsed, err := time.Parse(timeLayout, s)
	if err != nil {
		// Tolerate a richer timestamp (e.g. with sub-second precision or
		// offset) from a peer running a different warden version —
		// forward compatibility (§3).
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	t.Time = parsed.UTC()
	return nil
}

// CleanupReason enumerates why an entry was removed, for debug traces
// only — entries are deleted, not tombstoned, so no reader should rely
// on observing this field (§3, §9).
type CleanupReason string

const (
	CleanupNone    CleanupReason = ""
	CleanupTimeout CleanupReason = "timeout"
	CleanupOrphan  CleanupReason = "orphan"
	CleanupExited  CleanupReason = "exited"
)

// Record is RegistryValue (§3): the JSON payload stored under a PID
// key.
type Record struct {
	StartedAt     Timestamp     `json:"started_at"`
	LogID         string        `json:"log_id"`
	LogPath       string        `json:"log_path"`
	ManagerPID    int           `json:"manager_pid"`
	CleanupReason CleanupReason `json:"cleanup_reason,omitempty"`
}

// Entry pairs a RegistryKey with its parsed value, as returned by
// Snapshot.
type Entry struct {
	Key    string
	PID    int
	Record Record
}

// ErrCapacityExceeded is returned by Put when the namespace has
// reached RegistryMaxEntries live entries (I5, "capacity exhaustion
// fails loudly").
var ErrCapacityExceeded = capacityError{}

type capacityError struct{}

func (capacityError) Error() string { return "registry: namespace at capacity" }

// Registry is the operation set of §4.2.
type Registry interface {
	// Put inserts or overwrites key's value, atomically visible to
	// other processes.
	Put(ctx context.Context, key string, rec Record) error
	// Get returns the current value, or ok=false if absent.
	Get(ctx context.Context, key string) (rec Record, ok bool, err error)
	// Delete removes key if present; absence is not an error.
	Delete(ctx context.Context, key string) error
	// Snapshot returns a point-in-time list of entries. Malformed
	// entries (unparseable key or value) are dropped and removed.
	Snapshot(ctx context.Context) ([]Entry, error)
	// Close releases the underlying connection.
	Close() error
}
