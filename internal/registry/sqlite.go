package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nullforge/warden/internal/config"
	"github.com/nullforge/warden/internal/logger"
)

// SQLite implements Registry by opening the shared namespace database
// file under the system temp directory. Multiple warden processes
// open the same file concurrently; WAL journaling plus a busy timeout
// give whole-entry-atomic visibility without an external lock server,
// adapted from the teacher's internal/store/sqlite.go.
type SQLite struct {
	db *sql.DB
}

// DefaultPath returns the fixed path every warden instance on the
// host agrees to open for the codex-task namespace (I5).
func DefaultPath() string {
	return filepath.Join(os.TempDir(), config.RegistryNamespace+".registry.db")
}

// OpenOrCreate attaches to the namespace database at path, creating it
// (and its schema) if absent. All peers must agree on path; size is
// enforced logically via RegistryMaxEntries, not a physical file size
// (§4.2 open_or_create).
func OpenOrCreate(ctx context.Context, path string) (*SQLite, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("registry: empty path")
	}
	db, err := sql.Open("sqlite", p+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", p, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("registry: init schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS entries(
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`)
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Put(ctx context.Context, key string, rec Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("registry: encode record: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE key <> ?;`, key).Scan(&count); err != nil {
		return fmt.Errorf("registry: capacity check: %w", err)
	}
	if count >= config.RegistryMaxEntries {
		return ErrCapacityExceeded
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, key, string(value))
	if err != nil {
		return fmt.Errorf("registry: put %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) (Record, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE key=?;`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("registry: get %s: %w", key, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, false, fmt.Errorf("registry: decode %s: %w", key, err)
	}
	return rec, true, nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key=?;`, key)
	if err != nil {
		return fmt.Errorf("registry: delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Snapshot(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM entries;`)
	if err != nil {
		return nil, fmt.Errorf("registry: snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type raw struct{ key, value string }
	var all []raw
	for rows.Next() {
		var r raw
		if err := rows.Scan(&r.key, &r.value); err != nil {
			return nil, fmt.Errorf("registry: snapshot scan: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(all))
	var invalid []string
	for _, r := range all {
		pid, err := strconv.Atoi(r.key)
		if err != nil {
			logger.Warn("registry: dropping entry with unparseable key", "key", r.key)
			invalid = append(invalid, r.key)
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(r.value), &rec); err != nil {
			logger.Warn("registry: dropping entry with unparseable value", "key", r.key, "error", err)
			invalid = append(invalid, r.key)
			continue
		}
		entries = append(entries, Entry{Key: r.key, PID: pid, Record: rec})
	}

	for _, key := range invalid {
		if err := s.Delete(ctx, key); err != nil {
			logger.Warn("registry: failed to remove invalid entry", "key", key, "error", err)
		}
	}

	return entries, nil
}
