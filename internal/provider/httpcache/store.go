// Package httpcache persists provider HTTP responses in a SQLite database so
// repeated runs do not refetch immutable historical data.
package httpcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"racefeatures/internal/services"
)

const (
	dbFileName   = "responses.db"
	lockFileName = "responses.lock"
)

// ErrLocked is returned when another process holds the cache directory.
var ErrLocked = errors.New("cache directory is in use by another racefeatures process")

// Store is a URL-keyed response cache.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Entry is one cached response.
type Entry struct {
	URL       string
	Status    int
	Body      []byte
	FetchedAt time.Time
}

// Stats summarises cache contents.
type Stats struct {
	Path    string
	Entries int64
	Bytes   int64
	Oldest  time.Time
	Newest  time.Time
}

// Open creates dir if needed, takes the directory lock and opens the database.
func Open(ctx context.Context, dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "httpcache", "open", "cache directory not set", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	dbPath := filepath.Join(dir, dbFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, path: dbPath, lock: lock}, nil
}

const schema = `CREATE TABLE IF NOT EXISTS responses (
    url        TEXT PRIMARY KEY,
    status     INTEGER NOT NULL,
    body       BLOB NOT NULL,
    fetched_at TEXT NOT NULL
)`

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the database and releases the directory lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if unlockErr := s.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}

// Get returns the cached entry for rawURL. A miss yields (nil, nil).
func (s *Store) Get(ctx context.Context, rawURL string) (*Entry, error) {
	key := Key(rawURL)
	row := s.db.QueryRowContext(ctx, `SELECT status, body, fetched_at FROM responses WHERE url = ?`, key)
	entry := Entry{URL: key}
	var fetched string
	if err := row.Scan(&entry.Status, &entry.Body, &fetched); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached response: %w", err)
	}
	entry.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetched)
	return &entry, nil
}

// Put stores a successful response. Non-2xx statuses are ignored.
func (s *Store) Put(ctx context.Context, rawURL string, status int, body []byte) error {
	if status < 200 || status > 299 {
		return nil
	}
	if body == nil {
		body = []byte{}
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO responses (url, status, body, fetched_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(url) DO UPDATE SET status = excluded.status, body = excluded.body, fetched_at = excluded.fetched_at`,
		Key(rawURL),
		status,
		body,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put cached response: %w", err)
	}
	return nil
}

// Stats reports entry count, body volume and fetch-time bounds.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}
	var oldest, newest sql.NullString
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(LENGTH(body)), 0), MIN(fetched_at), MAX(fetched_at) FROM responses`)
	if err := row.Scan(&stats.Entries, &stats.Bytes, &oldest, &newest); err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	if oldest.Valid {
		stats.Oldest, _ = time.Parse(time.RFC3339Nano, oldest.String)
	}
	if newest.Valid {
		stats.Newest, _ = time.Parse(time.RFC3339Nano, newest.String)
	}
	return stats, nil
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return n, fmt.Errorf("vacuum cache: %w", err)
	}
	return n, nil
}

// Key normalises a URL for use as a cache key: lower-case scheme and host,
// query parameters sorted, fragment dropped. Unparseable input is returned
// trimmed.
func Key(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.RawQuery != "" {
		q := u.Query()
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			values := append([]string(nil), q[k]...)
			sort.Strings(values)
			for _, v := range values {
				parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(parts, "&")
	}
	return u.String()
}
