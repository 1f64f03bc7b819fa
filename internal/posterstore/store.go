package posterstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reelmatch/internal/config"
)

// Entry is one persisted poster mapping.
type Entry struct {
	Title     string    `json:"title"`
	PosterURL string    `json:"poster_url"`
	CachedAt  time.Time `json:"cached_at"`
}

// Store manages poster persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the poster cache under the configured data directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.PosterDBPath())
}

// OpenPath initializes or connects to the poster database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("poster cache path required")
	}
	db, err := sql.Open("sqlite", filepath.Clean(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the poster URL stored for title.
func (s *Store) Get(ctx context.Context, title string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var posterURL string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT poster_url FROM posters WHERE title = ?", title).Scan(&posterURL)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup poster: %w", err)
	}
	return posterURL, true, nil
}

// Put inserts or replaces the poster URL for title.
func (s *Store) Put(ctx context.Context, title, posterURL string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title cannot be empty")
	}
	if strings.TrimSpace(posterURL) == "" {
		return errors.New("poster url cannot be empty")
	}
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO posters (title, poster_url, cached_at) VALUES (?, ?, ?)
			 ON CONFLICT(title) DO UPDATE SET poster_url = excluded.poster_url, cached_at = excluded.cached_at`,
			title, posterURL, now)
		return err
	})
}

// Remove deletes the entry for title. Removing a missing title is not an error.
func (s *Store) Remove(ctx context.Context, title string) (bool, error) {
	ctx = ensureContext(ctx)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM posters WHERE title = ?", title)
		return execErr
	})
	if err != nil {
		return false, fmt.Errorf("remove poster: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove poster: %w", err)
	}
	return n > 0, nil
}

// List returns all entries, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	ctx = ensureContext(ctx)
	var entries []Entry
	err := retryOnBusy(ctx, func() error {
		var listErr error
		entries, listErr = s.list(ctx)
		return listErr
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) list(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT title, poster_url, cached_at FROM posters ORDER BY cached_at DESC, title")
	if err != nil {
		return nil, fmt.Errorf("list posters: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry    Entry
			cachedAt string
		)
		if err := rows.Scan(&entry.Title, &entry.PosterURL, &cachedAt); err != nil {
			return nil, fmt.Errorf("scan poster: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, cachedAt); parseErr == nil {
			entry.CachedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posters: %w", err)
	}
	return entries, nil
}

// Count returns the number of persisted posters.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var n int
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM posters").Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count posters: %w", err)
	}
	return n, nil
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM posters")
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("clear posters: %w", err)
	}
	return res.RowsAffected()
}
