package posterstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type busyError struct{}

func (busyError) Error() string { return "database is locked (5) (SQLITE_BUSY)" }
func (busyError) Code() int     { return sqliteBusyCode }

func TestRetryOnBusyRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := retryOnBusy(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return busyError{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retryOnBusy returned %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestRetryOnBusyStopsOnOtherErrors(t *testing.T) {
	boom := errors.New("constraint failed")
	attempts := 0
	err := retryOnBusy(context.Background(), func() error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) || attempts != 1 {
		t.Fatalf("err = %v attempts = %d, want boom after 1 attempt", err, attempts)
	}
}

func TestRetryOnBusyHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retryOnBusy(ctx, func() error { return busyError{} })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCountAndListSucceedWhileWriterHoldsTransaction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posters.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()
	if err := store.Put(ctx, "Heat", "https://img/heat"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	writer, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath writer: %v", err)
	}
	t.Cleanup(func() { _ = writer.Close() })
	tx, err := writer.db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO posters (title, poster_url, cached_at) VALUES ('Ran', 'https://img/ran', '2026-01-01T00:00:00Z')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	n, err := store.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Count = %d, %v; want 1", n, err)
	}
	entries, err := store.List(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("List = %v, %v; want one entry", entries, err)
	}
}
