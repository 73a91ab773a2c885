// Package store wraps the single SQLite database that backs the whole
// pipeline (§3, §4.2). It is grounded on theRebelliousNerd-codenerd's
// internal/northstar/store.go: a WAL-mode connection string, idempotent
// schema creation on Open, and a small busy-retry helper around writes
// instead of a query builder or ORM — the pack carries no SQL layer beyond
// mattn/go-sqlite3 itself.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	coreerrors "github.com/fpang/madphotos-core/internal/core/errors"
)

// Store is the shared handle every phase and the exporter read and write
// through. A single *sql.DB is safe for concurrent use; SQLite itself
// serializes writers, which is why busyRetry exists below.
type Store struct {
	db *sql.DB
}

const (
	maxBusyRetries = 10
	busyRetryBase  = 1 * time.Second
)

// Open creates the database file if needed, enables WAL journaling and a
// generous busy timeout so concurrent phase workers block briefly instead
// of failing outright, and applies the schema (§4.2: idempotent migrations,
// no down-migrations).
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=60000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// SQLite allows only one writer; a single connection avoids
	// SQLITE_BUSY from Go's own connection pool racing itself.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		if isCorrupt(err) {
			return nil, fmt.Errorf("store: schema init: %w", coreerrors.New(coreerrors.CategoryStore, "open", coreerrors.ErrStoreCorrupt))
		}
		return nil, fmt.Errorf("store: schema init: %w", err)
	}

	log.Debug().Str("path", path).Msg("store opened")
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for packages (export) that need
// ad-hoc read-only joins beyond the typed accessors below.
func (s *Store) DB() *sql.DB { return s.db }

// exec runs a write with linear backoff on SQLITE_BUSY/SQLITE_LOCKED,
// the condition that arises when two phase processes touch the database
// at the same instant despite the busy_timeout pragma already waiting.
func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var lastErr error
	for attempt := 0; attempt < maxBusyRetries; attempt++ {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err == nil {
			return res, nil
		}
		if !isBusy(err) {
			return nil, err
		}
		lastErr = err
		select {
		case <-time.After(busyRetryBase * time.Duration(attempt+1)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, coreerrors.New(coreerrors.CategoryStore, "exec", fmt.Errorf("%w: %v", coreerrors.ErrStoreLocked, lastErr))
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

func isCorrupt(err error) bool {
	return strings.Contains(err.Error(), "malformed") || strings.Contains(err.Error(), "SQLITE_CORRUPT")
}

// Tx runs fn inside a transaction, retrying the whole attempt on a busy
// database the same way exec does for single statements. Multi-row
// writes such as UpsertDominantColors use it so their rows commit
// atomically; phase.Runner's per-item commits do not.
func (s *Store) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < maxBusyRetries; attempt++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			if isBusy(err) {
				lastErr = err
				time.Sleep(busyRetryBase * time.Duration(attempt+1))
				continue
			}
			return err
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			if isBusy(err) {
				lastErr = err
				time.Sleep(busyRetryBase * time.Duration(attempt+1))
				continue
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			if isBusy(err) {
				lastErr = err
				time.Sleep(busyRetryBase * time.Duration(attempt+1))
				continue
			}
			return err
		}
		return nil
	}
	return coreerrors.New(coreerrors.CategoryStore, "tx", fmt.Errorf("%w: %v", coreerrors.ErrStoreLocked, lastErr))
}

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("store: not found")
