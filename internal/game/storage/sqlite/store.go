// Package sqlite provides a SQLite-backed game storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cheeseisland/engine/internal/game/storage"
	"github.com/cheeseisland/engine/internal/game/storage/sqlite/migrations"
	apperrors "github.com/cheeseisland/engine/internal/platform/errors"
	sqlitemigrate "github.com/cheeseisland/engine/internal/platform/storage/sqlitemigrate"
	"github.com/cheeseisland/engine/internal/platform/timeouts"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// dbtx is the query surface shared by *sql.DB and *sql.Tx, so every entity
// method works both in auto-commit mode and inside WithinTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn implements every entity store against one dbtx.
type conn struct {
	db dbtx
}

// Store persists game state in SQLite.
type Store struct {
	*conn
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite game store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{conn: &conn{db: sqlDB}, sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// WithinTx runs fn inside one transaction bounded by timeouts.StoreTx. The
// function's writes commit together or not at all; exceeding the bound
// aborts with a Timeout error and zero persisted effects.
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if fn == nil {
		return fmt.Errorf("transaction function is required")
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.StoreTx)
	defer cancel()

	sqlTx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(&conn{db: sqlTx}); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.Wrap(apperrors.CodeTimeout, "transaction deadline exceeded", err)
		}
		if isBusy(err) {
			return apperrors.Wrap(apperrors.CodeConflict, "transaction lost a concurrent write race", err)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.Wrap(apperrors.CodeTimeout, "transaction deadline exceeded", err)
		}
		if isBusy(err) {
			return apperrors.Wrap(apperrors.CodeConflict, "transaction lost a concurrent write race", err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// listClauses assembles WHERE/LIMIT fragments for keyset pagination. The
// returned params line up with the placeholders in the returned suffix.
func listClauses(query storage.ListQuery) (string, []any, int, error) {
	pageSize := query.PageSize
	if pageSize <= 0 {
		return "", nil, 0, fmt.Errorf("page size must be greater than zero")
	}

	var where []string
	var params []any
	if strings.TrimSpace(query.WhereClause) != "" {
		where = append(where, query.WhereClause)
		params = append(params, query.WhereParams...)
	}
	if token := strings.TrimSpace(query.PageToken); token != "" {
		where = append(where, "id > ?")
		params = append(params, token)
	}

	suffix := ""
	if len(where) > 0 {
		suffix = " WHERE " + strings.Join(where, " AND ")
	}
	suffix += " ORDER BY id ASC LIMIT ?"
	params = append(params, pageSize+1)
	return suffix, params, pageSize, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// isBusy reports whether err is SQLite's signal that the transaction lost a
// write race, either outright (SQLITE_BUSY) or because its read snapshot
// went stale before the write lock upgrade (SQLITE_BUSY_SNAPSHOT).
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_BUSY_SNAPSHOT:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "database is locked")
}

var _ storage.Store = (*Store)(nil)
var _ storage.Tx = (*conn)(nil)
