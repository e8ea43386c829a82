// Package cache implements the durable key-value cache backing offline
// operation. Every collection snapshot, the user profile, and the recent
// location list live here as opaque JSON blobs keyed by well-known names.
// Values are replaced wholesale; there are no partial updates.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

// walJournalSizeLimit caps the WAL file at 64 MiB.
const walJournalSizeLimit = 67108864

// Entry is one key-value pair for batch writes.
type Entry struct {
	Key   string
	Value []byte
}

// EntryInfo describes a stored entry without its payload.
type EntryInfo struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}

// Store is a SQLite-backed key-value store. Reads of missing keys return
// (nil, nil) rather than an error: an empty cache is a normal state, not a
// failure.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	stmts kvStatements
}

type kvStatements struct {
	get, set, delete, info, list *sql.Stmt
}

// NewStore opens (creating if needed) the cache database at dbPath, applies
// migrations, and prepares the statements. Use ":memory:" for tests.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	logger.Debug("opening cache database", "path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: open sqlite: %w", err)
	}

	if err := setPragmas(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, logger: logger}

	if err := s.prepareStatements(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: prepare statements: %w", err)
	}

	return s, nil
}

// setPragmas configures SQLite for concurrent CLI invocations. synchronous
// NORMAL is enough here: the cache is rebuildable from the backend, so a
// torn write costs a refresh, not data.
func setPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []struct {
		sql  string
		desc string
	}{
		{"PRAGMA journal_mode = WAL", "WAL mode"},
		{"PRAGMA synchronous = NORMAL", "synchronous NORMAL"},
		{"PRAGMA busy_timeout = 5000", "busy timeout"},
		{fmt.Sprintf("PRAGMA journal_size_limit = %d", walJournalSizeLimit), "journal size limit"},
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.sql); err != nil {
			return fmt.Errorf("cache: set pragma %s: %w", p.desc, err)
		}
	}

	return nil
}

const (
	sqlGetEntry = `SELECT value FROM kv_entries WHERE key = ?`

	sqlSetEntry = `INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at`

	sqlDeleteEntry = `DELETE FROM kv_entries WHERE key = ?`

	sqlEntryInfo = `SELECT key, LENGTH(value), updated_at
		FROM kv_entries WHERE key = ?`

	sqlListEntries = `SELECT key, LENGTH(value), updated_at
		FROM kv_entries ORDER BY key`
)

// stmtDef maps a SQL string to the prepared statement pointer it populates.
type stmtDef struct {
	dest **sql.Stmt
	sql  string
	name string
}

func (s *Store) prepareStatements(ctx context.Context) error {
	defs := []stmtDef{
		{&s.stmts.get, sqlGetEntry, "get entry"},
		{&s.stmts.set, sqlSetEntry, "set entry"},
		{&s.stmts.delete, sqlDeleteEntry, "delete entry"},
		{&s.stmts.info, sqlEntryInfo, "entry info"},
		{&s.stmts.list, sqlListEntries, "list entries"},
	}

	for i := range defs {
		stmt, err := s.db.PrepareContext(ctx, defs[i].sql)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", defs[i].name, err)
		}

		*defs[i].dest = stmt
	}

	return nil
}

// Get returns the value stored under key, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.stmts.get.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // miss is a normal state, not an error
	}

	if err != nil {
		return nil, fmt.Errorf("cache: get %q: %w", key, err)
	}

	return value, nil
}

// Set stores value under key, replacing any previous value wholesale.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.stmts.set.ExecContext(ctx, key, value, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("cache: set %q: %w", key, err)
	}

	return nil
}

// SetMany stores several entries in one transaction, so a crash mid-write
// never leaves a half-updated batch.
func (s *Store) SetMany(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cache: begin batch tx: %w", err)
	}

	now := time.Now().UnixNano()
	stmt := tx.StmtContext(ctx, s.stmts.set)

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Key, e.Value, now); err != nil {
			rollbackErr := tx.Rollback()
			return fmt.Errorf("cache: batch set %q: %w (rollback: %v)", e.Key, err, rollbackErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cache: commit batch: %w", err)
	}

	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.stmts.delete.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("cache: delete %q: %w", key, err)
	}

	return nil
}

// Info returns metadata for one entry, or (nil, nil) when absent.
func (s *Store) Info(ctx context.Context, key string) (*EntryInfo, error) {
	info, err := scanEntryInfo(s.stmts.info.QueryRowContext(ctx, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // miss is a normal state, not an error
	}

	if err != nil {
		return nil, fmt.Errorf("cache: info %q: %w", key, err)
	}

	return info, nil
}

// List returns metadata for every stored entry, ordered by key.
func (s *Store) List(ctx context.Context) ([]EntryInfo, error) {
	rows, err := s.stmts.list.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache: list entries: %w", err)
	}
	defer rows.Close()

	var infos []EntryInfo

	for rows.Next() {
		info, err := scanEntryInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("cache: scan entry: %w", err)
		}

		infos = append(infos, *info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache: iterate entries: %w", err)
	}

	return infos, nil
}

// scanEntryInfo scans one metadata row from either a Row or Rows.
func scanEntryInfo(row interface{ Scan(...any) error }) (*EntryInfo, error) {
	var (
		info      EntryInfo
		updatedAt int64
	)

	if err := row.Scan(&info.Key, &info.Size, &updatedAt); err != nil {
		return nil, err
	}

	info.UpdatedAt = time.Unix(0, updatedAt)

	return &info, nil
}

// Close finalizes statements and closes the database.
func (s *Store) Close() error {
	var errs []error

	for _, stmt := range []*sql.Stmt{s.stmts.get, s.stmts.set, s.stmts.delete, s.stmts.info, s.stmts.list} {
		if stmt == nil {
			continue
		}

		if err := stmt.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("cache: close: %w", errors.Join(errs...))
	}

	return nil
}
