// Package sqlite provides the SQLite-backed store for memories, facts, and
// per-mode vector namespaces.
//
// A single database file holds everything, so compound writes — a memory
// plus its facts plus their vectors, or a full-text update replacing facts
// wholesale — commit as one SQLite transaction. Cascading deletes ride on
// foreign keys: facts reference their memory and every vector table
// references facts, all with ON DELETE CASCADE.
//
// The driver assumes a single logical writer. Transient lock contention is
// retried a bounded number of times with exponential backoff before
// surfacing as an error.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

const (
	// busyMaxRetries bounds retry attempts on SQLITE_BUSY / SQLITE_LOCKED.
	busyMaxRetries = 5

	// idAttempts bounds regeneration of a short memory id on collision.
	idAttempts = 5

	defaultListLimit = 20
)

// Driver implements storage.Store and vector.Store on one SQLite database.
type Driver struct {
	db     *sql.DB
	logger *zap.Logger
}

// Config holds configuration for the SQLite driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string
}

// NewDriver opens (or creates) the database at the given path and applies
// the schema, including one vector table per registered embedding mode.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := c.DBPath + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// In-memory databases vanish per connection; keep exactly one.
	db.SetMaxOpenConns(1)

	d := &Driver{db: db, logger: logger}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	logger.Info("sqlite driver initialized",
		zap.String("db_path", c.DBPath),
		zap.Int("vector_namespaces", len(vector.Modes)),
	)

	return d, nil
}

func (d *Driver) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id         TEXT PRIMARY KEY,
		context    TEXT NOT NULL,
		text       TEXT NOT NULL,
		tags       TEXT NOT NULL DEFAULT '[]',
		version    INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_context ON memories(context);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);

	CREATE TABLE IF NOT EXISTS facts (
		id         TEXT PRIMARY KEY,
		memory_id  TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
		text       TEXT NOT NULL,
		version    INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_facts_memory ON facts(memory_id);

	CREATE TABLE IF NOT EXISTS tool_notes (
		id         TEXT PRIMARY KEY,
		context    TEXT NOT NULL,
		tool       TEXT NOT NULL,
		note       TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tool_notes_context ON tool_notes(context, tool);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return err
	}

	// One namespace table per registered mode. Table names come from the
	// closed Mode enumeration, never from caller input.
	for _, m := range vector.Modes {
		ns := m.Namespace()
		create := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			fact_id    TEXT PRIMARY KEY REFERENCES facts(id) ON DELETE CASCADE,
			dims       INTEGER NOT NULL,
			normalized INTEGER NOT NULL DEFAULT 1,
			embedding  BLOB NOT NULL
		)`, ns.Table)
		if _, err := d.db.Exec(create); err != nil {
			return fmt.Errorf("creating namespace %s: %w", ns.Table, err)
		}
	}

	return nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}

// isBusy reports whether err is transient lock contention worth retrying.
func isBusy(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}

// isUniqueConflict reports whether err is a primary-key or unique
// constraint violation.
func isUniqueConflict(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// withTx runs fn inside a transaction, retrying the whole unit on transient
// lock contention. A commit failure means the compound write could not be
// applied atomically and surfaces as a ConsistencyError.
func (d *Driver) withTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	attempt := func() error {
		tx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			if isBusy(err) {
				return err
			}
			return backoff.Permanent(fmt.Errorf("%s: beginning transaction: %w", op, err))
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			if isBusy(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		if err := tx.Commit(); err != nil {
			if isBusy(err) {
				return err
			}
			return backoff.Permanent(memory.ConsistencyError{Op: op, Err: err})
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), busyMaxRetries),
		ctx,
	)
	return backoff.Retry(attempt, bo)
}

// idAlphabet is lowercase base32: compact, unambiguous, shell-friendly.
const idAlphabet = "abcdefghijklmnopqrstuvwxyz234567"

// newShortID returns an 8-character random token. Collisions are handled by
// the caller via bounded retry-on-conflict at insert time.
func newShortID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(out), nil
}
