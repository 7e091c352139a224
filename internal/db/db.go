// Package db stores the claude-accounts activity history in SQLite.
//
// The history is a convenience: every caller treats it as optional, and a
// database SQLite cannot read is moved aside and replaced instead of being
// reported as an error.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// busyTimeout lets `watch` and a concurrent `switch` share the file.
const busyTimeout = 5 * time.Second

// Retention bounds how much history is kept. A zero field disables that
// bound. Account stats are aggregates and are never pruned.
type Retention struct {
	MaxAge    time.Duration
	MaxEvents int
}

// DB is an open history database.
type DB struct {
	path string
	conn *sql.DB
	keep Retention
}

// Open opens the history at path, creating it and its directory when
// needed, and prunes events outside keep.
func Open(path string, keep Retention) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is required")
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	conn, err := connect(path)
	if err != nil && unreadable(err) {
		if qerr := quarantine(path); qerr != nil {
			return nil, fmt.Errorf("history %s is unreadable (%v): %w", path, err, qerr)
		}
		conn, err = connect(path)
	}
	if err != nil {
		return nil, err
	}

	d := &DB{path: path, conn: conn, keep: keep}
	if _, err := d.Prune(time.Now()); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database. It is safe on a nil DB.
func (d *DB) Close() error {
	if d == nil || d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

// Path returns the database file.
func (d *DB) Path() string {
	if d == nil {
		return ""
	}
	return d.path
}

// Prune deletes events older than the retention age relative to now, then
// the oldest events beyond the retention count. It returns how many events
// were removed.
func (d *DB) Prune(now time.Time) (int64, error) {
	if d == nil || d.conn == nil {
		return 0, errors.New("db is not open")
	}

	var removed int64
	if d.keep.MaxAge > 0 {
		res, err := d.conn.Exec(
			`DELETE FROM activity_log WHERE datetime(timestamp) < datetime(?)`,
			formatSQLiteTime(now.Add(-d.keep.MaxAge)),
		)
		if err != nil {
			return removed, fmt.Errorf("prune by age: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}

	if d.keep.MaxEvents > 0 {
		res, err := d.conn.Exec(
			`DELETE FROM activity_log WHERE id NOT IN (
			   SELECT id FROM activity_log ORDER BY timestamp DESC, id DESC LIMIT ?
			 )`,
			d.keep.MaxEvents,
		)
		if err != nil {
			return removed, fmt.Errorf("prune by count: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}

	return removed, nil
}

// connect opens a single shared connection (pragmas are per connection) and
// brings the schema up to date.
func connect(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		filepath.ToSlash(path), busyTimeout.Milliseconds())
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open history: %w", err)
	}
	if err := RunMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// unreadable reports whether err means the file is not a usable database.
func unreadable(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() & 0xff {
		case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not a database") || strings.Contains(msg, "malformed")
}

// quarantine moves an unreadable history to <path>.corrupt.<utc time>.
func quarantine(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	dst := path + ".corrupt." + time.Now().UTC().Format("20060102T150405Z")
	if err := os.Rename(path, dst); err != nil {
		return fmt.Errorf("move aside: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	return nil
}
