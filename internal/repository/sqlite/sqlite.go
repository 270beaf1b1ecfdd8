// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. A to-do app
// with a handful of users never needs more than that.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB      — a connection pool (NOT a single connection!)
//   - sql.Tx      — a transaction, pinned to one connection until Commit/Rollback
//   - sql.Row     — a single result row
//   - sql.Rows    — multiple result rows (must be closed!)
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements every repository interface
// (UserRepository, ListRepository, TaskRepository).
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/todo.db"  → file-based database (persistent)
//   - ":memory:"      → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	// "sqlite" is the driver name registered by modernc.org/sqlite's init().
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// IN-MEMORY DATABASES ARE PER-CONNECTION:
	// Every new connection to ":memory:" gets its own empty database. Pinning the
	// pool to a single connection makes the whole pool share one database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// dsn appends the connection pragmas to dbPath.
//
// PRAGMAS ARE PER-CONNECTION:
// sql.DB opens connections lazily, so a PRAGMA run once through conn.Exec only
// reaches whichever connection happened to serve it. modernc.org/sqlite runs
// every _pragma query parameter on each connection it opens instead.
//   - journal_mode(WAL) allows concurrent reads WHILE a write is happening
//   - foreign_keys(1) turns on REFERENCES checks, which SQLite leaves OFF by default
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the three tables. CREATE TABLE IF NOT EXISTS makes it safe
// to run on every start.
//
// The table and column names (users.password, lists.list, tasks.task, tasks.img)
// match the legacy schema. A legacy tasks.db already has the tables, so
// CREATE TABLE skips them; addCreatedAt then backfills the one column they
// lack. Legacy tasks may also hold NULL description/img (see scanTask).
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			email      VARCHAR(100) NOT NULL UNIQUE,
			password   VARCHAR(100) NOT NULL,
			name       VARCHAR(100) NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// total_tasks is nullable on purpose: NULL means "never counted".
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS lists (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			author_id   INTEGER NOT NULL REFERENCES users(id),
			list        VARCHAR(50) NOT NULL,
			total_tasks INTEGER,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_lists_author_id ON lists(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating lists table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			list_id     INTEGER NOT NULL REFERENCES lists(id),
			list        VARCHAR(50) NOT NULL,
			task        VARCHAR(100) NOT NULL,
			description VARCHAR(150) NOT NULL DEFAULT '',
			img         VARCHAR(300) NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_list_id ON tasks(list_id);
	`)
	if err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}

	for _, table := range []string{"users", "lists", "tasks"} {
		if err := db.addCreatedAt(table); err != nil {
			return err
		}
	}

	return nil
}

// legacyCreatedAt is written into rows that predate the created_at column.
// ALTER TABLE ... ADD COLUMN only accepts a constant default, so
// CURRENT_TIMESTAMP is not an option here.
const legacyCreatedAt = "1970-01-01 00:00:00"

// addCreatedAt adds a created_at column to table when it is missing.
func (db *DB) addCreatedAt(table string) error {
	has, err := db.hasColumn(table, "created_at")
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	// table comes from migrate's fixed list, never from user input.
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN created_at DATETIME NOT NULL DEFAULT '%s'`,
		table, legacyCreatedAt,
	))
	if err != nil {
		return fmt.Errorf("adding %s.created_at: %w", table, err)
	}
	return nil
}

// hasColumn reports whether table has a column called column.
//
// PRAGMA table_info returns one row per column:
// cid, name, type, notnull, dflt_value, pk.
func (db *DB) hasColumn(table, column string) (bool, error) {
	rows, err := db.conn.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("reading %s columns: %w", table, err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("scanning %s columns: %w", table, err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterating %s columns: %w", table, err)
	}
	return found, nil
}

// withTx runs fn inside a transaction, committing if fn returns nil and
// rolling back otherwise.
//
// Inside fn, ONLY use tx — never db.conn. With ":memory:" the pool has a single
// connection, which the transaction is already holding.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		// Rollback error is secondary — the caller needs fn's error.
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
