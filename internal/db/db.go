package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

func appDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "reflectboard"), nil
}

// DefaultPath is the database location used when none is configured.
func DefaultPath() (string, error) {
	dir, err := appDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "reflectboard.db"), nil
}

// Open opens (and creates) the SQLite database at path and brings the
// schema up to date. An empty path means DefaultPath.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := EnsureConnectionsColumn(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := EnsureEncryptedColumn(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	b, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err := db.Exec(string(b)); err != nil {
		return errors.Join(fmt.Errorf("schema apply failed"), err)
	}
	return nil
}

// ------------------------------
// Idempotent upgraders
// ------------------------------

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(context.Background(), fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// EnsureConnectionsColumn adds the board connections column to databases
// created before links between notes were stored.
func EnsureConnectionsColumn(db *sql.DB) error {
	ok, err := hasColumn(db, "reflections", "connections")
	if err != nil {
		return fmt.Errorf("check connections column: %w", err)
	}
	if ok {
		return nil
	}
	if _, err := db.Exec(`ALTER TABLE reflections ADD COLUMN connections TEXT NOT NULL DEFAULT '[]'`); err != nil {
		return fmt.Errorf("add connections: %w", err)
	}
	return nil
}

// EnsureEncryptedColumn adds the per-row encryption flag.
func EnsureEncryptedColumn(db *sql.DB) error {
	ok, err := hasColumn(db, "reflections", "encrypted")
	if err != nil {
		return fmt.Errorf("check encrypted column: %w", err)
	}
	if ok {
		return nil
	}
	if _, err := db.Exec(`ALTER TABLE reflections ADD COLUMN encrypted BOOLEAN NOT NULL DEFAULT FALSE`); err != nil {
		return fmt.Errorf("add encrypted column: %w", err)
	}
	return nil
}
