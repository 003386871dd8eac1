// Package index provides a SQLite search index over records, with optional
// FTS5 full-text search. The JSON tables stay the source of truth; the index
// can be deleted and rebuilt at any time.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	kind     TEXT    NOT NULL,
	id       INTEGER NOT NULL,
	title    TEXT    NOT NULL DEFAULT '',
	body     TEXT    NOT NULL DEFAULT '',
	folded   TEXT    NOT NULL DEFAULT '',
	checksum TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (kind, id)
);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := migrateFolded(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: migrate: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrateFolded adds the folded column to indexes created without it and
// clears their checksums so the next sync rewrites every row.
func migrateFolded(conn *sql.DB) error {
	rows, err := conn.Query(`PRAGMA table_info(records)`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return err
		}
		if name == "folded" {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	if _, err := conn.Exec(`ALTER TABLE records ADD COLUMN folded TEXT NOT NULL DEFAULT ''`); err != nil {
		return err
	}
	_, err = conn.Exec(`UPDATE records SET checksum = ''`)
	return err
}
