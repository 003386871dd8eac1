//go:build !sqlite_fts5

package index

import "database/sql"

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search scans the records table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ Document) error { return nil }

func ftsDelete(_ *sql.Tx, _ string, _ int) error { return nil }

// Search returns documents of kind whose id, title or body contains query,
// case-insensitively, ordered by id. limit <= 0 means no limit.
func (db *DB) Search(kind, query string, limit int) ([]Hit, error) {
	return db.searchRecords(kind, query, "", nil, limit)
}
