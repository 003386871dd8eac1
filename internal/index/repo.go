package index

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/travelrec/internal/storage"
)

// Document is the searchable text of one record.
type Document struct {
	Kind  string
	ID    int
	Title string
	Body  string
}

// Checksum identifies the document content; Sync skips unchanged rows.
func (d Document) Checksum() string {
	return storage.Checksum([]byte(d.Title + "\x00" + d.Body))
}

// folded is the lower-cased id, title and body that substring search
// matches against. Go folds Unicode case; SQLite's LIKE and lower() only
// fold ASCII.
func (d Document) folded() string {
	return strings.ToLower(strconv.Itoa(d.ID) + "\n" + d.Title + "\n" + d.Body)
}

// Hit is one search result.
type Hit struct {
	Kind    string
	ID      int
	Title   string
	Snippet string
}

// Upsert inserts or replaces a document and its FTS entry in one transaction.
func (db *DB) Upsert(doc Document) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO records (kind, id, title, body, folded, checksum)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			title    = excluded.title,
			body     = excluded.body,
			folded   = excluded.folded,
			checksum = excluded.checksum
	`, doc.Kind, doc.ID, doc.Title, doc.Body, doc.folded(), doc.Checksum())
	if err != nil {
		return fmt.Errorf("index: upsert record: %w", err)
	}

	if err := ftsUpsert(tx, doc); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a document and its FTS entry.
func (db *DB) Delete(kind string, id int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, kind, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM records WHERE kind = ? AND id = ?`, kind, id); err != nil {
		return fmt.Errorf("index: delete record: %w", err)
	}
	return tx.Commit()
}

// Checksums returns the stored checksum of every indexed document of kind.
func (db *DB) Checksums(kind string) (map[int]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM records WHERE kind = ?`, kind)
	if err != nil {
		return nil, fmt.Errorf("index: checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[int]string)
	for rows.Next() {
		var id int
		var cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// searchRecords returns documents of kind whose id, title or body contains
// query regardless of case, plus any rows selected by also, ordered by id.
// limit <= 0 means no limit.
func (db *DB) searchRecords(kind, query, also string, alsoArgs []any, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = -1
	}
	args := append([]any{kind, strings.ToLower(query)}, alsoArgs...)
	args = append(args, limit)
	rows, err := db.conn.Query(`
		SELECT kind, id, title, substr(body, 1, 200)
		FROM records
		WHERE kind = ?
		  AND (instr(folded, ?) > 0 `+also+`)
		ORDER BY id
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := make([]Hit, 0)
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Kind, &h.ID, &h.Title, &h.Snippet); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
