//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			kind UNINDEXED,
			id UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, doc Document) error {
	if err := ftsDelete(tx, doc.Kind, doc.ID); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO records_fts (kind, id, title, body) VALUES (?, ?, ?, ?)`,
		doc.Kind, doc.ID, doc.Title, doc.Body)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, kind string, id int) error {
	if _, err := tx.Exec(`DELETE FROM records_fts WHERE kind = ? AND id = ?`, kind, id); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// Search returns documents of kind that contain query as a substring of
// their id, title or body, or whose words start with every query term after
// diacritics are removed. Results are ordered by id; limit <= 0 means no
// limit.
func (db *DB) Search(kind, query string, limit int) ([]Hit, error) {
	var terms []string
	for _, term := range strings.Fields(query) {
		if !strings.ContainsFunc(term, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(term, `"`, `""`)+`"*`)
	}
	if len(terms) == 0 {
		return db.searchRecords(kind, query, "", nil, limit)
	}
	return db.searchRecords(kind, query,
		`OR id IN (SELECT CAST(id AS INTEGER) FROM records_fts WHERE kind = ? AND records_fts MATCH ?)`,
		[]any{kind, strings.Join(terms, " ")}, limit)
}
