package index

// RecordIndex is what the record service needs from an index. Depend on it
// rather than *DB so tests can run without SQLite.
type RecordIndex interface {
	Upsert(doc Document) error
	Delete(kind string, id int) error
	Checksums(kind string) (map[int]string, error)
	Search(kind, query string, limit int) ([]Hit, error)
	Close() error
}

// Verify *DB satisfies RecordIndex at compile time.
var _ RecordIndex = (*DB)(nil)
