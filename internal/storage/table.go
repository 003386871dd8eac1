package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/starford/travelrec/internal/apperr"
)

// Record is the constraint for values kept in a Table. Records are plain
// values: returning one hands the caller an independent copy.
type Record[T any] interface {
	RecordID() int
	WithRecordID(id int) T
	Validate() error
}

type document[T any] struct {
	NextID  int `json:"next_id"`
	Records []T `json:"records"`
}

// Table is the in-memory mapping from identifier to record for one record
// type, mirrored to a single JSON file. Every mutation rewrites the whole
// file and is applied in memory only after the write succeeded.
//
// Table is not safe for concurrent use.
type Table[T Record[T]] struct {
	provider Provider
	file     string
	schema   *gojsonschema.Schema

	records  map[int]T
	nextID   int
	checksum string
}

// OpenTable loads file through p, creating an empty table file if none
// exists. schemaSrc, when non-empty, is a JSON schema the file must satisfy.
func OpenTable[T Record[T]](p Provider, file, schemaSrc string) (*Table[T], error) {
	schema, err := compileSchema(schemaSrc)
	if err != nil {
		return nil, err
	}
	t := &Table[T]{
		provider: p,
		file:     file,
		schema:   schema,
		records:  map[int]T{},
		nextID:   1,
	}

	exists, err := p.Exists(file)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := t.commit(map[int]T{}, 1); err != nil {
			return nil, err
		}
		return t, nil
	}

	data, err := p.Read(file)
	if err != nil {
		return nil, err
	}
	records, nextID, err := t.decode(data)
	if err != nil {
		return nil, err
	}
	t.records, t.nextID, t.checksum = records, nextID, Checksum(data)
	return t, nil
}

// File returns the table's path relative to the data directory.
func (t *Table[T]) File() string { return t.file }

// NextID returns the identifier the next auto-numbered insert will get.
func (t *Table[T]) NextID() int { return t.nextID }

// Len returns the number of records.
func (t *Table[T]) Len() int { return len(t.records) }

// Get returns a copy of the record with the given id.
func (t *Table[T]) Get(id int) (T, error) {
	rec, ok := t.records[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("id %d: %w", id, apperr.ErrNotFound)
	}
	return rec, nil
}

// Has reports whether id exists.
func (t *Table[T]) Has(id int) bool {
	_, ok := t.records[id]
	return ok
}

// All returns copies of every record sorted by id.
func (t *Table[T]) All() []T {
	return sortedRecords(t.records)
}

// Filter returns copies of the records for which keep returns true, sorted
// by id.
func (t *Table[T]) Filter(keep func(T) bool) []T {
	out := make([]T, 0)
	for _, rec := range t.All() {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Insert adds rec and returns it with its final id. An id of 0 means
// "allocate the next free id"; an explicit id that is already taken fails
// with apperr.ErrDuplicateID.
func (t *Table[T]) Insert(rec T) (T, error) {
	var zero T
	if err := rec.Validate(); err != nil {
		return zero, err
	}
	id := rec.RecordID()
	if id == 0 {
		id = t.nextID
		for id < math.MaxInt && t.Has(id) {
			id++
		}
	}
	// next_id must stay representable after this insert.
	if id == math.MaxInt {
		return zero, apperr.Invalid("id", "no identifiers left")
	}
	if t.Has(id) {
		return zero, fmt.Errorf("id %d: %w", id, apperr.ErrDuplicateID)
	}

	nextID := t.nextID
	if id >= nextID {
		nextID = id + 1
	}
	rec = rec.WithRecordID(id)
	records := t.cloneRecords()
	records[id] = rec
	if err := t.commit(records, nextID); err != nil {
		return zero, err
	}
	return rec, nil
}

// Replace overwrites the record with rec's id.
func (t *Table[T]) Replace(rec T) error {
	id := rec.RecordID()
	if !t.Has(id) {
		return fmt.Errorf("id %d: %w", id, apperr.ErrNotFound)
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	records := t.cloneRecords()
	records[id] = rec
	return t.commit(records, t.nextID)
}

// Remove deletes the record with the given id.
func (t *Table[T]) Remove(id int) error {
	if !t.Has(id) {
		return fmt.Errorf("id %d: %w", id, apperr.ErrNotFound)
	}
	records := t.cloneRecords()
	delete(records, id)
	return t.commit(records, t.nextID)
}

// Reload re-reads the file. It reports false without touching the table
// when the content matches what was last read or written. A file that fails
// to load leaves the table as it was.
func (t *Table[T]) Reload() (bool, error) {
	data, err := t.provider.Read(t.file)
	if err != nil {
		return false, err
	}
	sum := Checksum(data)
	if sum == t.checksum {
		return false, nil
	}
	records, nextID, err := t.decode(data)
	if err != nil {
		return false, err
	}
	t.records, t.nextID, t.checksum = records, nextID, sum
	return true, nil
}

func (t *Table[T]) cloneRecords() map[int]T {
	out := make(map[int]T, len(t.records)+1)
	for id, rec := range t.records {
		out[id] = rec
	}
	return out
}

func (t *Table[T]) commit(records map[int]T, nextID int) error {
	data, err := json.MarshalIndent(document[T]{NextID: nextID, Records: sortedRecords(records)}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", t.file, err)
	}
	data = append(data, '\n')
	if err := t.provider.Write(t.file, data); err != nil {
		return err
	}
	t.records, t.nextID, t.checksum = records, nextID, Checksum(data)
	return nil
}

// decode parses and checks a table document. Anything unexpected fails
// closed with apperr.ErrCorrupt.
func (t *Table[T]) decode(data []byte) (map[int]T, int, error) {
	records := map[int]T{}
	if len(bytes.TrimSpace(data)) == 0 {
		return records, 1, nil
	}

	problems, err := checkSchema(t.schema, data)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", apperr.ErrCorrupt, t.file, err)
	}
	if problems != "" {
		return nil, 0, fmt.Errorf("%w: %s: %s", apperr.ErrCorrupt, t.file, problems)
	}

	var doc document[T]
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", apperr.ErrCorrupt, t.file, err)
	}

	maxID := 0
	for _, rec := range doc.Records {
		id := rec.RecordID()
		if id <= 0 {
			return nil, 0, fmt.Errorf("%w: %s: non-positive id %d", apperr.ErrCorrupt, t.file, id)
		}
		if _, dup := records[id]; dup {
			return nil, 0, fmt.Errorf("%w: %s: duplicate id %d", apperr.ErrCorrupt, t.file, id)
		}
		if err := rec.Validate(); err != nil {
			return nil, 0, fmt.Errorf("%w: %s: record %d: %v", apperr.ErrCorrupt, t.file, id, err)
		}
		records[id] = rec
		maxID = max(maxID, id)
	}
	nextID := max(doc.NextID, 1)
	if maxID >= nextID {
		nextID = min(maxID, math.MaxInt-1) + 1
	}
	return records, nextID, nil
}

func sortedRecords[T Record[T]](records map[int]T) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordID() < out[j].RecordID() })
	return out
}
