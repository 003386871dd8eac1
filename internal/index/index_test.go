package index

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "travelrec-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM records`).Scan(&count); err != nil {
		t.Fatalf("records table missing: %v", err)
	}
}

func TestUpsertAndChecksums(t *testing.T) {
	db := testDB(t)
	doc := Document{Kind: "client", ID: 1, Title: "John Doe", Body: "London UK"}
	if err := db.Upsert(doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	cs, err := db.Checksums("client")
	if err != nil {
		t.Fatalf("Checksums: %v", err)
	}
	if cs[1] != doc.Checksum() {
		t.Errorf("checksum = %q, want %q", cs[1], doc.Checksum())
	}
	if other, _ := db.Checksums("airline"); len(other) != 0 {
		t.Errorf("airline checksums = %v, want none", other)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(Document{Kind: "client", ID: 1, Title: "A"})
	_ = db.Upsert(Document{Kind: "airline", ID: 1, Title: "A"})
	if err := db.Delete("client", 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if cs, _ := db.Checksums("client"); len(cs) != 0 {
		t.Errorf("client still indexed: %v", cs)
	}
	if cs, _ := db.Checksums("airline"); len(cs) != 1 {
		t.Errorf("airline removed by client delete: %v", cs)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	logger := quietLogger()
	docs := []Document{
		{Kind: "flight", ID: 1, Title: "London → Paris", Body: "John Doe Air Test"},
		{Kind: "flight", ID: 2, Title: "Paris → Rome", Body: "Jane Doe Air Test"},
	}
	stats, err := Sync(db, "flight", docs, logger)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Indexed != 2 || stats.Removed != 0 {
		t.Errorf("first sync = %+v", stats)
	}

	stats, _ = Sync(db, "flight", docs, logger)
	if stats.Indexed != 0 || stats.Removed != 0 {
		t.Errorf("unchanged sync = %+v, want no work", stats)
	}

	docs[1].Body = "Jane Smith Air Test"
	stats, _ = Sync(db, "flight", docs[1:], logger)
	if stats.Indexed != 1 || stats.Removed != 1 {
		t.Errorf("changed sync = %+v, want 1 indexed, 1 removed", stats)
	}
	cs, _ := db.Checksums("flight")
	if _, ok := cs[1]; ok || len(cs) != 1 {
		t.Errorf("checksums after sync = %v", cs)
	}
}

func TestSearchSubstring(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(Document{Kind: "client", ID: 1, Title: "John Doe"})
	_ = db.Upsert(Document{Kind: "client", ID: 12, Title: "Ørsted"})
	_ = db.Upsert(Document{Kind: "flight", ID: 3, Title: "London → Paris", Body: "John Doe\nAir Test"})

	tests := []struct {
		kind, query string
		want        []int
	}{
		{"client", "oe", []int{1}},
		{"client", "2", []int{12}},
		{"client", "1", []int{1, 12}},
		{"client", "ØRSTED", []int{12}},
		{"client", "rst", []int{12}},
		{"client", "%", nil},
		{"flight", "ari", []int{3}},
		{"flight", "3", []int{3}},
		{"flight", "r test", []int{3}},
	}
	for _, tt := range tests {
		hits, err := db.Search(tt.kind, tt.query, 0)
		if err != nil {
			t.Fatalf("Search(%q): %v", tt.query, err)
		}
		var got []int
		for _, h := range hits {
			got = append(got, h.ID)
		}
		if len(got) != len(tt.want) {
			t.Errorf("Search(%s, %q) = %v, want %v", tt.kind, tt.query, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Search(%s, %q) = %v, want %v", tt.kind, tt.query, got, tt.want)
				break
			}
		}
	}
}

func TestOpenMigratesIndexWithoutFoldedColumn(t *testing.T) {
	f, err := os.CreateTemp("", "travelrec-old-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	old, err := sql.Open("sqlite3", f.Name())
	if err != nil {
		t.Fatal(err)
	}
	_, err = old.Exec(`
		CREATE TABLE records (
			kind TEXT NOT NULL, id INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '', body TEXT NOT NULL DEFAULT '',
			checksum TEXT NOT NULL DEFAULT '', PRIMARY KEY (kind, id));
		INSERT INTO records (kind, id, title, checksum) VALUES ('client', 1, 'John Doe', 'abc');
	`)
	old.Close()
	if err != nil {
		t.Fatal(err)
	}

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	sums, err := db.Checksums("client")
	if err != nil {
		t.Fatal(err)
	}
	if sums[1] != "" {
		t.Errorf("checksum = %q, want cleared", sums[1])
	}

	stats, err := Sync(db, "client", []Document{{Kind: "client", ID: 1, Title: "John Doe"}}, quietLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Indexed != 1 {
		t.Errorf("sync after migration = %+v, want the row rewritten", stats)
	}
	if hits, _ := db.Search("client", "doe", 0); len(hits) != 1 {
		t.Errorf("search after migration = %+v", hits)
	}
}
