package index

import (
	"log/slog"
)

// SyncStats counts the rows a Sync touched.
type SyncStats struct {
	Indexed int
	Removed int
}

// Sync brings the documents of one kind up to date:
//   - new or changed documents are upserted
//   - indexed documents missing from docs are removed
func Sync(idx RecordIndex, kind string, docs []Document, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats
	checksums, err := idx.Checksums(kind)
	if err != nil {
		return stats, err
	}

	live := make(map[int]struct{}, len(docs))
	for _, d := range docs {
		live[d.ID] = struct{}{}
		if checksums[d.ID] == d.Checksum() {
			continue
		}
		if err := idx.Upsert(d); err != nil {
			return stats, err
		}
		stats.Indexed++
	}

	for id := range checksums {
		if _, ok := live[id]; ok {
			continue
		}
		if err := idx.Delete(kind, id); err != nil {
			logger.Warn("sync: delete failed", slog.String("kind", kind), slog.Int("id", id), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
	}

	if stats.Indexed > 0 || stats.Removed > 0 {
		logger.Debug("sync: done", slog.String("kind", kind),
			slog.Int("indexed", stats.Indexed), slog.Int("removed", stats.Removed))
	}
	return stats, nil
}
