// Package recordservice coordinates the client, airline and flight tables:
// validation, referential integrity between them, search and the derived
// index.
package recordservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/travelrec/internal/index"
	"github.com/starford/travelrec/internal/models"
	"github.com/starford/travelrec/internal/storage"
)

// Files names the table file of each record type, relative to the data dir.
type Files struct {
	Clients  string
	Airlines string
	Flights  string
}

// DefaultFiles are the table file names used when none are configured.
var DefaultFiles = Files{
	Clients:  "clients.json",
	Airlines: "airlines.json",
	Flights:  "flights.json",
}

// Service owns the three record tables. All methods are safe for concurrent
// use; each call runs to completion, file write included, before the next.
type Service struct {
	mu       sync.Mutex
	clients  *storage.Table[models.Client]
	airlines *storage.Table[models.Airline]
	flights  *storage.Table[models.Flight]
	idx      index.RecordIndex
	logger   *slog.Logger
}

// Open loads the three tables from p. idx may be nil, in which case search
// scans records in memory. Any table that fails to load aborts Open; no file
// is rewritten in that case.
func Open(p storage.Provider, files Files, idx index.RecordIndex, logger *slog.Logger) (*Service, error) {
	clients, err := storage.OpenTable[models.Client](p, files.Clients, storage.ClientSchema)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	airlines, err := storage.OpenTable[models.Airline](p, files.Airlines, storage.AirlineSchema)
	if err != nil {
		return nil, fmt.Errorf("load airlines: %w", err)
	}
	flights, err := storage.OpenTable[models.Flight](p, files.Flights, storage.FlightSchema)
	if err != nil {
		return nil, fmt.Errorf("load flights: %w", err)
	}

	s := &Service{
		clients:  clients,
		airlines: airlines,
		flights:  flights,
		idx:      idx,
		logger:   logger,
	}
	s.warnDangling()

	logger.Info("records loaded",
		slog.Int("clients", clients.Len()),
		slog.Int("airlines", airlines.Len()),
		slog.Int("flights", flights.Len()))

	if err := s.reindexLocked(models.Kinds...); err != nil {
		logger.Warn("initial index sync failed", slog.String("error", err.Error()))
	}
	return s, nil
}

// Counts returns the number of records of each type.
func (s *Service) Counts(_ context.Context) map[models.Kind]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[models.Kind]int{
		models.KindClient:  s.clients.Len(),
		models.KindAirline: s.airlines.Len(),
		models.KindFlight:  s.flights.Len(),
	}
}

// Reload re-reads the table stored in file after an outside change. It
// reports the record type and whether anything changed; unknown files are
// ignored. A file that no longer loads leaves the in-memory table intact.
func (s *Service) Reload(_ context.Context, file string) (models.Kind, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		kind    models.Kind
		changed bool
		err     error
	)
	switch file {
	case s.clients.File():
		kind = models.KindClient
		changed, err = s.clients.Reload()
	case s.airlines.File():
		kind = models.KindAirline
		changed, err = s.airlines.Reload()
	case s.flights.File():
		kind = models.KindFlight
		changed, err = s.flights.Reload()
	default:
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("reload failed", slog.String("file", file), slog.String("error", err.Error()))
		return kind, false, fmt.Errorf("reload %s: %w", file, err)
	}
	if !changed {
		return kind, false, nil
	}

	s.logger.Info("table reloaded", slog.String("kind", kind.String()), slog.String("file", file))
	s.warnDangling()
	s.reindex(affectedKinds(kind)...)
	return kind, true, nil
}

// ReloadAll re-reads every table and reports whether any of them changed.
// It stops at the first table that fails to load.
func (s *Service) ReloadAll(ctx context.Context) (bool, error) {
	s.mu.Lock()
	files := []string{s.clients.File(), s.airlines.File(), s.flights.File()}
	s.mu.Unlock()

	var changed bool
	for _, file := range files {
		_, c, err := s.Reload(ctx, file)
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}
	return changed, nil
}

// Reindex rebuilds the search index from the tables.
func (s *Service) Reindex(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reindexLocked(models.Kinds...)
}

// warnDangling logs flights whose client or airline no longer exists, which
// can only happen through edits made outside the application.
func (s *Service) warnDangling() {
	for _, f := range s.flights.All() {
		if !s.clients.Has(f.ClientID) || !s.airlines.Has(f.AirlineID) {
			s.logger.Warn("flight has dangling reference",
				slog.Int("flight_id", f.ID),
				slog.Int("client_id", f.ClientID),
				slog.Int("airline_id", f.AirlineID))
		}
	}
}

// affectedKinds lists the kinds whose search text depends on kind: flight
// documents embed client and airline names.
func affectedKinds(kind models.Kind) []models.Kind {
	if kind == models.KindFlight {
		return []models.Kind{models.KindFlight}
	}
	return []models.Kind{kind, models.KindFlight}
}
