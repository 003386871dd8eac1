package recordservice

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/starford/travelrec/internal/index"
	"github.com/starford/travelrec/internal/models"
)

// SearchClients returns clients whose id or name contains query,
// case-insensitively. An empty query returns every client.
func (s *Service) SearchClients(_ context.Context, query string) ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.searchIDs(models.KindClient, query)
	if err != nil {
		return nil, err
	}
	return pick(ids, s.clients.Get), nil
}

// SearchAirlines returns airlines whose id or company name contains query.
func (s *Service) SearchAirlines(_ context.Context, query string) ([]models.Airline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.searchIDs(models.KindAirline, query)
	if err != nil {
		return nil, err
	}
	return pick(ids, s.airlines.Get), nil
}

// SearchFlights returns flights whose id, client name, airline name, start
// city or end city contains query.
func (s *Service) SearchFlights(_ context.Context, query string) ([]models.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.searchIDs(models.KindFlight, query)
	if err != nil {
		return nil, err
	}
	return pick(ids, s.flights.Get), nil
}

// ClientName and AirlineName resolve display names for flight listings. They
// return "" for ids that do not resolve.
func (s *Service) ClientName(_ context.Context, id int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientName(id)
}

func (s *Service) AirlineName(_ context.Context, id int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.airlineName(id)
}

func (s *Service) clientName(id int) string {
	c, err := s.clients.Get(id)
	if err != nil {
		return ""
	}
	return c.Name
}

func (s *Service) airlineName(id int) string {
	a, err := s.airlines.Get(id)
	if err != nil {
		return ""
	}
	return a.CompanyName
}

// searchIDs returns matching ids in ascending order, from the index when
// one is configured.
func (s *Service) searchIDs(kind models.Kind, query string) ([]int, error) {
	query = strings.TrimSpace(query)
	docs := s.documents(kind)
	if query == "" {
		return docIDs(docs), nil
	}
	if s.idx != nil {
		hits, err := s.idx.Search(kind.String(), query, 0)
		if err == nil {
			ids := make([]int, len(hits))
			for i, h := range hits {
				ids[i] = h.ID
			}
			return ids, nil
		}
		s.logger.Warn("index search failed, scanning records",
			slog.String("kind", kind.String()), slog.String("error", err.Error()))
	}

	q := strings.ToLower(query)
	var ids []int
	for _, d := range docs {
		if strings.Contains(strconv.Itoa(d.ID), q) ||
			strings.Contains(strings.ToLower(d.Title), q) ||
			strings.Contains(strings.ToLower(d.Body), q) {
			ids = append(ids, d.ID)
		}
	}
	return ids, nil
}

// documents renders the searchable text of every record of kind. Clients
// and airlines are found by name; flights by route and by the names of the
// client and airline they reference.
func (s *Service) documents(kind models.Kind) []index.Document {
	var docs []index.Document
	switch kind {
	case models.KindClient:
		for _, c := range s.clients.All() {
			docs = append(docs, index.Document{Kind: kind.String(), ID: c.ID, Title: c.Name})
		}
	case models.KindAirline:
		for _, a := range s.airlines.All() {
			docs = append(docs, index.Document{Kind: kind.String(), ID: a.ID, Title: a.CompanyName})
		}
	case models.KindFlight:
		for _, f := range s.flights.All() {
			docs = append(docs, index.Document{
				Kind:  kind.String(),
				ID:    f.ID,
				Title: f.Origin + " → " + f.Destination,
				Body:  strings.Join([]string{s.clientName(f.ClientID), s.airlineName(f.AirlineID)}, "\n"),
			})
		}
	}
	return docs
}

// reindex syncs kinds into the index, logging failures: the index is
// derived data and never blocks a mutation that already reached disk.
func (s *Service) reindex(kinds ...models.Kind) {
	if err := s.reindexLocked(kinds...); err != nil {
		s.logger.Warn("index sync failed", slog.String("error", err.Error()))
	}
}

func (s *Service) reindexLocked(kinds ...models.Kind) error {
	if s.idx == nil {
		return nil
	}
	for _, k := range kinds {
		if _, err := index.Sync(s.idx, k.String(), s.documents(k), s.logger); err != nil {
			return err
		}
	}
	return nil
}

func docIDs(docs []index.Document) []int {
	ids := make([]int, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}

// pick fetches the records for ids, skipping any the index returned that
// are no longer in the table.
func pick[T any](ids []int, get func(int) (T, error)) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		rec, err := get(id)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}
