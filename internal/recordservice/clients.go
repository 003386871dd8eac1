package recordservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/travelrec/internal/apperr"
	"github.com/starford/travelrec/internal/models"
)

// AddClient validates and stores a new client. An ID of 0 is assigned the
// next free identifier.
func (s *Service) AddClient(_ context.Context, c models.Client) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.clients.Insert(c)
	if err != nil {
		return models.Client{}, fmt.Errorf("client: %w", err)
	}
	s.logger.Info("record added", slog.String("kind", "client"), slog.Int("id", stored.ID))
	s.reindex(models.KindClient)
	return stored, nil
}

// UpdateClient applies patch to the client with the given id.
func (s *Service) UpdateClient(_ context.Context, id int, patch models.ClientPatch) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.clients.Get(id)
	if err != nil {
		return models.Client{}, fmt.Errorf("client: %w", err)
	}
	updated := patch.Apply(current)
	if err := s.clients.Replace(updated); err != nil {
		return models.Client{}, fmt.Errorf("client: %w", err)
	}
	s.logger.Info("record updated", slog.String("kind", "client"), slog.Int("id", id))
	s.reindex(affectedKinds(models.KindClient)...)
	return updated, nil
}

// DeleteClient removes a client. A client that still has flights is not
// deleted; the error lists the flights.
func (s *Service) DeleteClient(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.clients.Has(id) {
		return fmt.Errorf("client: id %d: %w", id, apperr.ErrNotFound)
	}
	if refs := s.flightIDs(func(f models.Flight) bool { return f.ClientID == id }); len(refs) > 0 {
		return &apperr.ReferencedError{Kind: "client", ID: id, ReferredBy: refs}
	}
	if err := s.clients.Remove(id); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	s.logger.Info("record deleted", slog.String("kind", "client"), slog.Int("id", id))
	s.reindex(models.KindClient)
	return nil
}

// GetClient returns a copy of one client.
func (s *Service) GetClient(_ context.Context, id int) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.clients.Get(id)
	if err != nil {
		return models.Client{}, fmt.Errorf("client: %w", err)
	}
	return c, nil
}

// ListClients returns copies of every client sorted by id.
func (s *Service) ListClients(_ context.Context) []models.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients.All()
}

// ClientBookings returns the flights booked for a client: its booking
// references.
func (s *Service) ClientBookings(_ context.Context, id int) ([]models.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.clients.Has(id) {
		return nil, fmt.Errorf("client: id %d: %w", id, apperr.ErrNotFound)
	}
	return s.flights.Filter(func(f models.Flight) bool { return f.ClientID == id }), nil
}

func (s *Service) flightIDs(match func(models.Flight) bool) []int {
	var ids []int
	for _, f := range s.flights.Filter(match) {
		ids = append(ids, f.ID)
	}
	return ids
}
