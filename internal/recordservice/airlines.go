package recordservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/travelrec/internal/apperr"
	"github.com/starford/travelrec/internal/models"
)

// AddAirline validates and stores a new airline company.
func (s *Service) AddAirline(_ context.Context, a models.Airline) (models.Airline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.airlines.Insert(a)
	if err != nil {
		return models.Airline{}, fmt.Errorf("airline: %w", err)
	}
	s.logger.Info("record added", slog.String("kind", "airline"), slog.Int("id", stored.ID))
	s.reindex(models.KindAirline)
	return stored, nil
}

// UpdateAirline applies patch to the airline with the given id.
func (s *Service) UpdateAirline(_ context.Context, id int, patch models.AirlinePatch) (models.Airline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.airlines.Get(id)
	if err != nil {
		return models.Airline{}, fmt.Errorf("airline: %w", err)
	}
	updated := patch.Apply(current)
	if err := s.airlines.Replace(updated); err != nil {
		return models.Airline{}, fmt.Errorf("airline: %w", err)
	}
	s.logger.Info("record updated", slog.String("kind", "airline"), slog.Int("id", id))
	s.reindex(affectedKinds(models.KindAirline)...)
	return updated, nil
}

// DeleteAirline removes an airline company. Deletion is refused while any
// flight still references it.
func (s *Service) DeleteAirline(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.airlines.Has(id) {
		return fmt.Errorf("airline: id %d: %w", id, apperr.ErrNotFound)
	}
	if refs := s.flightIDs(func(f models.Flight) bool { return f.AirlineID == id }); len(refs) > 0 {
		return &apperr.ReferencedError{Kind: "airline", ID: id, ReferredBy: refs}
	}
	if err := s.airlines.Remove(id); err != nil {
		return fmt.Errorf("airline: %w", err)
	}
	s.logger.Info("record deleted", slog.String("kind", "airline"), slog.Int("id", id))
	s.reindex(models.KindAirline)
	return nil
}

// GetAirline returns a copy of one airline.
func (s *Service) GetAirline(_ context.Context, id int) (models.Airline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.airlines.Get(id)
	if err != nil {
		return models.Airline{}, fmt.Errorf("airline: %w", err)
	}
	return a, nil
}

// ListAirlines returns copies of every airline sorted by id.
func (s *Service) ListAirlines(_ context.Context) []models.Airline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.airlines.All()
}

// AirlineFlights returns the flights operated by an airline.
func (s *Service) AirlineFlights(_ context.Context, id int) ([]models.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.airlines.Has(id) {
		return nil, fmt.Errorf("airline: id %d: %w", id, apperr.ErrNotFound)
	}
	return s.flights.Filter(func(f models.Flight) bool { return f.AirlineID == id }), nil
}
