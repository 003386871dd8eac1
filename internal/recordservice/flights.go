package recordservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/starford/travelrec/internal/apperr"
	"github.com/starford/travelrec/internal/models"
)

// AddFlight validates and stores a new flight. Its client and airline must
// exist.
func (s *Service) AddFlight(_ context.Context, f models.Flight) (models.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateFlight(f); err != nil {
		return models.Flight{}, fmt.Errorf("flight: %w", err)
	}
	stored, err := s.flights.Insert(f)
	if err != nil {
		return models.Flight{}, fmt.Errorf("flight: %w", err)
	}
	s.logger.Info("record added", slog.String("kind", "flight"), slog.Int("id", stored.ID))
	s.reindex(models.KindFlight)
	return stored, nil
}

// UpdateFlight applies patch to the flight with the given id.
func (s *Service) UpdateFlight(_ context.Context, id int, patch models.FlightPatch) (models.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.flights.Get(id)
	if err != nil {
		return models.Flight{}, fmt.Errorf("flight: %w", err)
	}
	updated := patch.Apply(current)
	if err := s.validateFlight(updated); err != nil {
		return models.Flight{}, fmt.Errorf("flight: %w", err)
	}
	if err := s.flights.Replace(updated); err != nil {
		return models.Flight{}, fmt.Errorf("flight: %w", err)
	}
	s.logger.Info("record updated", slog.String("kind", "flight"), slog.Int("id", id))
	s.reindex(models.KindFlight)
	return updated, nil
}

// DeleteFlight removes a flight. Nothing references flights.
func (s *Service) DeleteFlight(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flights.Remove(id); err != nil {
		return fmt.Errorf("flight: %w", err)
	}
	s.logger.Info("record deleted", slog.String("kind", "flight"), slog.Int("id", id))
	s.reindex(models.KindFlight)
	return nil
}

// GetFlight returns a copy of one flight.
func (s *Service) GetFlight(_ context.Context, id int) (models.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.flights.Get(id)
	if err != nil {
		return models.Flight{}, fmt.Errorf("flight: %w", err)
	}
	return f, nil
}

// ListFlights returns copies of every flight sorted by id.
func (s *Service) ListFlights(_ context.Context) []models.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flights.All()
}

// validateFlight runs the model rules and checks that client_id and
// airline_id resolve, reporting all violations together.
func (s *Service) validateFlight(f models.Flight) error {
	var fields []apperr.FieldError
	if err := f.Validate(); err != nil {
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		fields = append(fields, ve.Fields...)
	}
	has := func(name string) bool {
		for _, fe := range fields {
			if fe.Field == name {
				return true
			}
		}
		return false
	}
	if !has("client_id") && !s.clients.Has(f.ClientID) {
		fields = append(fields, apperr.FieldError{Field: "client_id", Message: "does not reference an existing client"})
	}
	if !has("airline_id") && !s.airlines.Has(f.AirlineID) {
		fields = append(fields, apperr.FieldError{Field: "airline_id", Message: "does not reference an existing airline"})
	}
	if len(fields) == 0 {
		return nil
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &apperr.ValidationError{Fields: fields}
}
