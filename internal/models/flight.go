package models

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Flight is a booked flight for one client with one airline.
type Flight struct {
	ID          int       `json:"id"`
	ClientID    int       `json:"client_id"`
	AirlineID   int       `json:"airline_id"`
	Departure   time.Time `json:"date"`
	Arrival     time.Time `json:"arrival,omitzero"`
	Origin      string    `json:"start_city"`
	Destination string    `json:"end_city"`
	Capacity    int       `json:"capacity"`
}

func (f Flight) RecordID() int { return f.ID }

func (f Flight) WithRecordID(id int) Flight {
	f.ID = id
	return f
}

// Validate checks required fields, the schedule and the route. Whether the
// client and airline references resolve is checked by the service, which
// owns the other tables.
func (f Flight) Validate() error {
	return asValidationError(validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.Min(0)),
		validation.Field(&f.ClientID, validation.Required, validation.Min(1)),
		validation.Field(&f.AirlineID, validation.Required, validation.Min(1)),
		validation.Field(&f.Departure, validation.Required),
		validation.Field(&f.Arrival, validation.By(func(interface{}) error {
			if !f.Arrival.IsZero() && !f.Departure.IsZero() && !f.Arrival.After(f.Departure) {
				return errors.New("must be after departure")
			}
			return nil
		})),
		validation.Field(&f.Origin, validation.Required, notBlank, validation.RuneLength(1, 100)),
		validation.Field(&f.Destination, validation.Required, notBlank, validation.RuneLength(1, 100),
			validation.By(func(interface{}) error {
				if strings.EqualFold(strings.TrimSpace(f.Origin), strings.TrimSpace(f.Destination)) {
					return errors.New("must differ from start city")
				}
				return nil
			})),
		validation.Field(&f.Capacity, validation.Min(0)),
	))
}

// FlightPatch holds the fields to change on a flight; nil means unchanged.
type FlightPatch struct {
	ClientID     *int       `json:"client_id,omitempty"`
	AirlineID    *int       `json:"airline_id,omitempty"`
	Departure    *time.Time `json:"date,omitempty"`
	Arrival      *time.Time `json:"arrival,omitempty"`
	ClearArrival bool       `json:"clear_arrival,omitempty"`
	Origin       *string    `json:"start_city,omitempty"`
	Destination  *string    `json:"end_city,omitempty"`
	Capacity     *int       `json:"capacity,omitempty"`
}

// Apply returns a copy of f with the patch applied.
func (p FlightPatch) Apply(f Flight) Flight {
	if p.ClientID != nil {
		f.ClientID = *p.ClientID
	}
	if p.AirlineID != nil {
		f.AirlineID = *p.AirlineID
	}
	if p.Departure != nil {
		f.Departure = *p.Departure
	}
	switch {
	case p.ClearArrival:
		f.Arrival = time.Time{}
	case p.Arrival != nil:
		f.Arrival = *p.Arrival
	}
	setString(&f.Origin, p.Origin)
	setString(&f.Destination, p.Destination)
	if p.Capacity != nil {
		f.Capacity = *p.Capacity
	}
	return f
}
