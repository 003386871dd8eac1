package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Airline is an airline company flights are booked with.
type Airline struct {
	ID          int    `json:"id"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	FleetSize   int    `json:"fleet_size"`
}

func (a Airline) RecordID() int { return a.ID }

func (a Airline) WithRecordID(id int) Airline {
	a.ID = id
	return a
}

// Validate checks required fields and formats.
func (a Airline) Validate() error {
	return asValidationError(validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Min(0)),
		validation.Field(&a.CompanyName, validation.Required, notBlank, validation.RuneLength(1, 100)),
		validation.Field(&a.Phone, validation.Match(phonePattern).Error("must contain only digits, spaces and + - ( ) .")),
		validation.Field(&a.Email, is.EmailFormat),
		validation.Field(&a.FleetSize, validation.Min(0)),
	))
}

// AirlinePatch holds the fields to change on an airline; nil means unchanged.
type AirlinePatch struct {
	CompanyName *string `json:"company_name,omitempty"`
	Phone       *string `json:"phone_number,omitempty"`
	Email       *string `json:"email,omitempty"`
	FleetSize   *int    `json:"fleet_size,omitempty"`
}

// Apply returns a copy of a with the patch applied.
func (p AirlinePatch) Apply(a Airline) Airline {
	setString(&a.CompanyName, p.CompanyName)
	setString(&a.Phone, p.Phone)
	setString(&a.Email, p.Email)
	if p.FleetSize != nil {
		a.FleetSize = *p.FleetSize
	}
	return a
}
