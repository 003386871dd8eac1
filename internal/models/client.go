package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Client is a customer of the agency.
type Client struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	AddressLine3 string `json:"address_line_3"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone_number"`
	Email        string `json:"email,omitempty"`
}

func (c Client) RecordID() int { return c.ID }

func (c Client) WithRecordID(id int) Client {
	c.ID = id
	return c
}

// Validate checks required fields and formats.
func (c Client) Validate() error {
	return asValidationError(validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Min(0)),
		validation.Field(&c.Name, validation.Required, notBlank, validation.RuneLength(1, 100)),
		validation.Field(&c.AddressLine1, validation.RuneLength(0, 200)),
		validation.Field(&c.AddressLine2, validation.RuneLength(0, 200)),
		validation.Field(&c.AddressLine3, validation.RuneLength(0, 200)),
		validation.Field(&c.City, validation.RuneLength(0, 100)),
		validation.Field(&c.State, validation.RuneLength(0, 100)),
		validation.Field(&c.ZipCode, validation.RuneLength(0, 20)),
		validation.Field(&c.Country, validation.Required, notBlank, validation.RuneLength(1, 100)),
		validation.Field(&c.Phone, validation.Match(phonePattern).Error("must contain only digits, spaces and + - ( ) .")),
		validation.Field(&c.Email, is.EmailFormat),
	))
}

// ClientPatch holds the fields to change on a client; nil means unchanged.
type ClientPatch struct {
	Name         *string `json:"name,omitempty"`
	AddressLine1 *string `json:"address_line_1,omitempty"`
	AddressLine2 *string `json:"address_line_2,omitempty"`
	AddressLine3 *string `json:"address_line_3,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	ZipCode      *string `json:"zip_code,omitempty"`
	Country      *string `json:"country,omitempty"`
	Phone        *string `json:"phone_number,omitempty"`
	Email        *string `json:"email,omitempty"`
}

// Apply returns a copy of c with the patch applied.
func (p ClientPatch) Apply(c Client) Client {
	setString(&c.Name, p.Name)
	setString(&c.AddressLine1, p.AddressLine1)
	setString(&c.AddressLine2, p.AddressLine2)
	setString(&c.AddressLine3, p.AddressLine3)
	setString(&c.City, p.City)
	setString(&c.State, p.State)
	setString(&c.ZipCode, p.ZipCode)
	setString(&c.Country, p.Country)
	setString(&c.Phone, p.Phone)
	setString(&c.Email, p.Email)
	return c
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
