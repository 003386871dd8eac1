// Package models defines the travel agency record types and their validation
// rules.
package models

import (
	"fmt"
	"strings"
)

// Kind identifies one of the three record types.
type Kind string

const (
	KindClient  Kind = "client"
	KindAirline Kind = "airline"
	KindFlight  Kind = "flight"
)

// Kinds lists every record type in display order.
var Kinds = []Kind{KindClient, KindAirline, KindFlight}

// ParseKind accepts the singular or plural name of a record type.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "clients":
		return KindClient, nil
	case "airline", "airlines", "company", "airline_company":
		return KindAirline, nil
	case "flight", "flights":
		return KindFlight, nil
	}
	return "", fmt.Errorf("unknown record type %q", s)
}

// Plural returns the display name of the record list, e.g. "Clients".
func (k Kind) Plural() string {
	switch k {
	case KindClient:
		return "Clients"
	case KindAirline:
		return "Airlines"
	case KindFlight:
		return "Flights"
	}
	return string(k)
}

func (k Kind) String() string { return string(k) }
