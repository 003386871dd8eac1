package storage

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema wraps a record schema into the on-disk table document.
func documentSchema(record string) string {
	return `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["records"],
	"properties": {
		"next_id": {"type": "integer", "minimum": 1},
		"records": {"type": "array", "items": ` + record + `}
	}
}`
}

// ClientSchema describes clients.json.
var ClientSchema = documentSchema(`{
	"type": "object",
	"required": ["id", "name", "country"],
	"properties": {
		"id": {"type": "integer", "minimum": 1},
		"name": {"type": "string"},
		"address_line_1": {"type": "string"},
		"address_line_2": {"type": "string"},
		"address_line_3": {"type": "string"},
		"city": {"type": "string"},
		"state": {"type": "string"},
		"zip_code": {"type": "string"},
		"country": {"type": "string"},
		"phone_number": {"type": "string"},
		"email": {"type": "string"}
	}
}`)

// AirlineSchema describes airlines.json.
var AirlineSchema = documentSchema(`{
	"type": "object",
	"required": ["id", "company_name"],
	"properties": {
		"id": {"type": "integer", "minimum": 1},
		"company_name": {"type": "string"},
		"phone_number": {"type": "string"},
		"email": {"type": "string"},
		"fleet_size": {"type": "integer", "minimum": 0}
	}
}`)

// FlightSchema describes flights.json.
var FlightSchema = documentSchema(`{
	"type": "object",
	"required": ["id", "client_id", "airline_id", "date", "start_city", "end_city"],
	"properties": {
		"id": {"type": "integer", "minimum": 1},
		"client_id": {"type": "integer", "minimum": 1},
		"airline_id": {"type": "integer", "minimum": 1},
		"date": {"type": "string", "format": "date-time"},
		"arrival": {"type": "string", "format": "date-time"},
		"start_city": {"type": "string"},
		"end_city": {"type": "string"},
		"capacity": {"type": "integer", "minimum": 0}
	}
}`)

func compileSchema(src string) (*gojsonschema.Schema, error) {
	if src == "" {
		return nil, nil
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("storage: compile schema: %w", err)
	}
	return s, nil
}

// checkSchema returns a description of every schema violation in data, or
// an error if data is not JSON at all.
func checkSchema(schema *gojsonschema.Schema, data []byte) (string, error) {
	if schema == nil {
		return "", nil
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return "", err
	}
	if res.Valid() {
		return "", nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return strings.Join(msgs, "; "), nil
}
