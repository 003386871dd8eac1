// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the travel records to LLM clients via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/travelrec/internal/models"
	"github.com/starford/travelrec/internal/recordservice"
)

const kindDescription = "Record type: client, airline or flight"

// Server wraps the MCP server with the record tools.
type Server struct {
	mcp *server.MCPServer
	svc *recordservice.Service
}

// New creates a new MCP server with all record tools registered.
func New(svc *recordservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Travelrec",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("List every record of one type, sorted by id."),
		mcp.WithString("kind", mcp.Required(), mcp.Description(kindDescription)),
	), s.listRecords)

	s.mcp.AddTool(mcp.NewTool("get_record",
		mcp.WithDescription("Read one record by id. For a client the response also lists its booked flights."),
		mcp.WithString("kind", mcp.Required(), mcp.Description(kindDescription)),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Record id")),
	), s.getRecord)

	s.mcp.AddTool(mcp.NewTool("search_records",
		mcp.WithDescription("Case-insensitive search. Clients match by id or name, airlines by id or "+
			"company name, flights by id, route, client name or airline name."),
		mcp.WithString("kind", mcp.Required(), mcp.Description(kindDescription)),
		mcp.WithString("query", mcp.Description("Search text; empty returns everything")),
	), s.searchRecords)

	s.mcp.AddTool(mcp.NewTool("add_client",
		mcp.WithDescription("Create a client. Omit id to have one assigned."),
		mcp.WithNumber("id", mcp.Description("Optional explicit id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Full name")),
		mcp.WithString("address_line_1", mcp.Description("Address line 1")),
		mcp.WithString("address_line_2", mcp.Description("Address line 2")),
		mcp.WithString("address_line_3", mcp.Description("Address line 3")),
		mcp.WithString("city", mcp.Description("City")),
		mcp.WithString("state", mcp.Description("State or region")),
		mcp.WithString("zip_code", mcp.Description("Postal code")),
		mcp.WithString("country", mcp.Required(), mcp.Description("Country")),
		mcp.WithString("phone_number", mcp.Description("Phone number")),
		mcp.WithString("email", mcp.Description("Email address")),
	), s.addClient)

	s.mcp.AddTool(mcp.NewTool("add_airline",
		mcp.WithDescription("Create an airline company. Omit id to have one assigned."),
		mcp.WithNumber("id", mcp.Description("Optional explicit id")),
		mcp.WithString("company_name", mcp.Required(), mcp.Description("Company name")),
		mcp.WithString("phone_number", mcp.Description("Phone number")),
		mcp.WithString("email", mcp.Description("Email address")),
		mcp.WithNumber("fleet_size", mcp.Description("Number of aircraft")),
	), s.addAirline)

	s.mcp.AddTool(mcp.NewTool("add_flight",
		mcp.WithDescription("Book a flight for an existing client with an existing airline."),
		mcp.WithNumber("id", mcp.Description("Optional explicit id")),
		mcp.WithNumber("client_id", mcp.Required(), mcp.Description("Id of the travelling client")),
		mcp.WithNumber("airline_id", mcp.Required(), mcp.Description("Id of the operating airline")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Departure, e.g. 2025-03-15 19:04 or RFC 3339")),
		mcp.WithString("arrival", mcp.Description("Optional arrival, same formats as date")),
		mcp.WithString("start_city", mcp.Required(), mcp.Description("Departure city")),
		mcp.WithString("end_city", mcp.Required(), mcp.Description("Arrival city")),
		mcp.WithNumber("capacity", mcp.Description("Seats booked")),
	), s.addFlight)

	s.mcp.AddTool(mcp.NewTool("update_record",
		mcp.WithDescription("Change fields of an existing record. Only the fields given are changed. "+
			"Read the record format first via get_record_format."),
		mcp.WithString("kind", mcp.Required(), mcp.Description(kindDescription)),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Record id")),
		mcp.WithObject("fields", mcp.Required(), mcp.Description("Field names and new values, e.g. {\"city\": \"Leeds\"}")),
	), s.updateRecord)

	s.mcp.AddTool(mcp.NewTool("delete_record",
		mcp.WithDescription("Delete a record. Clients and airlines still referenced by a flight cannot be deleted."),
		mcp.WithString("kind", mcp.Required(), mcp.Description(kindDescription)),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Record id")),
	), s.deleteRecord)

	s.mcp.AddTool(mcp.NewTool("get_record_format",
		mcp.WithDescription("Returns the fields and rules of every record type."),
	), s.getRecordFormat)

	s.mcp.AddResource(
		mcp.NewResource("travelrec://record-format", "Record Format",
			mcp.WithResourceDescription("Fields and validation rules of clients, airlines and flights."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch kind {
	case models.KindClient:
		return jsonResult(s.svc.ListClients(ctx))
	case models.KindAirline:
		return jsonResult(s.svc.ListAirlines(ctx))
	default:
		return jsonResult(s.svc.ListFlights(ctx))
	}
}

// clientView is a client together with the flights booked for it.
type clientView struct {
	models.Client
	Bookings []int `json:"bookings"`
}

func (s *Server) getRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch kind {
	case models.KindClient:
		c, err := s.svc.GetClient(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		flights, err := s.svc.ClientBookings(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		view := clientView{Client: c, Bookings: []int{}}
		for _, f := range flights {
			view.Bookings = append(view.Bookings, f.ID)
		}
		return jsonResult(view)
	case models.KindAirline:
		a, err := s.svc.GetAirline(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(a)
	default:
		f, err := s.svc.GetFlight(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(f)
	}
}

func (s *Server) searchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query := req.GetString("query", "")

	var results any
	switch kind {
	case models.KindClient:
		results, err = s.svc.SearchClients(ctx, query)
	case models.KindAirline:
		results, err = s.svc.SearchAirlines(ctx, query)
	default:
		results, err = s.svc.SearchFlights(ctx, query)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) addClient(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	country, err := req.RequireString("country")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.AddClient(ctx, models.Client{
		ID:           req.GetInt("id", 0),
		Name:         name,
		AddressLine1: req.GetString("address_line_1", ""),
		AddressLine2: req.GetString("address_line_2", ""),
		AddressLine3: req.GetString("address_line_3", ""),
		City:         req.GetString("city", ""),
		State:        req.GetString("state", ""),
		ZipCode:      req.GetString("zip_code", ""),
		Country:      country,
		Phone:        req.GetString("phone_number", ""),
		Email:        req.GetString("email", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: client %d", c.ID)), nil
}

func (s *Server) addAirline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("company_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.svc.AddAirline(ctx, models.Airline{
		ID:          req.GetInt("id", 0),
		CompanyName: name,
		Phone:       req.GetString("phone_number", ""),
		Email:       req.GetString("email", ""),
		FleetSize:   req.GetInt("fleet_size", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: airline %d", a.ID)), nil
}

func (s *Server) addFlight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientID, err := req.RequireInt("client_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	airlineID, err := req.RequireInt("airline_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	departure, err := models.ParseTimestamp(date)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var arrival time.Time
	if v := req.GetString("arrival", ""); v != "" {
		if arrival, err = models.ParseTimestamp(v); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	origin, err := req.RequireString("start_city")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	destination, err := req.RequireString("end_city")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f, err := s.svc.AddFlight(ctx, models.Flight{
		ID:          req.GetInt("id", 0),
		ClientID:    clientID,
		AirlineID:   airlineID,
		Departure:   departure,
		Arrival:     arrival,
		Origin:      origin,
		Destination: destination,
		Capacity:    req.GetInt("capacity", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: flight %d", f.ID)), nil
}

func (s *Server) updateRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, ok := req.GetArguments()["fields"].(map[string]any)
	if !ok || len(fields) == 0 {
		return mcp.NewToolResultError("fields must be a non-empty object"), nil
	}

	switch kind {
	case models.KindClient:
		var patch models.ClientPatch
		if err := decodeFields(fields, &patch); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		_, err = s.svc.UpdateClient(ctx, id, patch)
	case models.KindAirline:
		var patch models.AirlinePatch
		if err := decodeFields(fields, &patch); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		_, err = s.svc.UpdateAirline(ctx, id, patch)
	default:
		var patch models.FlightPatch
		if err := normalizeTimes(fields); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := decodeFields(fields, &patch); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		_, err = s.svc.UpdateFlight(ctx, id, patch)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s %d", kind, id)), nil
}

func (s *Server) deleteRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch kind {
	case models.KindClient:
		err = s.svc.DeleteClient(ctx, id)
	case models.KindAirline:
		err = s.svc.DeleteAirline(ctx, id)
	default:
		err = s.svc.DeleteFlight(ctx, id)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s %d", kind, id)), nil
}

func (s *Server) getRecordFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "travelrec://record-format",
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}

func requireKind(req mcp.CallToolRequest) (models.Kind, error) {
	raw, err := req.RequireString("kind")
	if err != nil {
		return "", err
	}
	return models.ParseKind(raw)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// decodeFields maps a loose argument object onto a patch struct, rejecting
// unknown field names.
func decodeFields(fields map[string]any, patch any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(patch); err != nil {
		return fmt.Errorf("invalid fields: %w", err)
	}
	return nil
}

// normalizeTimes rewrites the flight time fields to RFC 3339 so the relaxed
// input formats decode into time.Time.
func normalizeTimes(fields map[string]any) error {
	for _, key := range []string{"date", "arrival"} {
		raw, ok := fields[key].(string)
		if !ok {
			continue
		}
		t, err := models.ParseTimestamp(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		fields[key] = t.Format(time.RFC3339)
	}
	return nil
}
