package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/starford/travelrec/internal"
	"github.com/starford/travelrec/internal/models"
)

func printJSON(cmd *cli.Command, v any) error {
	enc := json.NewEncoder(out(cmd))
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable writes header and rows as tab-aligned columns.
func printTable(cmd *cli.Command, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func printCreated(cmd *cli.Command, kind string, id int, rec any) error {
	if cmd.Bool("json") {
		return printJSON(cmd, rec)
	}
	_, err := fmt.Fprintf(out(cmd), "created %s %d\n", kind, id)
	return err
}

func printUpdated(cmd *cli.Command, kind string, id int, rec any) error {
	if cmd.Bool("json") {
		return printJSON(cmd, rec)
	}
	_, err := fmt.Fprintf(out(cmd), "updated %s %d\n", kind, id)
	return err
}

func printClients(cmd *cli.Command, clients []models.Client) error {
	if cmd.Bool("json") {
		return printJSON(cmd, clients)
	}
	rows := make([][]string, len(clients))
	for i, c := range clients {
		rows[i] = []string{strconv.Itoa(c.ID), c.Name, c.City, c.Country, c.Phone, c.Email}
	}
	return printTable(cmd, []string{"ID", "NAME", "CITY", "COUNTRY", "PHONE", "EMAIL"}, rows)
}

// printClient shows every field of one client followed by its bookings.
func printClient(cmd *cli.Command, c models.Client, bookings []models.Flight) error {
	ids := make([]int, len(bookings))
	for i, f := range bookings {
		ids[i] = f.ID
	}
	if cmd.Bool("json") {
		return printJSON(cmd, struct {
			models.Client
			Bookings []int `json:"bookings"`
		}{c, ids})
	}

	booked := make([]string, len(ids))
	for i, id := range ids {
		booked[i] = strconv.Itoa(id)
	}
	return printTable(cmd, []string{"FIELD", "VALUE"}, [][]string{
		{"id", strconv.Itoa(c.ID)},
		{"name", c.Name},
		{"address_line_1", c.AddressLine1},
		{"address_line_2", c.AddressLine2},
		{"address_line_3", c.AddressLine3},
		{"city", c.City},
		{"state", c.State},
		{"zip_code", c.ZipCode},
		{"country", c.Country},
		{"phone_number", c.Phone},
		{"email", c.Email},
		{"bookings", strings.Join(booked, ", ")},
	})
}

func printAirlines(cmd *cli.Command, airlines []models.Airline) error {
	if cmd.Bool("json") {
		return printJSON(cmd, airlines)
	}
	rows := make([][]string, len(airlines))
	for i, a := range airlines {
		rows[i] = []string{strconv.Itoa(a.ID), a.CompanyName, a.Phone, a.Email, strconv.Itoa(a.FleetSize)}
	}
	return printTable(cmd, []string{"ID", "COMPANY", "PHONE", "EMAIL", "FLEET"}, rows)
}

func printFlights(ctx context.Context, cmd *cli.Command, app *internal.App, flights []models.Flight) error {
	if cmd.Bool("json") {
		return printJSON(cmd, flights)
	}
	rows := make([][]string, len(flights))
	for i, f := range flights {
		rows[i] = []string{
			strconv.Itoa(f.ID),
			models.FormatTimestamp(f.Departure),
			models.FormatTimestamp(f.Arrival),
			f.Origin,
			f.Destination,
			nameOrID(app.Service.ClientName(ctx, f.ClientID), f.ClientID),
			nameOrID(app.Service.AirlineName(ctx, f.AirlineID), f.AirlineID),
			strconv.Itoa(f.Capacity),
		}
	}
	return printTable(cmd, []string{"ID", "DEPARTURE", "ARRIVAL", "FROM", "TO", "CLIENT", "AIRLINE", "CAPACITY"}, rows)
}

// nameOrID falls back to the raw id for references that no longer resolve.
func nameOrID(name string, id int) string {
	if name == "" {
		return "#" + strconv.Itoa(id)
	}
	return name
}
