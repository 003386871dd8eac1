package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/travelrec/internal"
	"github.com/starford/travelrec/internal/models"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"}
}

func idFlag() cli.Flag {
	return &cli.IntFlag{Name: "id", Usage: "Explicit id (default: next free id)"}
}

func argID(cmd *cli.Command) (int, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return 0, fmt.Errorf("missing record id")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid record id %q", raw)
	}
	return id, nil
}

func argQuery(cmd *cli.Command) string {
	return strings.Join(cmd.Args().Slice(), " ")
}

// stringPtr returns the flag value when it was given on the command line.
func stringPtr(cmd *cli.Command, name string) *string {
	if !cmd.IsSet(name) {
		return nil
	}
	v := cmd.String(name)
	return &v
}

func intPtr(cmd *cli.Command, name string) *int {
	if !cmd.IsSet(name) {
		return nil
	}
	v := int(cmd.Int(name))
	return &v
}

func clientFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Full name"},
		&cli.StringFlag{Name: "address-1", Usage: "Address line 1"},
		&cli.StringFlag{Name: "address-2", Usage: "Address line 2"},
		&cli.StringFlag{Name: "address-3", Usage: "Address line 3"},
		&cli.StringFlag{Name: "city", Usage: "City"},
		&cli.StringFlag{Name: "state", Usage: "State or region"},
		&cli.StringFlag{Name: "zip", Usage: "Zip code"},
		&cli.StringFlag{Name: "country", Usage: "Country"},
		&cli.StringFlag{Name: "phone", Usage: "Phone number"},
		&cli.StringFlag{Name: "email", Usage: "Email address"},
	}
}

func clientCommand() *cli.Command {
	return &cli.Command{
		Name:    "client",
		Aliases: []string{"clients"},
		Usage:   "Manage clients",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a client",
				Flags: append(clientFlags(), idFlag(), jsonFlag()),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						c, err := app.Service.AddClient(ctx, models.Client{
							ID:           int(cmd.Int("id")),
							Name:         cmd.String("name"),
							AddressLine1: cmd.String("address-1"),
							AddressLine2: cmd.String("address-2"),
							AddressLine3: cmd.String("address-3"),
							City:         cmd.String("city"),
							State:        cmd.String("state"),
							ZipCode:      cmd.String("zip"),
							Country:      cmd.String("country"),
							Phone:        cmd.String("phone"),
							Email:        cmd.String("email"),
						})
						if err != nil {
							return err
						}
						return printCreated(cmd, "client", c.ID, c)
					})
				},
			},
			{
				Name:  "list",
				Usage: "List clients",
				Flags: []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						return printClients(cmd, app.Service.ListClients(ctx))
					})
				},
			},
			{
				Name:      "search",
				Usage:     "Find clients by id or name",
				ArgsUsage: "<query>",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						found, err := app.Service.SearchClients(ctx, argQuery(cmd))
						if err != nil {
							return err
						}
						return printClients(cmd, found)
					})
				},
			},
			{
				Name:      "get",
				Usage:     "Show one client",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := argID(cmd)
					if err != nil {
						return err
					}
					return withApp(cmd, func(app *internal.App) error {
						c, err := app.Service.GetClient(ctx, id)
						if err != nil {
							return err
						}
						bookings, err := app.Service.ClientBookings(ctx, id)
						if err != nil {
							return err
						}
						return printClient(cmd, c, bookings)
					})
				},
			},
			{
				Name:      "edit",
				Usage:     "Change fields of a client; only the flags given are changed",
				ArgsUsage: "<id>",
				Flags:     append(clientFlags(), jsonFlag()),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := argID(cmd)
					if err != nil {
						return err
					}
					return withApp(cmd, func(app *internal.App) error {
						c, err := app.Service.UpdateClient(ctx, id, models.ClientPatch{
							Name:         stringPtr(cmd, "name"),
							AddressLine1: stringPtr(cmd, "address-1"),
							AddressLine2: stringPtr(cmd, "address-2"),
							AddressLine3: stringPtr(cmd, "address-3"),
							City:         stringPtr(cmd, "city"),
							State:        stringPtr(cmd, "state"),
							ZipCode:      stringPtr(cmd, "zip"),
							Country:      stringPtr(cmd, "country"),
							Phone:        stringPtr(cmd, "phone"),
							Email:        stringPtr(cmd, "email"),
						})
						if err != nil {
							return err
						}
						return printUpdated(cmd, "client", id, c)
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a client without flights",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := argID(cmd)
					if err != nil {
						return err
					}
					return withApp(cmd, func(app *internal.App) error {
						if err := app.Service.DeleteClient(ctx, id); err != nil {
							return err
						}
						fmt.Fprintf(out(cmd), "deleted client %d\n", id)
						return nil
					})
				},
			},
			{
				Name:      "bookings",
				Usage:     "List the flights booked for a client",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := argID(cmd)
					if err != nil {
						return err
					}
					return withApp(cmd, func(app *internal.App) error {
						flights, err := app.Service.ClientBookings(ctx, id)
						if err != nil {
							return err
						}
						return printFlights(ctx, cmd, app, flights)
					})
				},
			},
		},
	}
}

func airlineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Company name"},
		&cli.StringFlag{Name: "phone", Usage: "Phone number"},
		&cli.StringFlag{Name: "email", Usage: "Email address"},
		&cli.IntFlag{Name: "fleet-size", Usage: "Number of aircraft"},
	}
}

func airlineCommand() *cli.Command {
	return &cli.Command{
		Name:    "airline",
		Aliases: []string{"airlines", "company"},
		Usage:   "Manage airline companies",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add an airline company",
				Flags: append(airlineFlags(), idFlag(), jsonFlag()),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						a, err := app.Service.AddAirline(ctx, models.Airline{
							ID:          int(cmd.Int("id")),
							CompanyName: cmd.String("name"),
							Phone:       cmd.String("phone"),
							Email:       cmd.String("email"),
							FleetSize:   int(cmd.Int("fleet-size")),
						})
						if err != nil {
							return err
						}
						return printCreated(cmd, "airline", a.ID, a)
					})
				},
			},
			{
				Name:  "list",
				Usage: "List airline companies",
				Flags: []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						return printAirlines(cmd, app.Service.ListAirlines(ctx))
					})
				},
			},
			{
				Name:      "search",
				Usage:     "Find airlines by id or company name",
				ArgsUsage: "<query>",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						found, err := app.Service.SearchAirlines(ctx, argQuery(cmd))
						if err != nil {
							return err
						}
						return printAirlines(cmd, found)
					})
				},
			},
			{
				Name:      "get",
				Usage:     "Show one airline company",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := argID(cmd)
					if err != nil {
						return err
					}
					return withApp(cmd, func(app *internal.App) error {
						a, err := app.Service.GetAirline(ctx, id)
						if err != nil {
							return err
						}
						return printAirlines(cmd, []models.Airline{a})
					})
				},
			},
			{
				Name:      "edit",
				Usage:     "Change fields of an airline; only the flags given are changed",
				ArgsUsage: "<id>",
				Flags:     append(airlineFlags(), jsonFlag()),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := argID(cmd)
					if err != nil {
						return err
					}
					return withApp(cmd, func(app *internal.App) error {
						a, err := app.Service.UpdateAirline(ctx, id, models.AirlinePatch{
							CompanyName: stringPtr(cmd, "name"),
							Phone:       stringPtr(cmd, "phone"),
							Email:       stringPtr(cmd, "email"),
							FleetSize:   intPtr(cmd, "fleet-size"),
						})
						if err != nil {
							return err
						}
						return printUpdated(cmd, "airline", id, a)
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete an airline company without flights",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := argID(cmd)
					if err != nil {
						return err
					}
					return withApp(cmd, func(app *internal.App) error {
						if err := app.Service.DeleteAirline(ctx, id); err != nil {
							return err
						}
						fmt.Fprintf(out(cmd), "deleted airline %d\n", id)
						return nil
					})
				},
			},
		},
	}
}

func flightFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "client", Usage: "Client id"},
		&cli.IntFlag{Name: "airline", Usage: "Airline id"},
		&cli.StringFlag{Name: "date", Usage: "Departure, e.g. \"2025-03-15 19:04\""},
		&cli.StringFlag{Name: "arrival", Usage: "Arrival, same format as --date"},
		&cli.StringFlag{Name: "from", Usage: "Start city"},
		&cli.StringFlag{Name: "to", Usage: "End city"},
		&cli.IntFlag{Name: "capacity", Usage: "Seats booked"},
	}
}

func flightCommand() *cli.Command {
	return &cli.Command{
		Name:    "flight",
		Aliases: []string{"flights"},
		Usage:   "Manage flights",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Book a flight",
				Flags: append(flightFlags(), idFlag(), jsonFlag()),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					f := models.Flight{
						ID:          int(cmd.Int("id")),
						ClientID:    int(cmd.Int("client")),
						AirlineID:   int(cmd.Int("airline")),
						Origin:      cmd.String("from"),
						Destination: cmd.String("to"),
						Capacity:    int(cmd.Int("capacity")),
					}
					if v := cmd.String("date"); v != "" {
						t, err := models.ParseTimestamp(v)
						if err != nil {
							return fmt.Errorf("--date: %w", err)
						}
						f.Departure = t
					}
					if v := cmd.String("arrival"); v != "" {
						t, err := models.ParseTimestamp(v)
						if err != nil {
							return fmt.Errorf("--arrival: %w", err)
						}
						f.Arrival = t
					}
					return withApp(cmd, func(app *internal.App) error {
						stored, err := app.Service.AddFlight(ctx, f)
						if err != nil {
							return err
						}
						return printCreated(cmd, "flight", stored.ID, stored)
					})
				},
			},
			{
				Name:  "list",
				Usage: "List flights",
				Flags: []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						return printFlights(ctx, cmd, app, app.Service.ListFlights(ctx))
					})
				},
			},
			{
				Name:      "search",
				Usage:     "Find flights by id, city, client name or airline name",
				ArgsUsage: "<query>",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						found, err := app.Service.SearchFlights(ctx, argQuery(cmd))
						if err != nil {
							return err
						}
						return printFlights(ctx, cmd, app, found)
					})
				},
			},
			{
				Name:      "get",
				Usage:     "Show one flight",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := argID(cmd)
					if err != nil {
						return err
					}
					return withApp(cmd, func(app *internal.App) error {
						f, err := app.Service.GetFlight(ctx, id)
						if err != nil {
							return err
						}
						return printFlights(ctx, cmd, app, []models.Flight{f})
					})
				},
			},
			{
				Name:      "edit",
				Usage:     "Change fields of a flight; only the flags given are changed",
				ArgsUsage: "<id>",
				Flags: append(flightFlags(), jsonFlag(),
					&cli.BoolFlag{Name: "clear-arrival", Usage: "Remove the arrival time"}),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := argID(cmd)
					if err != nil {
						return err
					}
					patch := models.FlightPatch{
						ClientID:     intPtr(cmd, "client"),
						AirlineID:    intPtr(cmd, "airline"),
						Origin:       stringPtr(cmd, "from"),
						Destination:  stringPtr(cmd, "to"),
						Capacity:     intPtr(cmd, "capacity"),
						ClearArrival: cmd.Bool("clear-arrival"),
					}
					if cmd.IsSet("date") {
						t, err := models.ParseTimestamp(cmd.String("date"))
						if err != nil {
							return fmt.Errorf("--date: %w", err)
						}
						patch.Departure = &t
					}
					if cmd.IsSet("arrival") {
						t, err := models.ParseTimestamp(cmd.String("arrival"))
						if err != nil {
							return fmt.Errorf("--arrival: %w", err)
						}
						patch.Arrival = &t
					}
					return withApp(cmd, func(app *internal.App) error {
						f, err := app.Service.UpdateFlight(ctx, id, patch)
						if err != nil {
							return err
						}
						return printUpdated(cmd, "flight", id, f)
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a flight",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := argID(cmd)
					if err != nil {
						return err
					}
					return withApp(cmd, func(app *internal.App) error {
						if err := app.Service.DeleteFlight(ctx, id); err != nil {
							return err
						}
						fmt.Fprintf(out(cmd), "deleted flight %d\n", id)
						return nil
					})
				},
			},
		},
	}
}
