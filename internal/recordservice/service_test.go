package recordservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/travelrec/internal/apperr"
	"github.com/starford/travelrec/internal/index"
	"github.com/starford/travelrec/internal/models"
	"github.com/starford/travelrec/internal/storage"
)

var departure = time.Date(2025, 3, 15, 19, 4, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testService opens a service over a fresh data dir. withIndex adds a
// SQLite index.
func testService(t *testing.T, withIndex bool) (*Service, *storage.FS) {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var idx index.RecordIndex
	if withIndex {
		db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { db.Close() })
		idx = db
	}
	svc, err := Open(fs, DefaultFiles, idx, quietLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return svc, fs
}

// seed adds one client, one airline and one flight between them.
func seed(t *testing.T, svc *Service) (models.Client, models.Airline, models.Flight) {
	t.Helper()
	ctx := context.Background()
	c, err := svc.AddClient(ctx, models.Client{Name: "John Doe", Country: "UK"})
	if err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	a, err := svc.AddAirline(ctx, models.Airline{CompanyName: "Air Test"})
	if err != nil {
		t.Fatalf("AddAirline: %v", err)
	}
	f, err := svc.AddFlight(ctx, models.Flight{
		ClientID: c.ID, AirlineID: a.ID, Departure: departure,
		Origin: "London", Destination: "Paris",
	})
	if err != nil {
		t.Fatalf("AddFlight: %v", err)
	}
	return c, a, f
}

func TestAddGetDeleteClient(t *testing.T) {
	svc, _ := testService(t, false)
	ctx := context.Background()

	in := models.Client{ID: 1, Name: "A. Smith", Country: "UK"}
	if _, err := svc.AddClient(ctx, in); err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	got, err := svc.GetClient(ctx, 1)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("client mismatch (-want +got):\n%s", diff)
	}

	list := svc.ListClients(ctx)
	if len(list) != 1 || list[0].ID != 1 {
		t.Fatalf("list = %+v, want exactly id 1", list)
	}
	if err := svc.DeleteClient(ctx, 1); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}
	if list := svc.ListClients(ctx); len(list) != 0 {
		t.Errorf("list after delete = %+v", list)
	}
}

func TestAddDuplicateClient(t *testing.T) {
	svc, _ := testService(t, false)
	ctx := context.Background()
	_, _ = svc.AddClient(ctx, models.Client{ID: 1, Name: "A", Country: "UK"})

	_, err := svc.AddClient(ctx, models.Client{ID: 1, Name: "B", Country: "UK"})
	if !errors.Is(err, apperr.ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
	list := svc.ListClients(ctx)
	if len(list) != 1 || list[0].Name != "A" {
		t.Errorf("store changed: %+v", list)
	}
}

func TestDeleteMissing(t *testing.T) {
	svc, _ := testService(t, false)
	ctx := context.Background()
	seed(t, svc)

	for name, del := range map[string]func(context.Context, int) error{
		"client":  svc.DeleteClient,
		"airline": svc.DeleteAirline,
		"flight":  svc.DeleteFlight,
	} {
		if err := del(ctx, 99); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", name, err)
		}
	}
	counts := svc.Counts(ctx)
	if counts[models.KindClient] != 1 || counts[models.KindAirline] != 1 || counts[models.KindFlight] != 1 {
		t.Errorf("counts changed: %v", counts)
	}
}

func TestDeleteReferencedAirlineRejected(t *testing.T) {
	svc, _ := testService(t, false)
	ctx := context.Background()
	_, a, f := seed(t, svc)

	err := svc.DeleteAirline(ctx, a.ID)
	if !errors.Is(err, apperr.ErrReferenced) {
		t.Fatalf("err = %v, want ErrReferenced", err)
	}
	var ref *apperr.ReferencedError
	if !errors.As(err, &ref) || len(ref.ReferredBy) != 1 || ref.ReferredBy[0] != f.ID {
		t.Errorf("referenced error = %+v", ref)
	}
	if _, err := svc.GetAirline(ctx, a.ID); err != nil {
		t.Errorf("airline removed despite reference: %v", err)
	}

	// Once the flight is gone the airline can be deleted.
	if err := svc.DeleteFlight(ctx, f.ID); err != nil {
		t.Fatalf("DeleteFlight: %v", err)
	}
	if err := svc.DeleteAirline(ctx, a.ID); err != nil {
		t.Errorf("DeleteAirline after flight removal: %v", err)
	}
}

func TestDeleteReferencedClientRejected(t *testing.T) {
	svc, _ := testService(t, false)
	ctx := context.Background()
	c, _, _ := seed(t, svc)
	if err := svc.DeleteClient(ctx, c.ID); !errors.Is(err, apperr.ErrReferenced) {
		t.Fatalf("err = %v, want ErrReferenced", err)
	}
}

func TestAddFlightUnknownReferences(t *testing.T) {
	svc, _ := testService(t, false)
	ctx := context.Background()
	_, err := svc.AddFlight(ctx, models.Flight{
		ClientID: 5, AirlineID: 6, Departure: departure, Origin: "London", Destination: "Paris",
	})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if diff := cmp.Diff([]string{"airline_id", "client_id"}, ve.FieldNames()); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
	if n := len(svc.ListFlights(ctx)); n != 0 {
		t.Errorf("flights = %d, want 0", n)
	}
}

func TestUpdateRecords(t *testing.T) {
	svc, _ := testService(t, false)
	ctx := context.Background()
	c, a, f := seed(t, svc)

	name := "Jane Doe"
	updated, err := svc.UpdateClient(ctx, c.ID, models.ClientPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if updated.Name != name || updated.Country != "UK" {
		t.Errorf("updated client = %+v", updated)
	}

	fleet := 12
	if _, err := svc.UpdateAirline(ctx, a.ID, models.AirlinePatch{FleetSize: &fleet}); err != nil {
		t.Fatalf("UpdateAirline: %v", err)
	}

	bad := 404
	_, err = svc.UpdateFlight(ctx, f.ID, models.FlightPatch{AirlineID: &bad})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	got, _ := svc.GetFlight(ctx, f.ID)
	if got.AirlineID != a.ID {
		t.Errorf("flight changed after rejected update: %+v", got)
	}

	empty := ""
	if _, err := svc.UpdateClient(ctx, c.ID, models.ClientPatch{Name: &empty}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
	if _, err := svc.UpdateClient(ctx, 99, models.ClientPatch{Name: &name}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestClientBookings(t *testing.T) {
	svc, _ := testService(t, false)
	ctx := context.Background()
	c, a, f := seed(t, svc)
	other, _ := svc.AddClient(ctx, models.Client{Name: "Other", Country: "FR"})
	_, _ = svc.AddFlight(ctx, models.Flight{ClientID: other.ID, AirlineID: a.ID, Departure: departure, Origin: "Rome", Destination: "Oslo"})

	bookings, err := svc.ClientBookings(ctx, c.ID)
	if err != nil {
		t.Fatalf("ClientBookings: %v", err)
	}
	if len(bookings) != 1 || bookings[0].ID != f.ID {
		t.Errorf("bookings = %+v, want flight %d", bookings, f.ID)
	}
	flights, _ := svc.AirlineFlights(ctx, a.ID)
	if len(flights) != 2 {
		t.Errorf("airline flights = %d, want 2", len(flights))
	}
}

func TestPersistAcrossReopen(t *testing.T) {
	svc, fs := testService(t, false)
	ctx := context.Background()
	seed(t, svc)
	want := svc.ListFlights(ctx)

	reopened, err := Open(fs, DefaultFiles, nil, quietLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if diff := cmp.Diff(want, reopened.ListFlights(ctx)); diff != "" {
		t.Errorf("flights differ after reopen (-want +got):\n%s", diff)
	}
}

func TestOpenFailsClosedOnCorruptFile(t *testing.T) {
	fs, _ := storage.NewFS(t.TempDir())
	_ = fs.Write("airlines.json", []byte("{not json"))
	if _, err := Open(fs, DefaultFiles, nil, quietLogger()); !errors.Is(err, apperr.ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	data, _ := fs.Read("airlines.json")
	if string(data) != "{not json" {
		t.Error("corrupt file overwritten")
	}
}

func testSearch(t *testing.T, withIndex bool) {
	svc, _ := testService(t, withIndex)
	ctx := context.Background()
	c, a, f := seed(t, svc)
	jane, _ := svc.AddClient(ctx, models.Client{Name: "Jane Roe", Country: "FR"})

	clients, _ := svc.SearchClients(ctx, "DOE")
	if len(clients) != 1 || clients[0].ID != c.ID {
		t.Errorf("client search = %+v", clients)
	}
	clients, _ = svc.SearchClients(ctx, "")
	if len(clients) != 2 {
		t.Errorf("empty search = %d clients, want 2", len(clients))
	}
	clients, _ = svc.SearchClients(ctx, "2")
	if len(clients) != 1 || clients[0].ID != jane.ID {
		t.Errorf("id search = %+v", clients)
	}

	clients, _ = svc.SearchClients(ctx, "oe")
	if len(clients) != 2 {
		t.Errorf("substring search = %+v, want both clients", clients)
	}

	airlines, _ := svc.SearchAirlines(ctx, "air")
	if len(airlines) != 1 || airlines[0].ID != a.ID {
		t.Errorf("airline search = %+v", airlines)
	}

	for _, q := range []string{"paris", "john", "air test"} {
		flights, _ := svc.SearchFlights(ctx, q)
		if len(flights) != 1 || flights[0].ID != f.ID {
			t.Errorf("flight search %q = %+v", q, flights)
		}
	}

	// Renaming the client updates flight search text.
	name := "Johann Schmidt"
	_, _ = svc.UpdateClient(ctx, c.ID, models.ClientPatch{Name: &name})
	if flights, _ := svc.SearchFlights(ctx, "schmidt"); len(flights) != 1 {
		t.Errorf("flight search after rename = %+v", flights)
	}
	if flights, _ := svc.SearchFlights(ctx, "doe"); len(flights) != 0 {
		t.Errorf("stale flight search = %+v", flights)
	}
	if flights, _ := svc.SearchFlights(ctx, "ari"); len(flights) != 1 {
		t.Errorf("flight substring search = %+v", flights)
	}

	orsted, _ := svc.AddClient(ctx, models.Client{Name: "Ørsted", Country: "DK"})
	for _, q := range []string{"ørsted", "ØRST"} {
		clients, _ := svc.SearchClients(ctx, q)
		if len(clients) != 1 || clients[0].ID != orsted.ID {
			t.Errorf("unicode search %q = %+v", q, clients)
		}
	}
}

func TestSearchInMemory(t *testing.T) { testSearch(t, false) }

func TestSearchWithIndex(t *testing.T) { testSearch(t, true) }

func TestReloadAfterExternalEdit(t *testing.T) {
	svc, fs := testService(t, true)
	ctx := context.Background()
	seed(t, svc)

	kind, changed, err := svc.Reload(ctx, "clients.json")
	if err != nil || changed || kind != models.KindClient {
		t.Fatalf("Reload of own write = %q, %v, %v", kind, changed, err)
	}

	external := `{"next_id": 3, "records": [{"id": 1, "name": "John Doe", "country": "UK"}, {"id": 2, "name": "Zed", "country": "NO"}]}`
	if err := os.WriteFile(filepath.Join(fs.Root(), "clients.json"), []byte(external), 0o644); err != nil {
		t.Fatal(err)
	}
	_, changed, err = svc.Reload(ctx, "clients.json")
	if err != nil || !changed {
		t.Fatalf("Reload = %v, %v; want changed", changed, err)
	}
	if found, _ := svc.SearchClients(ctx, "zed"); len(found) != 1 {
		t.Errorf("reloaded client not searchable: %+v", found)
	}

	if _, changed, err := svc.Reload(ctx, "notes.json"); err != nil || changed {
		t.Errorf("unknown file = %v, %v", changed, err)
	}
}
