package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/travelrec/internal/models"
	"github.com/starford/travelrec/internal/recordservice"
	"github.com/starford/travelrec/internal/testutil"
)

func testModel(t *testing.T) (*Model, *recordservice.Service) {
	t.Helper()
	svc, _ := testutil.TestService(t)
	return New(context.Background(), svc, testutil.QuietLogger()), svc
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

// press feeds msgs to m, running every command they return until none is
// left. It reports whether the program asked to quit.
func press(t *testing.T, m *Model, msgs ...tea.Msg) (quit bool) {
	t.Helper()
	for _, msg := range msgs {
		queue := []tea.Msg{msg}
		for len(queue) > 0 {
			next := queue[0]
			queue = queue[1:]
			if _, ok := next.(tea.QuitMsg); ok {
				quit = true
				continue
			}
			_, cmd := m.Update(next)
			if cmd != nil {
				queue = append(queue, cmd())
			}
		}
	}
	return quit
}

func addClient(t *testing.T, svc *recordservice.Service, name string) models.Client {
	t.Helper()
	c, err := svc.AddClient(context.Background(), models.Client{Name: name, Country: "UK"})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestStartsOnClientList(t *testing.T) {
	svc, _ := testutil.TestService(t)
	addClient(t, svc, "John Doe")
	m := New(context.Background(), svc, testutil.QuietLogger())

	out := m.View()
	if !strings.Contains(out, "[1 Clients]") || !strings.Contains(out, "John Doe") {
		t.Errorf("view:\n%s", out)
	}
}

func TestAddClientThroughForm(t *testing.T) {
	m, svc := testModel(t)

	press(t, m, runes("a"), runes("A. Smith"))
	for i := 0; i < 7; i++ {
		press(t, m, key(tea.KeyTab))
	}
	press(t, m, runes("UK"), key(tea.KeyEnter))

	if _, ok := m.active.(*listView); !ok {
		t.Fatalf("form still open:\n%s", m.View())
	}
	clients := svc.ListClients(context.Background())
	if len(clients) != 1 || clients[0].Name != "A. Smith" || clients[0].Country != "UK" {
		t.Fatalf("clients = %+v", clients)
	}
	if m.list.status != "client 1 added" {
		t.Errorf("status = %q", m.list.status)
	}
	if !strings.Contains(m.View(), "A. Smith") {
		t.Error("new client not listed")
	}
}

func TestFormValidationKeepsFormOpen(t *testing.T) {
	m, svc := testModel(t)

	press(t, m, runes("a"), key(tea.KeyEnter))

	form, ok := m.active.(*formView)
	if !ok {
		t.Fatal("form closed on invalid input")
	}
	for _, field := range []string{"name", "country"} {
		if _, bad := form.errs[field]; !bad {
			t.Errorf("missing error for %s: %v", field, form.errs)
		}
	}
	if form.focus != 0 {
		t.Errorf("focus = %d, want first invalid field", form.focus)
	}
	if n := len(svc.ListClients(context.Background())); n != 0 {
		t.Errorf("clients = %d, want 0", n)
	}
	if !strings.Contains(m.View(), "! ") {
		t.Errorf("errors not rendered:\n%s", m.View())
	}
}

func TestEscCancelsForm(t *testing.T) {
	m, svc := testModel(t)
	press(t, m, runes("a"), runes("Nobody"), key(tea.KeyEsc))

	if _, ok := m.active.(*listView); !ok {
		t.Fatal("form still open after esc")
	}
	if n := len(svc.ListClients(context.Background())); n != 0 {
		t.Errorf("clients = %d, want 0", n)
	}
}

func TestEditClient(t *testing.T) {
	svc, _ := testutil.TestService(t)
	c := addClient(t, svc, "John Doe")
	m := New(context.Background(), svc, testutil.QuietLogger())

	press(t, m, runes("e"))
	form, ok := m.active.(*formView)
	if !ok {
		t.Fatal("edit form not opened")
	}
	if got := string(form.fields[0].value); got != "John Doe" {
		t.Errorf("prefilled name = %q", got)
	}

	press(t, m, key(tea.KeyCtrlU), runes("Jane Doe"), key(tea.KeyEnter))
	got, _ := svc.GetClient(context.Background(), c.ID)
	if got.Name != "Jane Doe" || got.Country != "UK" {
		t.Errorf("client = %+v", got)
	}
}

func TestDeleteConfirmation(t *testing.T) {
	svc, _ := testutil.TestService(t)
	addClient(t, svc, "John Doe")
	m := New(context.Background(), svc, testutil.QuietLogger())
	ctx := context.Background()

	press(t, m, runes("d"))
	if !strings.Contains(m.list.status, "Delete client 1?") {
		t.Errorf("status = %q", m.list.status)
	}
	press(t, m, runes("n"))
	if n := len(svc.ListClients(ctx)); n != 1 {
		t.Fatalf("client deleted without confirmation")
	}

	press(t, m, runes("d"), runes("y"))
	if n := len(svc.ListClients(ctx)); n != 0 {
		t.Errorf("clients = %d after confirmed delete", n)
	}
	if !strings.Contains(m.View(), "no clients") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestDeleteReferencedAirlineShowsError(t *testing.T) {
	svc, _ := testutil.TestService(t)
	ctx := context.Background()
	c := addClient(t, svc, "John Doe")
	a, _ := svc.AddAirline(ctx, models.Airline{CompanyName: "Air Test"})
	_, err := svc.AddFlight(ctx, models.Flight{
		ClientID: c.ID, AirlineID: a.ID, Departure: time.Now(), Origin: "London", Destination: "Paris",
	})
	if err != nil {
		t.Fatal(err)
	}
	m := New(ctx, svc, testutil.QuietLogger())

	press(t, m, runes("2"))
	if !strings.Contains(m.View(), "flights: 1") {
		t.Errorf("airline detail missing:\n%s", m.View())
	}
	press(t, m, runes("d"), runes("y"))
	if !strings.Contains(m.list.status, "referenced") {
		t.Errorf("status = %q", m.list.status)
	}
	if n := len(svc.ListAirlines(ctx)); n != 1 {
		t.Errorf("airlines = %d, want 1", n)
	}
}

func TestSearchFiltersList(t *testing.T) {
	svc, _ := testutil.TestService(t)
	addClient(t, svc, "John Doe")
	addClient(t, svc, "Jane Roe")
	m := New(context.Background(), svc, testutil.QuietLogger())

	press(t, m, runes("/"), runes("jane"), key(tea.KeyEnter))
	if len(m.list.rows) != 1 || m.list.rows[0].id != 2 {
		t.Fatalf("rows = %+v", m.list.rows)
	}
	if m.list.searching {
		t.Error("still searching after enter")
	}

	press(t, m, runes("/"), key(tea.KeyEsc))
	if m.list.query != "" || len(m.list.rows) != 2 {
		t.Errorf("esc did not clear search: %q %d", m.list.query, len(m.list.rows))
	}
}

func TestSwitchTabs(t *testing.T) {
	m, _ := testModel(t)

	press(t, m, runes("2"))
	if m.list.kind != models.KindAirline {
		t.Errorf("kind = %s", m.list.kind)
	}
	press(t, m, key(tea.KeyTab))
	if m.list.kind != models.KindFlight {
		t.Errorf("kind = %s", m.list.kind)
	}
	press(t, m, key(tea.KeyTab))
	if m.list.kind != models.KindClient {
		t.Errorf("kind = %s", m.list.kind)
	}
}

func TestEditFlightKeepsSeconds(t *testing.T) {
	svc, _ := testutil.TestService(t)
	ctx := context.Background()
	c := addClient(t, svc, "John Doe")
	a, err := svc.AddAirline(ctx, models.Airline{CompanyName: "Air Test"})
	if err != nil {
		t.Fatal(err)
	}
	fl, err := svc.AddFlight(ctx, models.Flight{
		ClientID:    c.ID,
		AirlineID:   a.ID,
		Departure:   time.Date(2025, 3, 15, 19, 4, 10, 0, time.UTC),
		Arrival:     time.Date(2025, 3, 15, 19, 4, 30, 0, time.UTC),
		Origin:      "London",
		Destination: "Paris",
	})
	if err != nil {
		t.Fatal(err)
	}
	m := New(ctx, svc, testutil.QuietLogger())

	press(t, m, runes("3"), runes("e"))
	form, ok := m.active.(*formView)
	if !ok {
		t.Fatal("edit form not opened")
	}
	want := fl.Departure.Local().Format("2006-01-02 15:04:05")
	for _, f := range form.fields {
		if f.key == "date" && string(f.value) != want {
			t.Errorf("prefilled date = %q, want %q", string(f.value), want)
		}
	}

	press(t, m, key(tea.KeyEnter))
	if _, ok := m.active.(*listView); !ok {
		t.Fatalf("unchanged flight not saved:\n%s", m.View())
	}
	got, _ := svc.GetFlight(ctx, fl.ID)
	if !got.Departure.Equal(fl.Departure) || !got.Arrival.Equal(fl.Arrival) {
		t.Errorf("times = %v / %v, want %v / %v", got.Departure, got.Arrival, fl.Departure, fl.Arrival)
	}
}

func TestFlightFormRejectsBadNumbers(t *testing.T) {
	m, svc := testModel(t)

	press(t, m, runes("3"), runes("a"), runes("x"), key(tea.KeyEnter))
	form, ok := m.active.(*formView)
	if !ok {
		t.Fatal("form closed")
	}
	if msg := form.errs["client_id"]; msg != "must be a whole number" {
		t.Errorf("client_id error = %q", msg)
	}
	if n := len(svc.ListFlights(context.Background())); n != 0 {
		t.Errorf("flights = %d", n)
	}
}

func TestReloadedMsgRefreshesList(t *testing.T) {
	svc, store := testutil.TestService(t)
	m := New(context.Background(), svc, testutil.QuietLogger())

	external := `{"next_id": 2, "records": [{"id": 1, "name": "Outside Edit", "country": "NO"}]}`
	if err := os.WriteFile(filepath.Join(store.Root(), "clients.json"), []byte(external), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Reload(context.Background(), "clients.json"); err != nil {
		t.Fatal(err)
	}

	press(t, m, ReloadedMsg{Kind: models.KindClient})
	if !strings.Contains(m.View(), "Outside Edit") {
		t.Errorf("view:\n%s", m.View())
	}
	if !strings.Contains(m.list.status, "Clients changed on disk") {
		t.Errorf("status = %q", m.list.status)
	}
}

func TestQuit(t *testing.T) {
	m, _ := testModel(t)
	if !press(t, m, runes("q")) {
		t.Error("q did not quit")
	}
}
