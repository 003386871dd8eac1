package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/travelrec/internal/apperr"
	"github.com/starford/travelrec/internal/models"
	"github.com/starford/travelrec/internal/recordservice"
)

// field is one editable line of a form. Key is the record's JSON field name
// so service validation errors map straight back onto it.
type field struct {
	key      string
	label    string
	value    []rune
	required bool
}

func (f field) text() string { return strings.TrimSpace(string(f.value)) }

// formView edits a single record. id is 0 when adding.
type formView struct {
	svc    *recordservice.Service
	ctx    context.Context
	kind   models.Kind
	id     int
	fields []field
	focus  int
	errs   map[string]string
	err    string
}

// savedMsg tells the list a form stored a record.
type savedMsg struct {
	kind models.Kind
	id   int
	add  bool
}

// cancelledMsg tells the list the form was abandoned.
type cancelledMsg struct{}

func fieldsFor(kind models.Kind) []field {
	switch kind {
	case models.KindClient:
		return []field{
			{key: "name", label: "Name", required: true},
			{key: "address_line_1", label: "Address line 1"},
			{key: "address_line_2", label: "Address line 2"},
			{key: "address_line_3", label: "Address line 3"},
			{key: "city", label: "City"},
			{key: "state", label: "State"},
			{key: "zip_code", label: "Zip code"},
			{key: "country", label: "Country", required: true},
			{key: "phone_number", label: "Phone number"},
			{key: "email", label: "Email"},
		}
	case models.KindAirline:
		return []field{
			{key: "company_name", label: "Company name", required: true},
			{key: "phone_number", label: "Phone number"},
			{key: "email", label: "Email"},
			{key: "fleet_size", label: "Fleet size"},
		}
	default:
		return []field{
			{key: "client_id", label: "Client id", required: true},
			{key: "airline_id", label: "Airline id", required: true},
			{key: "date", label: "Departure", required: true},
			{key: "arrival", label: "Arrival"},
			{key: "start_city", label: "Start city", required: true},
			{key: "end_city", label: "End city", required: true},
			{key: "capacity", label: "Capacity"},
		}
	}
}

func newAddForm(ctx context.Context, svc *recordservice.Service, kind models.Kind) *formView {
	return &formView{svc: svc, ctx: ctx, kind: kind, fields: fieldsFor(kind)}
}

// newEditForm loads the record and fills the form with its values.
func newEditForm(ctx context.Context, svc *recordservice.Service, kind models.Kind, id int) (*formView, error) {
	f := &formView{svc: svc, ctx: ctx, kind: kind, id: id, fields: fieldsFor(kind)}
	var values map[string]string
	switch kind {
	case models.KindClient:
		c, err := svc.GetClient(ctx, id)
		if err != nil {
			return nil, err
		}
		values = map[string]string{
			"name": c.Name, "address_line_1": c.AddressLine1, "address_line_2": c.AddressLine2,
			"address_line_3": c.AddressLine3, "city": c.City, "state": c.State, "zip_code": c.ZipCode,
			"country": c.Country, "phone_number": c.Phone, "email": c.Email,
		}
	case models.KindAirline:
		a, err := svc.GetAirline(ctx, id)
		if err != nil {
			return nil, err
		}
		values = map[string]string{
			"company_name": a.CompanyName, "phone_number": a.Phone, "email": a.Email,
			"fleet_size": strconv.Itoa(a.FleetSize),
		}
	default:
		fl, err := svc.GetFlight(ctx, id)
		if err != nil {
			return nil, err
		}
		values = map[string]string{
			"client_id": strconv.Itoa(fl.ClientID), "airline_id": strconv.Itoa(fl.AirlineID),
			"date": models.FormatTimestamp(fl.Departure), "arrival": models.FormatTimestamp(fl.Arrival),
			"start_city": fl.Origin, "end_city": fl.Destination, "capacity": strconv.Itoa(fl.Capacity),
		}
	}
	for i := range f.fields {
		f.fields[i].value = []rune(values[f.fields[i].key])
	}
	return f, nil
}

func (f *formView) Init() tea.Cmd { return nil }

func (f *formView) Update(msg tea.Msg) (view, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}
	switch key.Type {
	case tea.KeyEsc:
		return f, func() tea.Msg { return cancelledMsg{} }
	case tea.KeyEnter:
		return f.submit()
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % len(f.fields)
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + len(f.fields) - 1) % len(f.fields)
	case tea.KeyBackspace:
		if v := f.fields[f.focus].value; len(v) > 0 {
			f.fields[f.focus].value = v[:len(v)-1]
		}
	case tea.KeyCtrlU:
		f.fields[f.focus].value = nil
	case tea.KeySpace:
		f.fields[f.focus].value = append(f.fields[f.focus].value, ' ')
	case tea.KeyRunes:
		f.fields[f.focus].value = append(f.fields[f.focus].value, key.Runes...)
	}
	return f, nil
}

// submit stores the record. Any error keeps the form open: field errors are
// shown next to their fields, anything else on the form's error line.
func (f *formView) submit() (view, tea.Cmd) {
	f.errs, f.err = nil, ""

	id, err := f.save()
	if err != nil {
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			f.errs = make(map[string]string, len(ve.Fields))
			for _, fe := range ve.Fields {
				f.errs[fe.Field] = fe.Message
			}
			f.focusFirstError()
		}
		f.err = err.Error()
		return f, nil
	}
	msg := savedMsg{kind: f.kind, id: id, add: f.id == 0}
	return f, func() tea.Msg { return msg }
}

func (f *formView) focusFirstError() {
	for i, fl := range f.fields {
		if _, bad := f.errs[fl.key]; bad {
			f.focus = i
			return
		}
	}
}

func (f *formView) value(key string) string {
	for _, fl := range f.fields {
		if fl.key == key {
			return fl.text()
		}
	}
	return ""
}

func (f *formView) save() (int, error) {
	switch f.kind {
	case models.KindClient:
		return f.saveClient()
	case models.KindAirline:
		return f.saveAirline()
	default:
		return f.saveFlight()
	}
}

func (f *formView) saveClient() (int, error) {
	c := models.Client{
		ID:           f.id,
		Name:         f.value("name"),
		AddressLine1: f.value("address_line_1"),
		AddressLine2: f.value("address_line_2"),
		AddressLine3: f.value("address_line_3"),
		City:         f.value("city"),
		State:        f.value("state"),
		ZipCode:      f.value("zip_code"),
		Country:      f.value("country"),
		Phone:        f.value("phone_number"),
		Email:        f.value("email"),
	}
	if f.id == 0 {
		stored, err := f.svc.AddClient(f.ctx, c)
		return stored.ID, err
	}
	_, err := f.svc.UpdateClient(f.ctx, f.id, models.ClientPatch{
		Name: &c.Name, AddressLine1: &c.AddressLine1, AddressLine2: &c.AddressLine2,
		AddressLine3: &c.AddressLine3, City: &c.City, State: &c.State, ZipCode: &c.ZipCode,
		Country: &c.Country, Phone: &c.Phone, Email: &c.Email,
	})
	return f.id, err
}

func (f *formView) saveAirline() (int, error) {
	var p parser
	a := models.Airline{
		ID:          f.id,
		CompanyName: f.value("company_name"),
		Phone:       f.value("phone_number"),
		Email:       f.value("email"),
		FleetSize:   p.parseInt("fleet_size", f.value("fleet_size")),
	}
	if err := p.err(); err != nil {
		return 0, err
	}
	if f.id == 0 {
		stored, err := f.svc.AddAirline(f.ctx, a)
		return stored.ID, err
	}
	_, err := f.svc.UpdateAirline(f.ctx, f.id, models.AirlinePatch{
		CompanyName: &a.CompanyName, Phone: &a.Phone, Email: &a.Email, FleetSize: &a.FleetSize,
	})
	return f.id, err
}

func (f *formView) saveFlight() (int, error) {
	var p parser
	fl := models.Flight{
		ID:          f.id,
		ClientID:    p.parseInt("client_id", f.value("client_id")),
		AirlineID:   p.parseInt("airline_id", f.value("airline_id")),
		Departure:   p.parseTime("date", f.value("date")),
		Arrival:     p.parseTime("arrival", f.value("arrival")),
		Origin:      f.value("start_city"),
		Destination: f.value("end_city"),
		Capacity:    p.parseInt("capacity", f.value("capacity")),
	}
	if err := p.err(); err != nil {
		return 0, err
	}
	if f.id == 0 {
		stored, err := f.svc.AddFlight(f.ctx, fl)
		return stored.ID, err
	}
	patch := models.FlightPatch{
		ClientID: &fl.ClientID, AirlineID: &fl.AirlineID, Departure: &fl.Departure,
		Origin: &fl.Origin, Destination: &fl.Destination, Capacity: &fl.Capacity,
	}
	if fl.Arrival.IsZero() {
		patch.ClearArrival = true
	} else {
		patch.Arrival = &fl.Arrival
	}
	_, err := f.svc.UpdateFlight(f.ctx, f.id, patch)
	return f.id, err
}

// parser converts form text into typed values, collecting a field error for
// each value that does not parse. Empty text is the zero value.
type parser struct {
	fields []apperr.FieldError
}

func (p *parser) parseInt(key, s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		p.fields = append(p.fields, apperr.FieldError{Field: key, Message: "must be a whole number"})
	}
	return n
}

func (p *parser) parseTime(key, s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := models.ParseTimestamp(s)
	if err != nil {
		p.fields = append(p.fields, apperr.FieldError{Field: key, Message: "must be a date such as 2025-03-15 19:04"})
	}
	return t
}

func (p *parser) err() error {
	if len(p.fields) == 0 {
		return nil
	}
	sort.Slice(p.fields, func(i, j int) bool { return p.fields[i].Field < p.fields[j].Field })
	return &apperr.ValidationError{Fields: p.fields}
}

func (f *formView) View() string {
	var b strings.Builder
	if f.id == 0 {
		fmt.Fprintf(&b, "New %s\n\n", f.kind)
	} else {
		fmt.Fprintf(&b, "Edit %s %d\n\n", f.kind, f.id)
	}
	for i, fl := range f.fields {
		cursor := "  "
		if i == f.focus {
			cursor = "> "
		}
		label := fl.label
		if fl.required {
			label += "*"
		}
		fmt.Fprintf(&b, "%s%-16s %s", cursor, label, string(fl.value))
		if i == f.focus {
			b.WriteString("_")
		}
		if msg, bad := f.errs[fl.key]; bad {
			fmt.Fprintf(&b, "  ! %s", msg)
		}
		b.WriteString("\n")
	}
	if f.err != "" && len(f.errs) == 0 {
		fmt.Fprintf(&b, "\nerror: %s\n", f.err)
	}
	b.WriteString("\ntab/shift+tab move  enter save  esc cancel  ctrl+u clear field\n")
	return b.String()
}
