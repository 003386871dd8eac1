package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/travelrec/internal/models"
	"github.com/starford/travelrec/internal/recordservice"
)

type row struct {
	id    int
	cells []string
}

// openFormMsg asks the root model to open a form. id 0 adds a record.
type openFormMsg struct {
	kind models.Kind
	id   int
}

// listView shows the records of one kind with a search box, a selection and
// a pending delete confirmation.
type listView struct {
	svc *recordservice.Service
	ctx context.Context

	kind      models.Kind
	rows      []row
	cursor    int
	query     string
	searching bool
	confirmID int
	status    string
	height    int
}

func newListView(ctx context.Context, svc *recordservice.Service) *listView {
	l := &listView{svc: svc, ctx: ctx, kind: models.KindClient}
	l.refresh()
	return l
}

func (l *listView) Init() tea.Cmd { return nil }

func (l *listView) Update(msg tea.Msg) (view, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}
	switch {
	case l.confirmID > 0:
		return l.updateConfirm(key)
	case l.searching:
		return l.updateSearch(key)
	}

	switch key.String() {
	case "q", "ctrl+c":
		return l, tea.Quit
	case "1", "2", "3":
		n, _ := strconv.Atoi(key.String())
		l.switchKind(models.Kinds[n-1])
	case "tab":
		l.switchKind(nextKind(l.kind))
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.rows)-1 {
			l.cursor++
		}
	case "/":
		l.searching = true
	case "a":
		msg := openFormMsg{kind: l.kind}
		return l, func() tea.Msg { return msg }
	case "enter", "e":
		if id, ok := l.selected(); ok {
			msg := openFormMsg{kind: l.kind, id: id}
			return l, func() tea.Msg { return msg }
		}
	case "d":
		if id, ok := l.selected(); ok {
			l.confirmID = id
			l.status = fmt.Sprintf("Delete %s %d? (y/n)", l.kind, id)
		}
	case "r":
		changed, err := l.svc.ReloadAll(l.ctx)
		switch {
		case err != nil:
			l.status = "reload failed: " + err.Error()
		case changed:
			l.status = "reloaded from disk"
		default:
			l.status = "no changes on disk"
		}
		l.refresh()
	}
	return l, nil
}

func (l *listView) updateConfirm(key tea.KeyMsg) (view, tea.Cmd) {
	switch key.String() {
	case "y", "Y":
		id := l.confirmID
		l.confirmID = 0
		if err := l.delete(id); err != nil {
			l.status = "delete failed: " + err.Error()
		} else {
			l.status = fmt.Sprintf("%s %d deleted", l.kind, id)
		}
		l.refresh()
	case "n", "N", "esc":
		l.confirmID = 0
		l.status = "delete cancelled"
	}
	return l, nil
}

func (l *listView) updateSearch(key tea.KeyMsg) (view, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		l.searching = false
		return l, nil
	case tea.KeyEsc:
		l.searching = false
		l.query = ""
	case tea.KeyBackspace:
		if r := []rune(l.query); len(r) > 0 {
			l.query = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		l.query += " "
	case tea.KeyRunes:
		l.query += string(key.Runes)
	default:
		return l, nil
	}
	l.cursor = 0
	l.refresh()
	return l, nil
}

func (l *listView) delete(id int) error {
	switch l.kind {
	case models.KindClient:
		return l.svc.DeleteClient(l.ctx, id)
	case models.KindAirline:
		return l.svc.DeleteAirline(l.ctx, id)
	default:
		return l.svc.DeleteFlight(l.ctx, id)
	}
}

func (l *listView) switchKind(k models.Kind) {
	if k == l.kind {
		return
	}
	l.kind = k
	l.cursor = 0
	l.query = ""
	l.status = ""
	l.refresh()
}

// selectByID moves the cursor onto id when it is listed.
func (l *listView) selectByID(id int) {
	for i, r := range l.rows {
		if r.id == id {
			l.cursor = i
			return
		}
	}
}

func (l *listView) selected() (int, bool) {
	if l.cursor < 0 || l.cursor >= len(l.rows) {
		return 0, false
	}
	return l.rows[l.cursor].id, true
}

// refresh reloads the rows of the active kind through the current search.
func (l *listView) refresh() {
	rows, err := l.load()
	if err != nil {
		l.status = "search failed: " + err.Error()
		return
	}
	l.rows = rows
	if l.cursor >= len(l.rows) {
		l.cursor = len(l.rows) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *listView) load() ([]row, error) {
	var rows []row
	switch l.kind {
	case models.KindClient:
		clients, err := l.svc.SearchClients(l.ctx, l.query)
		if err != nil {
			return nil, err
		}
		for _, c := range clients {
			rows = append(rows, row{id: c.ID, cells: []string{
				strconv.Itoa(c.ID), c.Name, c.City, c.Country, c.Phone, c.Email,
			}})
		}
	case models.KindAirline:
		airlines, err := l.svc.SearchAirlines(l.ctx, l.query)
		if err != nil {
			return nil, err
		}
		for _, a := range airlines {
			rows = append(rows, row{id: a.ID, cells: []string{
				strconv.Itoa(a.ID), a.CompanyName, a.Phone, a.Email, strconv.Itoa(a.FleetSize),
			}})
		}
	default:
		flights, err := l.svc.SearchFlights(l.ctx, l.query)
		if err != nil {
			return nil, err
		}
		for _, f := range flights {
			rows = append(rows, row{id: f.ID, cells: []string{
				strconv.Itoa(f.ID),
				models.FormatTimestamp(f.Departure),
				models.FormatTimestamp(f.Arrival),
				f.Origin,
				f.Destination,
				l.svc.ClientName(l.ctx, f.ClientID),
				l.svc.AirlineName(l.ctx, f.AirlineID),
				strconv.Itoa(f.Capacity),
			}})
		}
	}
	return rows, nil
}

func columns(kind models.Kind) []string {
	switch kind {
	case models.KindClient:
		return []string{"ID", "NAME", "CITY", "COUNTRY", "PHONE", "EMAIL"}
	case models.KindAirline:
		return []string{"ID", "COMPANY", "PHONE", "EMAIL", "FLEET"}
	default:
		return []string{"ID", "DEPARTURE", "ARRIVAL", "FROM", "TO", "CLIENT", "AIRLINE", "CAPACITY"}
	}
}

func nextKind(k models.Kind) models.Kind {
	for i, kind := range models.Kinds {
		if kind == k {
			return models.Kinds[(i+1)%len(models.Kinds)]
		}
	}
	return models.KindClient
}

// detail describes the relations of the selected record.
func (l *listView) detail() string {
	id, ok := l.selected()
	if !ok {
		return ""
	}
	var flights []models.Flight
	var err error
	switch l.kind {
	case models.KindClient:
		flights, err = l.svc.ClientBookings(l.ctx, id)
	case models.KindAirline:
		flights, err = l.svc.AirlineFlights(l.ctx, id)
	default:
		return ""
	}
	if err != nil || len(flights) == 0 {
		return "no flights"
	}
	ids := make([]string, len(flights))
	for i, f := range flights {
		ids[i] = strconv.Itoa(f.ID)
	}
	return "flights: " + strings.Join(ids, ", ")
}

// window returns the range of rows that fits the terminal height.
func (l *listView) window() (int, int) {
	visible := l.height - 10
	if l.height == 0 || visible >= len(l.rows) {
		return 0, len(l.rows)
	}
	if visible < 1 {
		visible = 1
	}
	start := l.cursor - visible/2
	if start < 0 {
		start = 0
	}
	if start+visible > len(l.rows) {
		start = len(l.rows) - visible
	}
	return start, start + visible
}

func (l *listView) View() string {
	var b strings.Builder

	for i, k := range models.Kinds {
		label := fmt.Sprintf("%d %s", i+1, k.Plural())
		if k == l.kind {
			label = "[" + label + "]"
		} else {
			label = " " + label + " "
		}
		b.WriteString(label + "  ")
	}
	b.WriteString("\n\n")

	if l.searching || l.query != "" {
		fmt.Fprintf(&b, "Search: %s", l.query)
		if l.searching {
			b.WriteString("_")
		}
		b.WriteString("\n\n")
	}

	if len(l.rows) == 0 {
		fmt.Fprintf(&b, "  no %s\n", strings.ToLower(l.kind.Plural()))
	} else {
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  %s\n", strings.Join(columns(l.kind), "\t"))
		start, end := l.window()
		for i := start; i < end; i++ {
			marker := "  "
			if i == l.cursor {
				marker = "> "
			}
			fmt.Fprintf(tw, "%s%s\n", marker, strings.Join(l.rows[i].cells, "\t"))
		}
		_ = tw.Flush()
	}

	if d := l.detail(); d != "" {
		fmt.Fprintf(&b, "\n%s\n", d)
	}
	if l.status != "" {
		fmt.Fprintf(&b, "\n%s\n", l.status)
	}
	b.WriteString("\n1/2/3 tab switch  up/down select  / search  a add  e edit  d delete  r reload  q quit\n")
	return b.String()
}
