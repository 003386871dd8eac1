// Package tui is the terminal front-end: one list per record type, add and
// edit forms, search and delete confirmation, all calling the record service
// directly.
package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/travelrec/internal/models"
	"github.com/starford/travelrec/internal/recordservice"
)

// view is the unit of composition: a screen with its own update and render.
type view interface {
	Init() tea.Cmd
	Update(tea.Msg) (view, tea.Cmd)
	View() string
}

// ReloadedMsg reports that a table was re-read after an outside change.
type ReloadedMsg struct {
	Kind models.Kind
}

// ReloadErrorMsg reports a table file that changed but no longer loads.
type ReloadErrorMsg struct {
	Err error
}

// Model is the root Bubble Tea model.
type Model struct {
	svc    *recordservice.Service
	ctx    context.Context
	logger *slog.Logger

	list   *listView
	active view
}

// New builds the root model showing the client list.
func New(ctx context.Context, svc *recordservice.Service, logger *slog.Logger) *Model {
	list := newListView(ctx, svc)
	return &Model{svc: svc, ctx: ctx, logger: logger, list: list, active: list}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case openFormMsg:
		m.openForm(msg)
		return m, nil
	case savedMsg:
		m.active = m.list
		m.list.refresh()
		m.list.selectByID(msg.id)
		verb := "updated"
		if msg.add {
			verb = "added"
		}
		m.list.status = fmt.Sprintf("%s %d %s", msg.kind, msg.id, verb)
		return m, nil
	case cancelledMsg:
		m.active = m.list
		m.list.status = ""
		return m, nil
	case ReloadedMsg:
		m.list.refresh()
		m.list.status = fmt.Sprintf("%s changed on disk, reloaded", msg.Kind.Plural())
		return m, nil
	case ReloadErrorMsg:
		m.list.status = "reload failed: " + msg.Err.Error()
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	m.active = next
	return m, cmd
}

func (m *Model) openForm(msg openFormMsg) {
	if msg.id == 0 {
		m.active = newAddForm(m.ctx, m.svc, msg.kind)
		return
	}
	form, err := newEditForm(m.ctx, m.svc, msg.kind, msg.id)
	if err != nil {
		m.logger.Warn("open edit form", slog.String("kind", msg.kind.String()),
			slog.Int("id", msg.id), slog.String("error", err.Error()))
		m.list.status = err.Error()
		m.list.refresh()
		return
	}
	m.active = form
}

func (m *Model) View() string {
	return m.active.View()
}
