package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/canvas/event"
	"github.com/drake/canvas/menu"
	"github.com/drake/canvas/render"
)

// Submitter accepts raw events; *listener.Listener satisfies it.
type Submitter interface {
	Submit(ev event.Event)
}

// Model is the bubbletea model of one local viewer. Keys become click and
// close events; the listener's outcome comes back as a MenuMsg.
type Model struct {
	viewer menu.Viewer
	events Submitter
	grid   *render.Grid
	keys   keyMap
	help   help.Model

	menu     *menu.Menu
	cursor   menu.Item
	selected int
	status   string

	width    int
	quitting bool
}

// NewModel creates a model submitting events for viewer.
func NewModel(viewer menu.Viewer, events Submitter, grid *render.Grid) Model {
	if grid == nil {
		grid = render.New(nil)
	}
	return Model{
		viewer: viewer,
		events: events,
		grid:   grid,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case MenuMsg:
		if msg.Menu != m.menu {
			m.selected = 0
		}
		m.menu = msg.Menu
		m.cursor = msg.Cursor
		if m.selected >= m.menu.Size() {
			m.selected = 0
		}
		return m, nil

	case BlankMsg:
		m.menu = nil
		return m, nil

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.menu == nil {
		return m, nil
	}

	dim := m.menu.Dimensions()
	row, col := m.selected/dim.Columns, m.selected%dim.Columns
	switch {
	case key.Matches(msg, m.keys.Up):
		row = max(row-1, 0)
	case key.Matches(msg, m.keys.Down):
		row = min(row+1, dim.Rows-1)
	case key.Matches(msg, m.keys.Left):
		col = max(col-1, 0)
	case key.Matches(msg, m.keys.Right):
		col = min(col+1, dim.Columns-1)
	case key.Matches(msg, m.keys.Close):
		m.events.Submit(event.NewClose(m.viewer, m.menu))
		return m, nil
	default:
		for _, cb := range m.keys.clickBindings() {
			if key.Matches(msg, cb.binding) {
				m.events.Submit(event.NewClick(m.viewer, m.menu, m.selected, cb.click))
				m.status = cb.click.String()
				return m, nil
			}
		}
		return m, nil
	}
	m.selected = row*dim.Columns + col
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.menu == nil {
		b.WriteString("(no menu open)\n")
	} else {
		b.WriteString(m.grid.Render(m.menu, render.Options{
			Selected: m.selected,
			Cursor:   m.cursor,
			Status:   m.status,
		}))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Selected returns the highlighted slot index.
func (m Model) Selected() int { return m.selected }
