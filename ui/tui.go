// Package ui is the local terminal transport: one viewer drives menus with
// the keyboard through a bubbletea program.
package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/canvas/event"
	"github.com/drake/canvas/menu"
	"github.com/drake/canvas/render"
	"github.com/drake/canvas/session"
)

// Compile-time interface checks
var (
	_ menu.Viewer    = (*Terminal)(nil)
	_ session.Screen = (*Terminal)(nil)
)

// Terminal is the local viewer and the screen it is drawn on. Render and
// Blank may be called from any goroutine; messages sent before the program
// starts are queued.
type Terminal struct {
	id      string
	events  Submitter
	options []tea.ProgramOption

	mu      sync.Mutex
	program *tea.Program
	pending []tea.Msg
}

// NewTerminal creates the local viewer id.
func NewTerminal(id string, events Submitter, opts ...tea.ProgramOption) *Terminal {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &Terminal{id: id, events: events, options: opts}
}

// ID implements menu.Viewer.
func (t *Terminal) ID() string { return t.id }

// Render implements session.Screen.
func (t *Terminal) Render(m *menu.Menu, cursor menu.Item) {
	t.sendOrQueue(MenuMsg{Menu: m, Cursor: cursor})
}

// Blank implements session.Screen.
func (t *Terminal) Blank() {
	t.sendOrQueue(BlankMsg{})
}

// SetStatus replaces the status line.
func (t *Terminal) SetStatus(text string) {
	t.sendOrQueue(StatusMsg(text))
}

func (t *Terminal) sendOrQueue(msg tea.Msg) {
	t.mu.Lock()
	p := t.program
	if p == nil {
		t.pending = append(t.pending, msg)
	}
	t.mu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

// Run starts the program and blocks until the user quits. The viewer is
// reported disconnected when it returns.
func (t *Terminal) Run() error {
	p := tea.NewProgram(NewModel(t, t.events, render.New(nil)), t.options...)

	t.mu.Lock()
	t.program = p
	msgs := t.pending
	t.pending = nil
	t.mu.Unlock()

	// Send blocks until the event loop starts
	go func() {
		for _, msg := range msgs {
			p.Send(msg)
		}
	}()

	_, err := p.Run()

	t.mu.Lock()
	t.program = nil
	t.mu.Unlock()

	t.events.Submit(event.NewDisconnect(t))
	return err
}

// Quit stops a running program.
func (t *Terminal) Quit() {
	t.mu.Lock()
	p := t.program
	t.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}
