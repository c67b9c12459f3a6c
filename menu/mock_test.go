package menu

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
)

type mockViewer string

func (v mockViewer) ID() string { return string(v) }

// mockDisplay records Show/Hide calls and tracks the current menu per viewer.
type mockDisplay struct {
	mu      sync.Mutex
	current map[string]*Menu
	shown   []string
	hidden  []string
}

func newMockDisplay() *mockDisplay {
	return &mockDisplay{current: make(map[string]*Menu)}
}

func (d *mockDisplay) Show(v Viewer, m *Menu) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current[v.ID()] = m
	d.shown = append(d.shown, v.ID()+":"+m.Title())
}

func (d *mockDisplay) Hide(v Viewer, m *Menu) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current[v.ID()] == m {
		delete(d.current, v.ID())
	}
	d.hidden = append(d.hidden, v.ID()+":"+m.Title())
}

func (d *mockDisplay) Current(v Viewer) (*Menu, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.current[v.ID()]
	return m, ok
}

// newTestMenu builds a menu wired to a fresh mock display and a buffered logger.
func newTestMenu(t *testing.T, rows, columns int) (*Menu, *mockDisplay, *bytes.Buffer) {
	t.Helper()
	display := newMockDisplay()
	var logs bytes.Buffer
	m, err := NewBuilder(rows, columns).
		Title("test").
		Display(display).
		Logger(slog.New(slog.NewTextHandler(&logs, nil))).
		Build()
	if err != nil {
		t.Fatalf("Build(%d, %d): %v", rows, columns, err)
	}
	return m, display, &logs
}
