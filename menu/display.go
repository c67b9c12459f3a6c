package menu

import "sync"

// Viewer is the identity of a remote user that can have a menu open.
type Viewer interface {
	ID() string
}

// Display is the transport that actually shows menus to viewers.
// Menu calls it from Open and Close; it never renders anything itself.
type Display interface {
	// Show displays m to v.
	Show(v Viewer, m *Menu)
	// Hide stops displaying m to v.
	Hide(v Viewer, m *Menu)
	// Current returns the menu v is looking at, if any.
	Current(v Viewer) (*Menu, bool)
}

// trackingDisplay only remembers which menu each viewer has open.
type trackingDisplay struct {
	mu      sync.Mutex
	current map[string]*Menu
}

// NewTrackingDisplay returns a Display that shows nothing and only tracks
// which menu each viewer has open. Share one between menus that should close
// each other on Open.
func NewTrackingDisplay() Display {
	return &trackingDisplay{current: make(map[string]*Menu)}
}

func (d *trackingDisplay) Show(v Viewer, m *Menu) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current[v.ID()] = m
}

func (d *trackingDisplay) Hide(v Viewer, m *Menu) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current[v.ID()] == m {
		delete(d.current, v.ID())
	}
}

func (d *trackingDisplay) Current(v Viewer) (*Menu, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.current[v.ID()]
	return m, ok
}
