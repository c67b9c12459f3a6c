package session

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/drake/canvas/listener"
	"github.com/drake/canvas/menu"
)

// Compile-time interface checks
var (
	_ menu.Display     = (*Registry)(nil)
	_ listener.Applier = (*Registry)(nil)
)

// Screen is where a transport draws a viewer's menu.
type Screen interface {
	// Render draws m along with the item the viewer is holding.
	Render(m *menu.Menu, cursor menu.Item)
	// Blank is called when the viewer no longer has any menu open.
	Blank()
}

// Session is the transport-side state of one viewer.
type Session struct {
	viewer menu.Viewer
	screen Screen

	mu      sync.Mutex
	current *menu.Menu
	cursor  menu.Item
}

// Viewer returns the viewer the session belongs to.
func (s *Session) Viewer() menu.Viewer { return s.viewer }

// Current returns the menu the viewer has open.
func (s *Session) Current() (*menu.Menu, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != nil
}

// Cursor returns the item the viewer is holding.
func (s *Session) Cursor() menu.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// SetCursor replaces the item the viewer is holding.
func (s *Session) SetCursor(item menu.Item) {
	s.mu.Lock()
	s.cursor = item
	s.mu.Unlock()
}

func (s *Session) redraw() {
	s.mu.Lock()
	screen, m, cursor := s.screen, s.current, s.cursor
	s.mu.Unlock()

	if screen == nil {
		return
	}
	if m == nil {
		screen.Blank()
		return
	}
	screen.Render(m, cursor)
}

// Registry tracks every connected viewer. It is the menu.Display for all
// transports and applies click outcomes to slots and cursors.
type Registry struct {
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Attach registers a viewer with the screen it is drawn on. Attaching an
// existing viewer replaces its screen and keeps its state.
func (r *Registry) Attach(v menu.Viewer, screen Screen) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[v.ID()]; ok {
		s.mu.Lock()
		s.screen = screen
		s.mu.Unlock()
		return s
	}
	s := &Session{viewer: v, screen: screen}
	r.sessions[v.ID()] = s
	return s
}

// Detach forgets a viewer. The caller is expected to have closed its menu.
func (r *Registry) Detach(v menu.Viewer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, v.ID())
}

// Lookup returns the session of v.
func (r *Registry) Lookup(v menu.Viewer) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[v.ID()]
	return s, ok
}

// Sessions returns every session ordered by viewer ID.
func (r *Registry) Sessions() []*Session {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].viewer.ID() < sessions[j].viewer.ID()
	})
	return sessions
}

// session returns the session of v, creating a screenless one for viewers
// that open menus before attaching.
func (r *Registry) session(v menu.Viewer) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[v.ID()]
	if !ok {
		r.logger.Debug("menu shown to unattached viewer", "viewer", v.ID())
		s = &Session{viewer: v}
		r.sessions[v.ID()] = s
	}
	return s
}

// --- menu.Display ---

func (r *Registry) Show(v menu.Viewer, m *menu.Menu) {
	s := r.session(v)
	s.mu.Lock()
	s.current = m
	s.mu.Unlock()
	s.redraw()
}

func (r *Registry) Hide(v menu.Viewer, m *menu.Menu) {
	s, ok := r.Lookup(v)
	if !ok {
		return
	}
	s.mu.Lock()
	if s.current != m {
		s.mu.Unlock()
		return
	}
	s.current = nil
	s.mu.Unlock()
	s.redraw()
}

func (r *Registry) Current(v menu.Viewer) (*menu.Menu, bool) {
	s, ok := r.Lookup(v)
	if !ok {
		return nil, false
	}
	return s.Current()
}

// Refresh redraws m for everyone viewing it.
func (r *Registry) Refresh(m *menu.Menu) {
	for _, s := range r.Sessions() {
		if cur, ok := s.Current(); ok && cur == m {
			s.redraw()
		}
	}
}
