// Package menu implements interactive grid menus: a rectangle of slots, each
// with its own content, click policy and click handler, that any number of
// viewers can have open at once.
//
// Menus do not render anything. A Display shows them to viewers and a
// listener feeds raw clicks into Menu.Click; nothing reacts to clicks until
// such a listener is wired up.
package menu

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Dimension is the row and column count of a menu.
type Dimension struct {
	Rows    int
	Columns int
}

// Size returns the number of slots.
func (d Dimension) Size() int {
	return d.Rows * d.Columns
}

func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.Rows, d.Columns)
}

// Menu is a grid of slots with a viewer set and an optional fallback parent.
type Menu struct {
	title   string
	dim     Dimension
	slots   []*Slot
	parent  *Menu
	display Display
	logger  *slog.Logger

	mu      sync.Mutex
	viewers map[string]Viewer
}

// Title returns the display title.
func (m *Menu) Title() string {
	return m.title
}

// Parent returns the menu to fall back to when this one is closed.
func (m *Menu) Parent() (*Menu, bool) {
	return m.parent, m.parent != nil
}

// Dimensions returns the menu's rows and columns.
func (m *Menu) Dimensions() Dimension {
	return m.dim
}

// Size returns the number of slots.
func (m *Menu) Size() int {
	return len(m.slots)
}

// Open shows the menu to v. If v is looking at a different menu, that menu is
// closed first. Opening an already open menu shows it again.
func (m *Menu) Open(v Viewer) {
	if current, ok := m.display.Current(v); ok && current != m {
		if err := current.Close(v); err != nil {
			m.logger.Debug("closing previous menu", "viewer", v.ID(), "menu", current.title, "err", err)
		}
	}

	m.mu.Lock()
	m.viewers[v.ID()] = v
	m.mu.Unlock()

	m.display.Show(v, m)
}

// Close stops showing the menu to v. It does not open the parent; the caller
// decides whether to fall back to it.
func (m *Menu) Close(v Viewer) error {
	m.mu.Lock()
	if _, ok := m.viewers[v.ID()]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("close %q for %s: %w", m.title, v.ID(), ErrNotViewing)
	}
	delete(m.viewers, v.ID())
	m.mu.Unlock()

	m.display.Hide(v, m)
	return nil
}

// IsViewing reports whether v currently has the menu open.
func (m *Menu) IsViewing(v Viewer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.viewers[v.ID()]
	return ok
}

// Viewers returns the current viewers ordered by ID.
func (m *Menu) Viewers() []Viewer {
	m.mu.Lock()
	viewers := make([]Viewer, 0, len(m.viewers))
	for _, v := range m.viewers {
		viewers = append(viewers, v)
	}
	m.mu.Unlock()

	sort.Slice(viewers, func(i, j int) bool {
		return viewers[i].ID() < viewers[j].ID()
	})
	return viewers
}

// Slot returns the slot at index.
func (m *Menu) Slot(index int) (*Slot, error) {
	if index < 0 || index >= len(m.slots) {
		return nil, fmt.Errorf("slot %d of %s menu: %w", index, m.dim, ErrIndexOutOfRange)
	}
	return m.slots[index], nil
}

// Slots returns every slot in index order.
func (m *Menu) Slots() []*Slot {
	slots := make([]*Slot, len(m.slots))
	copy(slots, m.slots)
	return slots
}

// Clear empties every slot. Options and handlers are kept.
func (m *Menu) Clear() {
	for _, s := range m.slots {
		s.SetItem(nil)
	}
}

// ClearSlot empties the slot at index.
func (m *Menu) ClearSlot(index int) error {
	s, err := m.Slot(index)
	if err != nil {
		return err
	}
	s.SetItem(nil)
	return nil
}

// Inventory returns a live read-only view of the menu's contents.
func (m *Menu) Inventory() Inventory {
	return Inventory{menu: m}
}

// Click dispatches a raw click on index to the slot. It reports false, and
// does nothing, when index does not belong to this menu; transports may
// deliver late events for a menu that has since changed.
func (m *Menu) Click(v Viewer, index int, t ClickType) (*ClickInformation, bool) {
	if index < 0 || index >= len(m.slots) {
		m.logger.Debug("ignoring click outside menu", "menu", m.title, "slot", index, "viewer", v.ID())
		return nil, false
	}
	return m.slots[index].click(v, t), true
}

func (m *Menu) String() string {
	if m.title == "" {
		return "menu(" + m.dim.String() + ")"
	}
	return fmt.Sprintf("menu(%q %s)", m.title, m.dim)
}
