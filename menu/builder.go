package menu

import (
	"fmt"
	"log/slog"
)

// MaxSlots bounds rows*columns of a single menu.
const MaxSlots = 1 << 16

// Builder collects the settings of a Menu before it exists.
type Builder struct {
	dim     Dimension
	title   string
	parent  *Menu
	display Display
	logger  *slog.Logger
	err     error
}

// NewBuilder starts a menu with the given shape.
func NewBuilder(rows, columns int) *Builder {
	return &Builder{dim: Dimension{Rows: rows, Columns: columns}}
}

// ChestMenu starts a chest-shaped menu: rows of nine, one to six rows.
func ChestMenu(rows int) *Builder {
	b := NewBuilder(rows, 9)
	if rows > 6 {
		b.err = fmt.Errorf("chest menu with %d rows: %w", rows, ErrInvalidDimensions)
	}
	return b
}

// HopperMenu starts a single row of five slots.
func HopperMenu() *Builder {
	return NewBuilder(1, 5)
}

// BoxMenu starts a three by three menu.
func BoxMenu() *Builder {
	return NewBuilder(3, 3)
}

// Title sets the display title.
func (b *Builder) Title(title string) *Builder {
	b.title = title
	return b
}

// Parent sets the fallback menu.
func (b *Builder) Parent(parent *Menu) *Builder {
	b.parent = parent
	return b
}

// Display sets the transport that shows the menu. Open keeps a viewer to one
// menu only among menus sharing a Display. Without one the menu uses its
// parent's Display, or a new NewTrackingDisplay for a root menu; the tracking
// display lives as long as the menus using it.
func (b *Builder) Display(d Display) *Builder {
	b.display = d
	return b
}

// Logger sets the diagnostic sink for handler failures.
func (b *Builder) Logger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Build validates the settings and creates the menu.
func (b *Builder) Build() (*Menu, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.dim.Rows <= 0 || b.dim.Columns <= 0 {
		return nil, fmt.Errorf("build menu %s: %w", b.dim, ErrInvalidDimensions)
	}
	if b.dim.Rows > MaxSlots/b.dim.Columns {
		return nil, fmt.Errorf("build menu %s: more than %d slots: %w", b.dim, MaxSlots, ErrInvalidDimensions)
	}

	m := &Menu{
		title:   b.title,
		dim:     b.dim,
		parent:  b.parent,
		display: b.display,
		logger:  b.logger,
		viewers: make(map[string]Viewer),
	}
	if m.display == nil {
		if m.parent != nil {
			m.display = m.parent.display
		} else {
			m.display = NewTrackingDisplay()
		}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	m.slots = make([]*Slot, b.dim.Size())
	for i := range m.slots {
		m.slots[i] = newSlot(m, i)
	}
	return m, nil
}
