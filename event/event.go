package event

import (
	"fmt"

	"github.com/drake/canvas/menu"
)

// Type identifies what a raw transport event reports.
type Type int

const (
	Click      Type = iota // Viewer clicked a slot
	Close                  // Viewer closed the menu on their side
	Disconnect             // Viewer went away entirely
)

func (t Type) String() string {
	switch t {
	case Click:
		return "click"
	case Close:
		return "close"
	case Disconnect:
		return "disconnect"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Event is the raw packet a transport hands to the listener.
type Event struct {
	Type   Type
	Viewer menu.Viewer
	Menu   *menu.Menu     // Menu the transport believes the viewer is looking at
	Slot   int            // Click only
	Click  menu.ClickType // Click only
}

// NewClick builds a click event.
func NewClick(v menu.Viewer, m *menu.Menu, slot int, click menu.ClickType) Event {
	return Event{Type: Click, Viewer: v, Menu: m, Slot: slot, Click: click}
}

// NewClose builds a close event.
func NewClose(v menu.Viewer, m *menu.Menu) Event {
	return Event{Type: Close, Viewer: v, Menu: m}
}

// NewDisconnect builds a disconnect event.
func NewDisconnect(v menu.Viewer) Event {
	return Event{Type: Disconnect, Viewer: v}
}
