package menu

import "fmt"

// Item is the opaque content payload of a slot. A nil Item is an empty slot.
type Item any

// Describe renders an item for display. Empty slots render as "".
func Describe(item Item) string {
	switch v := item.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Outcome is what the transport should do with the interaction once mediation ends.
type Outcome int

const (
	Cancel     Outcome = iota // Suppress the interaction entirely
	Allow                     // Let the transport apply its natural effect
	Substitute                // Replace the slot's content with ClickInformation.Result
)

func (o Outcome) String() string {
	switch o {
	case Cancel:
		return "cancel"
	case Allow:
		return "allow"
	case Substitute:
		return "substitute"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// ClickInformation describes one interaction and carries the outcome
// a click handler declares. A fresh value is built for every event.
type ClickInformation struct {
	Type ClickType

	viewer  Viewer
	menu    *Menu
	slot    *Slot
	outcome Outcome
	result  Item
}

func newClickInformation(v Viewer, m *Menu, s *Slot, t ClickType) *ClickInformation {
	return &ClickInformation{
		Type:    t,
		viewer:  v,
		menu:    m,
		slot:    s,
		outcome: Cancel,
	}
}

// Viewer returns who performed the click.
func (c *ClickInformation) Viewer() Viewer { return c.viewer }

// Menu returns the clicked menu.
func (c *ClickInformation) Menu() *Menu { return c.menu }

// Slot returns the clicked slot.
func (c *ClickInformation) Slot() *Slot { return c.slot }

// Allow lets the interaction proceed as the transport would naturally apply it.
func (c *ClickInformation) Allow() {
	c.outcome = Allow
	c.result = nil
}

// Cancel suppresses the interaction.
func (c *ClickInformation) Cancel() {
	c.outcome = Cancel
	c.result = nil
}

// Substitute replaces the slot's resulting content with item.
func (c *ClickInformation) Substitute(item Item) {
	c.outcome = Substitute
	c.result = item
}

// Outcome returns the currently declared outcome.
func (c *ClickInformation) Outcome() Outcome { return c.outcome }

// Result returns the substituted item. It is only meaningful for Substitute.
func (c *ClickInformation) Result() Item { return c.result }

func (c *ClickInformation) String() string {
	if c.outcome == Substitute {
		return fmt.Sprintf("%s@%d -> substitute(%s)", c.Type, c.slot.Index(), Describe(c.result))
	}
	return fmt.Sprintf("%s@%d -> %s", c.Type, c.slot.Index(), c.outcome)
}
