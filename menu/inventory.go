package menu

import "fmt"

// Inventory is a read-only view of a menu's contents keyed by slot index.
// It reads through to the slots on every call, so it always reflects the
// current state.
type Inventory struct {
	menu *Menu
}

// Size returns the number of slots.
func (inv Inventory) Size() int {
	return len(inv.menu.slots)
}

// Dimensions returns the shape of the underlying menu.
func (inv Inventory) Dimensions() Dimension {
	return inv.menu.dim
}

// Item returns the content at index.
func (inv Inventory) Item(index int) (Item, error) {
	s, err := inv.menu.Slot(index)
	if err != nil {
		return nil, err
	}
	return s.Item(), nil
}

// Items returns the current content of every slot.
func (inv Inventory) Items() []Item {
	items := make([]Item, len(inv.menu.slots))
	for i, s := range inv.menu.slots {
		items[i] = s.Item()
	}
	return items
}

// SetItem always fails: content changes go through the slot.
func (inv Inventory) SetItem(index int, _ Item) error {
	return fmt.Errorf("set slot %d: %w", index, ErrReadOnly)
}

// Clear always fails: content changes go through the menu.
func (inv Inventory) Clear() error {
	return fmt.Errorf("clear: %w", ErrReadOnly)
}
