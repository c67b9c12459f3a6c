package session

import "github.com/drake/canvas/menu"

// Apply realizes a finalized click: Allow performs the natural effect of the
// click type on the slot and the viewer's cursor, Substitute writes the
// declared item into the slot, Cancel changes nothing. Everyone viewing the
// menu is redrawn afterwards.
func (r *Registry) Apply(v menu.Viewer, info *menu.ClickInformation) {
	s := r.session(v)

	switch info.Outcome() {
	case menu.Allow:
		natural(s, info.Slot(), info.Type)
	case menu.Substitute:
		info.Slot().SetItem(info.Result())
	case menu.Cancel:
	}

	r.logger.Debug("click applied", "viewer", v.ID(), "click", info.String())
	r.Refresh(info.Menu())

	// The clicking viewer may be looking elsewhere if the handler reopened a menu.
	if cur, ok := s.Current(); !ok || cur != info.Menu() {
		s.redraw()
	}
}

// natural is what a click does when nothing intervenes.
func natural(s *Session, slot *menu.Slot, t menu.ClickType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content := slot.Item()
	switch t {
	case menu.PickUp:
		if s.cursor == nil && content != nil {
			s.cursor = content
			slot.SetItem(nil)
		}
	case menu.Place:
		if s.cursor != nil && content == nil {
			slot.SetItem(s.cursor)
			s.cursor = nil
		}
	case menu.Swap:
		slot.SetItem(s.cursor)
		s.cursor = content
	case menu.Drop:
		slot.SetItem(nil)
	case menu.Clone:
		if content != nil {
			s.cursor = content
		}
	case menu.NumberKey, menu.Other:
	}
}
