package menu

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// ClickHandler reacts to a permitted click on a slot. It runs synchronously on
// the goroutine dispatching the event and declares its decision by calling
// Allow, Cancel or Substitute on the ClickInformation. A slow handler stalls
// event processing for every viewer of the listener.
type ClickHandler func(viewer Viewer, click *ClickInformation)

// Slot is one addressable cell of a Menu.
type Slot struct {
	index int
	menu  *Menu

	mu      sync.RWMutex
	item    Item
	options ClickOptions
	handler ClickHandler
}

func newSlot(m *Menu, index int) *Slot {
	return &Slot{
		index:   index,
		menu:    m,
		options: DenyAll,
	}
}

// Index returns the slot's position inside its menu. It never changes.
func (s *Slot) Index() int {
	return s.index
}

// Menu returns the menu owning the slot.
func (s *Slot) Menu() *Menu {
	return s.menu
}

// Item returns the slot's current content, nil when empty.
func (s *Slot) Item() Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.item
}

// SetItem replaces the slot's content. A nil item empties the slot.
func (s *Slot) SetItem(item Item) {
	s.mu.Lock()
	s.item = item
	s.mu.Unlock()
}

// ClickOptions returns the categories the slot permits.
func (s *Slot) ClickOptions() ClickOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options
}

// SetClickOptions replaces the slot's permitted categories.
func (s *Slot) SetClickOptions(options ClickOptions) {
	s.mu.Lock()
	s.options = options
	s.mu.Unlock()
}

// ClickHandler returns the registered handler, if any.
func (s *Slot) ClickHandler() (ClickHandler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler, s.handler != nil
}

// SetClickHandler registers h. A nil handler removes the current one.
func (s *Slot) SetClickHandler(h ClickHandler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// click mediates one interaction against the slot's policy. The policy is
// checked before any handler code runs, so a handler never sees a denied
// category. The lock is released before the handler is called so the handler
// may freely mutate this slot.
func (s *Slot) click(v Viewer, t ClickType) *ClickInformation {
	info := newClickInformation(v, s.menu, s, t)

	s.mu.RLock()
	options, handler := s.options, s.handler
	s.mu.RUnlock()

	if !options.Permits(t) {
		info.Cancel()
		return info
	}
	if handler == nil {
		info.Allow()
		return info
	}

	if err := s.invoke(handler, v, info); err != nil {
		info.Cancel()
		s.menu.logger.Error("click handler failed",
			"menu", s.menu.title,
			"slot", s.index,
			"click", t.String(),
			"viewer", v.ID(),
			"err", err,
		)
	}
	return info
}

// invoke runs the handler and converts a panic into an error.
func (s *Slot) invoke(h ClickHandler, v Viewer, info *ClickInformation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	h(v, info)
	return nil
}
