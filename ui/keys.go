package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/drake/canvas/menu"
)

// keyMap holds every binding of the menu view.
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	PickUp    key.Binding
	Place     key.Binding
	Drop      key.Binding
	Swap      key.Binding
	NumberKey key.Binding
	Clone     key.Binding
	Other     key.Binding

	Close key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),

		PickUp:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "pick up")),
		Place:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "place")),
		Drop:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "drop")),
		Swap:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "swap")),
		NumberKey: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "number key")),
		Clone:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clone")),
		Other:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "other")),

		Close: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// clickBindings pairs each click binding with the type it submits.
func (k keyMap) clickBindings() []struct {
	binding key.Binding
	click   menu.ClickType
} {
	return []struct {
		binding key.Binding
		click   menu.ClickType
	}{
		{k.PickUp, menu.PickUp},
		{k.Place, menu.Place},
		{k.Drop, menu.Drop},
		{k.Swap, menu.Swap},
		{k.NumberKey, menu.NumberKey},
		{k.Clone, menu.Clone},
		{k.Other, menu.Other},
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PickUp, k.Place, k.Swap, k.Close, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.PickUp, k.Place, k.Drop, k.Swap},
		{k.NumberKey, k.Clone, k.Other},
		{k.Close, k.Help, k.Quit},
	}
}
