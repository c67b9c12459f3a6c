package ui

import "github.com/drake/canvas/menu"

// MenuMsg redraws the view with m and the held item.
type MenuMsg struct {
	Menu   *menu.Menu
	Cursor menu.Item
}

// BlankMsg tells the view no menu is open.
type BlankMsg struct{}

// StatusMsg replaces the status line.
type StatusMsg string
