package menu

import "errors"

var (
	// ErrIndexOutOfRange is returned when a slot index falls outside [0, rows*columns).
	ErrIndexOutOfRange = errors.New("slot index out of range")

	// ErrNotViewing is returned by Close when the viewer does not have the menu open.
	ErrNotViewing = errors.New("viewer is not currently viewing menu")

	// ErrInvalidDimensions is returned at build time for non-positive rows or columns.
	ErrInvalidDimensions = errors.New("invalid menu dimensions")

	// ErrReadOnly is returned by write attempts through an Inventory view.
	ErrReadOnly = errors.New("inventory view is read-only")
)
