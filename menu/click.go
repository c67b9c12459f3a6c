package menu

import (
	"fmt"
	"strings"
)

// ClickType identifies the category of an interaction with a slot.
type ClickType int

const (
	PickUp    ClickType = iota // Take the slot's item onto the cursor
	Place                      // Put the cursor item into the slot
	Drop                       // Throw the slot's item away
	Swap                       // Exchange cursor and slot items
	NumberKey                  // Hotbar number key pressed over the slot
	Clone                      // Creative-style copy of the slot's item
	Other                      // Anything the transport cannot classify

	numClickTypes
)

var clickTypeNames = [numClickTypes]string{
	PickUp:    "pickup",
	Place:     "place",
	Drop:      "drop",
	Swap:      "swap",
	NumberKey: "numberkey",
	Clone:     "clone",
	Other:     "other",
}

func (t ClickType) String() string {
	if t < 0 || t >= numClickTypes {
		return fmt.Sprintf("ClickType(%d)", int(t))
	}
	return clickTypeNames[t]
}

// Valid reports whether t is one of the known categories.
func (t ClickType) Valid() bool {
	return t >= 0 && t < numClickTypes
}

// ClickTypes returns every known category in declaration order.
func ClickTypes() []ClickType {
	types := make([]ClickType, numClickTypes)
	for i := range types {
		types[i] = ClickType(i)
	}
	return types
}

// ParseClickType maps a category name (case-insensitive) to its ClickType.
// "pick-up", "pick_up" and "hotbar" are accepted as aliases.
func ParseClickType(s string) (ClickType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.NewReplacer("-", "", "_", "").Replace(name)
	if name == "hotbar" {
		return NumberKey, nil
	}
	for i, n := range clickTypeNames {
		if n == name {
			return ClickType(i), nil
		}
	}
	return Other, fmt.Errorf("unknown click type %q", s)
}

// ClickOptions is an immutable set of permitted click categories.
// It is a comparable value, so many slots can share one safely and
// two options are equal exactly when they permit the same categories.
type ClickOptions struct {
	allowed uint8
}

var (
	// AllowAll permits every category.
	AllowAll = NewClickOptions(ClickTypes()...)

	// DenyAll permits nothing. Fresh slots start with it.
	DenyAll = ClickOptions{}
)

// NewClickOptions builds options permitting exactly the given categories.
// Unknown categories are ignored.
func NewClickOptions(types ...ClickType) ClickOptions {
	return ClickOptions{}.Allow(types...)
}

// Allow returns a copy of o that additionally permits types.
func (o ClickOptions) Allow(types ...ClickType) ClickOptions {
	for _, t := range types {
		if t.Valid() {
			o.allowed |= 1 << uint(t)
		}
	}
	return o
}

// Deny returns a copy of o that no longer permits types.
func (o ClickOptions) Deny(types ...ClickType) ClickOptions {
	for _, t := range types {
		if t.Valid() {
			o.allowed &^= 1 << uint(t)
		}
	}
	return o
}

// Permits reports whether the category is allowed. Unknown categories never are.
func (o ClickOptions) Permits(t ClickType) bool {
	if !t.Valid() {
		return false
	}
	return o.allowed&(1<<uint(t)) != 0
}

// Types lists the permitted categories in declaration order.
func (o ClickOptions) Types() []ClickType {
	var types []ClickType
	for _, t := range ClickTypes() {
		if o.Permits(t) {
			types = append(types, t)
		}
	}
	return types
}

func (o ClickOptions) String() string {
	switch o {
	case AllowAll:
		return "allow-all"
	case DenyAll:
		return "deny-all"
	}
	names := make([]string, 0, numClickTypes)
	for _, t := range o.Types() {
		names = append(names, t.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
