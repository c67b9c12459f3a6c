package main

import (
	"fmt"
	"log/slog"

	"github.com/drake/canvas/item"
	"github.com/drake/canvas/menu"
	"github.com/drake/canvas/script"
)

// Built-in handlers, used when the loaded script does not register its own
// under the same name.
var builtinHandlers = map[string]string{
	"buy": `return function(viewer, click)
  local ware = click:item()
  if ware == nil then
    return
  end
  canvas.log(viewer .. " buys " .. ware)
  click:allow()
end`,
	"sell": `return function(viewer, click)
  click:substitute("emerald", 2)
end`,
	"locked": `return function(viewer, click)
  click:cancel()
end`,
}

// demo is the menu hierarchy served to every viewer: a shop chest and a
// confirmation box that falls back to the shop when closed.
type demo struct {
	shop    *menu.Menu
	confirm *menu.Menu
}

// buildDemo creates the demo menus drawn on display, binding Lua handlers
// from engine.
func buildDemo(display menu.Display, engine *script.Engine, logger *slog.Logger) (*demo, error) {
	shop, err := menu.ChestMenu(3).Title("Shop").Display(display).Logger(logger).Build()
	if err != nil {
		return nil, fmt.Errorf("shop menu: %w", err)
	}
	confirm, err := menu.BoxMenu().Title("Confirm").Parent(shop).Display(display).Logger(logger).Build()
	if err != nil {
		return nil, fmt.Errorf("confirm menu: %w", err)
	}

	buy, err := handler(engine, "buy")
	if err != nil {
		return nil, err
	}
	sell, err := handler(engine, "sell")
	if err != nil {
		return nil, err
	}
	locked, err := handler(engine, "locked")
	if err != nil {
		return nil, err
	}

	// Wares: picking one up takes it.
	for i, ware := range []item.Stack{item.New("diamond", 1), item.New("emerald", 16), item.New("gold", 8)} {
		slot, _ := shop.Slot(10 + 2*i)
		slot.SetItem(ware)
		slot.SetClickOptions(menu.NewClickOptions(menu.PickUp))
		slot.SetClickHandler(buy)
	}

	// The checkout chest opens the confirmation box.
	checkout, _ := shop.Slot(22)
	checkout.SetItem(item.New("chest", 1))
	checkout.SetClickOptions(menu.AllowAll)
	checkout.SetClickHandler(func(v menu.Viewer, click *menu.ClickInformation) {
		confirm.Open(v)
	})

	// A free slot anything can be put into or taken from.
	free, _ := confirm.Slot(4)
	free.SetClickOptions(menu.AllowAll)

	sellSlot, _ := confirm.Slot(2)
	sellSlot.SetItem(item.New("hopper", 1))
	sellSlot.SetClickOptions(menu.NewClickOptions(menu.PickUp, menu.Place))
	sellSlot.SetClickHandler(sell)

	barrier, _ := confirm.Slot(6)
	barrier.SetItem(item.New("barrier", 1))
	barrier.SetClickOptions(menu.AllowAll)
	barrier.SetClickHandler(locked)

	return &demo{shop: shop, confirm: confirm}, nil
}

// handler prefers a handler the loaded script registered under name.
func handler(engine *script.Engine, name string) (menu.ClickHandler, error) {
	if h, err := engine.Named(name); err == nil {
		return h, nil
	}
	h, err := engine.Handler(builtinHandlers[name])
	if err != nil {
		return nil, fmt.Errorf("handler %s: %w", name, err)
	}
	return h, nil
}
