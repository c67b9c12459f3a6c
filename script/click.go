package script

import (
	glua "github.com/yuin/gopher-lua"

	"github.com/drake/canvas/item"
	"github.com/drake/canvas/menu"
)

const luaClickTypeName = "click"

// registerClickType registers the click userdata type.
func registerClickType(L *glua.LState) {
	mt := L.NewTypeMetatable(luaClickTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), clickMethods))
}

// newClick wraps a ClickInformation for one handler call.
func newClick(L *glua.LState, c *menu.ClickInformation) *glua.LUserData {
	ud := L.NewUserData()
	ud.Value = c
	L.SetMetatable(ud, L.GetTypeMetatable(luaClickTypeName))
	return ud
}

// checkClick retrieves the ClickInformation from the userdata at n.
func checkClick(L *glua.LState, n int) *menu.ClickInformation {
	ud := L.CheckUserData(n)
	if c, ok := ud.Value.(*menu.ClickInformation); ok {
		return c
	}
	L.ArgError(n, "click expected")
	return nil
}

var clickMethods = map[string]glua.LGFunction{
	"type":       clickType,
	"slot":       clickSlot,
	"viewer":     clickViewer,
	"menu":       clickMenu,
	"item":       clickItem,
	"outcome":    clickOutcome,
	"allow":      clickAllow,
	"cancel":     clickCancel,
	"substitute": clickSubstitute,
	"set_item":   clickSetItem,
}

// click:type() -> "pickup", "drop", ...
func clickType(L *glua.LState) int {
	L.Push(glua.LString(checkClick(L, 1).Type.String()))
	return 1
}

// click:slot() -> zero-based slot index
func clickSlot(L *glua.LState) int {
	L.Push(glua.LNumber(checkClick(L, 1).Slot().Index()))
	return 1
}

// click:viewer() -> viewer ID
func clickViewer(L *glua.LState) int {
	L.Push(glua.LString(checkClick(L, 1).Viewer().ID()))
	return 1
}

// click:menu() -> menu title
func clickMenu(L *glua.LState) int {
	L.Push(glua.LString(checkClick(L, 1).Menu().Title()))
	return 1
}

// click:item() -> description of the slot's content, or nil when empty
func clickItem(L *glua.LState) int {
	content := checkClick(L, 1).Slot().Item()
	if content == nil {
		L.Push(glua.LNil)
		return 1
	}
	L.Push(glua.LString(menu.Describe(content)))
	return 1
}

// click:outcome() -> "cancel", "allow" or "substitute"
func clickOutcome(L *glua.LState) int {
	L.Push(glua.LString(checkClick(L, 1).Outcome().String()))
	return 1
}

// click:allow()
func clickAllow(L *glua.LState) int {
	checkClick(L, 1).Allow()
	return 0
}

// click:cancel()
func clickCancel(L *glua.LState) int {
	checkClick(L, 1).Cancel()
	return 0
}

// click:substitute(material [, amount]); no material empties the slot
func clickSubstitute(L *glua.LState) int {
	c := checkClick(L, 1)
	c.Substitute(optItem(L, 2))
	return 0
}

// click:set_item(material [, amount]) changes the slot right away,
// independent of the outcome.
func clickSetItem(L *glua.LState) int {
	c := checkClick(L, 1)
	c.Slot().SetItem(optItem(L, 2))
	return 0
}

// optItem reads an optional (material, amount) pair starting at n.
// A material of the form "name xN" carries its own amount.
func optItem(L *glua.LState, n int) menu.Item {
	if L.Get(n) == glua.LNil {
		return nil
	}
	material := L.CheckString(n)
	if L.Get(n+1) != glua.LNil {
		return item.New(material, L.CheckInt(n+1))
	}
	stack, err := item.Parse(material)
	if err != nil {
		L.ArgError(n, err.Error())
		return nil
	}
	return stack
}
