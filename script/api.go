package script

import (
	glua "github.com/yuin/gopher-lua"

	"github.com/drake/canvas/menu"
)

// registerAPI creates the global canvas table.
func (e *Engine) registerAPI() {
	e.canvasTable = e.L.NewTable()
	e.L.SetGlobal("canvas", e.canvasTable)

	// canvas.handlers: name -> function(viewer, click), filled in by scripts
	e.L.SetField(e.canvasTable, "handlers", e.L.NewTable())

	// canvas.log(msg): writes to the engine logger
	e.L.SetField(e.canvasTable, "log", e.L.NewFunction(func(L *glua.LState) int {
		e.logger.Info(L.CheckString(1), "source", "lua")
		return 0
	}))

	// canvas.click_types: list of every click type name
	types := e.L.NewTable()
	for _, name := range clickTypeNames() {
		types.Append(glua.LString(name))
	}
	e.L.SetField(e.canvasTable, "click_types", types)
}

func clickTypeNames() []string {
	types := menu.ClickTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
