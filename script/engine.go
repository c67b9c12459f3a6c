// Package script runs click handlers written in Lua.
//
// A handler is a Lua function taking the viewer ID and a click object:
//
//	return function(viewer, click)
//	  if click:type() == "pickup" then
//	    click:substitute("emerald", 3)
//	  end
//	end
//
// Scripts loaded with DoFile may also register named handlers in the
// canvas.handlers table.
package script

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	glua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/drake/canvas/menu"
)

// protoCacheSize bounds the number of compiled handler chunks kept around.
const protoCacheSize = 128

// Engine wraps gopher-lua and manages the VM lifecycle.
// The Lua state is not goroutine-safe, so every entry point takes mu.
type Engine struct {
	mu     sync.Mutex
	L      *glua.LState
	protos *lru.Cache[string, *glua.FunctionProto]
	logger *slog.Logger

	canvasTable *glua.LTable

	// generation increments on every Init; handlers bound to an older
	// state refuse to run.
	generation int
}

// NewEngine creates an Engine. Call Init before use.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	cache, _ := lru.New[string, *glua.FunctionProto](protoCacheSize)
	return &Engine{
		protos: cache,
		logger: logger,
	}
}

// --- Lifecycle ---

// Init creates (or re-creates) the Lua VM with fresh state and registers the
// canvas API. Handlers created before a re-Init stop working.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.L != nil {
		e.L.Close()
	}
	e.L = glua.NewState()
	e.generation++

	registerClickType(e.L)
	e.registerAPI()
	return nil
}

// Close releases the Lua state.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.L != nil {
		e.L.Close()
		e.L = nil
	}
}

// CachedChunks returns the number of compiled chunks in the cache.
func (e *Engine) CachedChunks() int {
	return e.protos.Len()
}

// --- Execution ---

// DoString executes Lua code. The name is used in error messages.
func (e *Engine) DoString(name, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.L == nil {
		return errNotInitialized
	}
	fn, err := e.L.Load(strings.NewReader(code), name)
	if err != nil {
		return err
	}
	e.L.Push(fn)
	return e.L.PCall(0, 0, nil)
}

// DoFile executes a Lua file, letting it require siblings from its directory.
func (e *Engine) DoFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.L == nil {
		return errNotInitialized
	}

	absPath, err := filepath.Abs(expandTilde(path))
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)

	pkg := e.L.GetGlobal("package").(*glua.LTable)
	oldPath := e.L.GetField(pkg, "path").String()
	e.L.SetField(pkg, "path", glua.LString(dir+"/?.lua;"+oldPath))

	err = e.L.DoFile(absPath)

	e.L.SetField(pkg, "path", glua.LString(oldPath))
	return err
}

// --- Handlers ---

// Handler compiles src, a chunk returning a function, into a ClickHandler.
// Compiled chunks are cached by source text.
func (e *Engine) Handler(src string) (menu.ClickHandler, error) {
	proto, err := e.compile(src)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.L == nil {
		return nil, errNotInitialized
	}
	e.L.Push(e.L.NewFunctionFromProto(proto))
	if err := e.L.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("handler chunk: %w", err)
	}
	ret := e.L.Get(-1)
	e.L.Pop(1)

	fn, ok := ret.(*glua.LFunction)
	if !ok {
		return nil, fmt.Errorf("handler chunk returned %s, want function", ret.Type())
	}
	return e.bind("<inline>", fn), nil
}

// Named returns the handler a loaded script registered as canvas.handlers[name].
func (e *Engine) Named(name string) (menu.ClickHandler, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.L == nil {
		return nil, errNotInitialized
	}
	handlers, ok := e.L.GetField(e.canvasTable, "handlers").(*glua.LTable)
	if !ok {
		return nil, fmt.Errorf("canvas.handlers is not a table")
	}
	fn, ok := e.L.GetField(handlers, name).(*glua.LFunction)
	if !ok {
		return nil, fmt.Errorf("no handler named %q", name)
	}
	return e.bind(name, fn), nil
}

// compile parses and compiles src, consulting the cache first.
func (e *Engine) compile(src string) (*glua.FunctionProto, error) {
	if proto, ok := e.protos.Get(src); ok {
		return proto, nil
	}

	chunk, err := parse.Parse(strings.NewReader(src), "<handler>")
	if err != nil {
		return nil, fmt.Errorf("parse handler: %w", err)
	}
	proto, err := glua.Compile(chunk, "<handler>")
	if err != nil {
		return nil, fmt.Errorf("compile handler: %w", err)
	}
	e.protos.Add(src, proto)
	return proto, nil
}

// bind wraps a Lua function as a ClickHandler. Lua errors are caught with a
// protected call, logged, and leave the click cancelled.
func (e *Engine) bind(name string, fn *glua.LFunction) menu.ClickHandler {
	generation := e.generation

	return func(v menu.Viewer, c *menu.ClickInformation) {
		e.mu.Lock()
		defer e.mu.Unlock()

		if e.L == nil || e.generation != generation {
			c.Cancel()
			e.logger.Warn("lua handler outlived its state", "handler", name)
			return
		}

		err := e.L.CallByParam(glua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, glua.LString(v.ID()), newClick(e.L, c))
		if err != nil {
			c.Cancel()
			e.logger.Error("lua handler failed",
				"handler", name,
				"viewer", v.ID(),
				"slot", c.Slot().Index(),
				"err", err,
			)
		}
	}
}

// expandTilde expands ~ to the home directory.
func expandTilde(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
