package action

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// luaRunner owns the single Lua state backing scripted actions. The
// state is not goroutine-safe; like every window mutation, Lua calls
// happen only on the UI goroutine.
type luaRunner struct {
	L      *lua.LState
	chunks map[string]*lua.LFunction
}

func newLuaRunner() *luaRunner {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	// Base plus the safe libraries. io, os, debug, and package stay
	// closed: scripted actions drive windows, not the system.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load"} {
		L.SetGlobal(name, lua.LNil)
	}

	return &luaRunner{L: L, chunks: make(map[string]*lua.LFunction)}
}

func (lr *luaRunner) register(name, source string) error {
	fn, err := lr.L.LoadString(source)
	if err != nil {
		return fmt.Errorf("lua action %q: %w", name, err)
	}
	lr.chunks[name] = fn
	return nil
}

func (lr *luaRunner) has(name string) bool {
	_, ok := lr.chunks[name]
	return ok
}

func (lr *luaRunner) names() []string {
	names := make([]string, 0, len(lr.chunks))
	for name := range lr.chunks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// call binds the context into the `win` and `log` globals and runs
// the chunk.
func (lr *luaRunner) call(name string, ctx *Context) error {
	fn, ok := lr.chunks[name]
	if !ok {
		return &UnknownActionError{Name: name}
	}

	lr.L.SetGlobal("win", lr.windowTable(ctx))
	lr.L.SetGlobal("log", lr.logTable(ctx))

	lr.L.Push(fn)
	if err := lr.L.PCall(0, 0, nil); err != nil {
		return fmt.Errorf("lua action %q: %w", name, err)
	}
	return nil
}

func (lr *luaRunner) close() {
	lr.L.Close()
}

// windowTable exposes the focused window to a chunk. With no focused
// window the functions are no-ops so scripts stay total.
func (lr *luaRunner) windowTable(ctx *Context) *lua.LTable {
	t := lr.L.NewTable()

	lr.L.SetField(t, "write", lr.L.NewFunction(func(L *lua.LState) int {
		if ctx.Window != nil {
			ctx.Window.WriteLine(L.CheckString(1))
		}
		return 0
	}))
	lr.L.SetField(t, "scroll", lr.L.NewFunction(func(L *lua.LState) int {
		if ctx.Window != nil {
			ctx.Window.Scroll(L.CheckInt(1))
		}
		return 0
	}))
	lr.L.SetField(t, "scroll_to", lr.L.NewFunction(func(L *lua.LState) int {
		if ctx.Window != nil {
			ctx.Window.ScrollTo(L.CheckInt(1))
		}
		return 0
	}))
	lr.L.SetField(t, "clear", lr.L.NewFunction(func(L *lua.LState) int {
		if ctx.Window != nil {
			ctx.Window.Clear()
		}
		return 0
	}))
	lr.L.SetField(t, "title", lr.L.NewFunction(func(L *lua.LState) int {
		title := ""
		if ctx.Window != nil {
			title = ctx.Window.Title()
		}
		L.Push(lua.LString(title))
		return 1
	}))
	lr.L.SetField(t, "page_size", lr.L.NewFunction(func(L *lua.LState) int {
		size := 0
		if ctx.Window != nil {
			size = ctx.Window.PageSize()
		}
		L.Push(lua.LNumber(size))
		return 1
	}))

	return t
}

// logTable routes script logging through the bridge like any other
// log call.
func (lr *luaRunner) logTable(ctx *Context) *lua.LTable {
	t := lr.L.NewTable()

	levels := map[string]func(string, ...any){
		"debug": ctx.Logger().Debug,
		"info":  ctx.Logger().Info,
		"warn":  ctx.Logger().Warn,
		"error": ctx.Logger().Error,
	}
	for name, logFn := range levels {
		fn := logFn
		lr.L.SetField(t, name, lr.L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), "source", "lua")
			return 0
		}))
	}

	return t
}
