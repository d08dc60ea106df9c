package action

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dshills/termwin/internal/input/key"
)

// Window is the slice of window behavior actions may touch. The
// screen package's Window satisfies it.
type Window interface {
	WriteLine(text string)
	Scroll(delta int)
	ScrollTo(offset int)
	PageSize() int
	Title() string
	Clear()
}

// Context carries what a dispatched action can use: the focused
// window (nil when none is focused), a logger that lands in the log
// bridge, and the stroke that triggered the dispatch.
type Context struct {
	Window Window
	Log    *slog.Logger
	Stroke key.Stroke
}

// Logger returns the context logger, falling back to the process
// default.
func (c *Context) Logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

// Func is a callable action.
type Func func(ctx *Context) error

// Registry maps action identifiers to callables: Go functions
// registered by the application and Lua chunks loaded from
// configuration. Dispatch runs on the UI goroutine only; the mutex
// guards registration against concurrent setup, not concurrent
// dispatch.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
	lua   *luaRunner
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register installs a Go action under name, replacing any previous
// registration.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return fmt.Errorf("register action: empty name")
	}
	if fn == nil {
		return fmt.Errorf("register action %q: nil func", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
	return nil
}

// RegisterLua compiles a Lua chunk and installs it under name. The
// chunk sees `win` and `log` tables bound to the dispatch context.
func (r *Registry) RegisterLua(name, source string) error {
	if name == "" {
		return fmt.Errorf("register lua action: empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lua == nil {
		r.lua = newLuaRunner()
	}
	return r.lua.register(name, source)
}

// Has reports whether an identifier resolves to a callable.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.funcs[name]; ok {
		return true
	}
	return r.lua != nil && r.lua.has(name)
}

// Names returns all registered identifiers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	if r.lua != nil {
		names = append(names, r.lua.names()...)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the action registered under name. The empty
// identifier is the no-op sentinel for unmapped keys and dispatches
// to nothing. Unknown identifiers fail with ErrUnknownAction.
func (r *Registry) Dispatch(name string, ctx *Context) error {
	if name == "" {
		return nil
	}
	if ctx == nil {
		ctx = &Context{}
	}

	r.mu.RLock()
	fn, ok := r.funcs[name]
	lua := r.lua
	r.mu.RUnlock()

	if ok {
		return fn(ctx)
	}
	if lua != nil && lua.has(name) {
		return lua.call(name, ctx)
	}
	return &UnknownActionError{Name: name}
}

// Close releases the embedded Lua state.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lua != nil {
		r.lua.close()
		r.lua = nil
	}
}
