package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/dshills/termwin/internal/action"
	"github.com/dshills/termwin/internal/config"
	"github.com/dshills/termwin/internal/input"
	"github.com/dshills/termwin/internal/input/key"
	"github.com/dshills/termwin/internal/logbridge"
	"github.com/dshills/termwin/internal/monitor"
	"github.com/dshills/termwin/internal/screen"
	"github.com/dshills/termwin/internal/screen/backend"
)

// ErrAlreadyRunning reports a Run on a driver that is not idle.
var ErrAlreadyRunning = errors.New("driver already running")

// State is the driver lifecycle phase.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateShuttingDown
	StateStopped
)

// String returns the phase name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StatusFunc receives a task's newest status payload, at most once
// per tick per task, always on the UI goroutine.
type StatusFunc func(taskID string, payload []byte)

// Driver owns the UI goroutine: it polls input, dispatches actions,
// flushes captured logs, applies task status, and repaints, in that
// order every tick. Everything that touches the terminal happens on
// the goroutine that calls Run.
type Driver struct {
	surface  *screen.Surface
	router   *input.Router
	registry *action.Registry
	logs     *logbridge.Bridge
	tasks    *monitor.Bridge
	statusFn StatusFunc
	updates  <-chan config.Config
	log      *slog.Logger
	cfg      config.Config

	state    atomic.Int32
	events   chan backend.Event
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Driver.
type Option func(*Driver)

// WithConfig seeds the driver's configuration.
func WithConfig(cfg config.Config) Option {
	return func(d *Driver) { d.cfg = cfg }
}

// WithLogBridge wires the bridge whose queue the loop flushes each
// tick. The driver installs it when Run starts.
func WithLogBridge(b *logbridge.Bridge) Option {
	return func(d *Driver) { d.logs = b }
}

// WithMonitor wires the task bridge polled for status each tick.
func WithMonitor(b *monitor.Bridge) Option {
	return func(d *Driver) { d.tasks = b }
}

// WithStatusFunc sets the callback that applies task status to the UI.
func WithStatusFunc(fn StatusFunc) Option {
	return func(d *Driver) { d.statusFn = fn }
}

// WithConfigUpdates subscribes the loop to configuration reloads.
func WithConfigUpdates(ch <-chan config.Config) Option {
	return func(d *Driver) { d.updates = ch }
}

// WithLogger routes driver diagnostics to log.
func WithLogger(log *slog.Logger) Option {
	return func(d *Driver) { d.log = log }
}

// New builds a driver around surface. The configured key bindings and
// Lua actions are installed here, so a bad configuration fails fast
// instead of mid-session.
func New(surface *screen.Surface, opts ...Option) (*Driver, error) {
	d := &Driver{
		surface: surface,
		cfg:     config.Default(),
		events:  make(chan backend.Event, 32),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.router = input.NewRouter(d.events)
	d.registry = action.NewRegistry()

	if err := d.registerBuiltins(); err != nil {
		return nil, err
	}
	if err := d.installBindings(d.cfg.Keys); err != nil {
		return nil, err
	}
	for name, src := range d.cfg.Actions.Lua {
		if err := d.registry.RegisterLua(name, src); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Driver) logger() *slog.Logger {
	if d.log != nil {
		return d.log
	}
	return slog.Default().With("component", "driver")
}

// Surface returns the surface the driver paints.
func (d *Driver) Surface() *screen.Surface { return d.surface }

// Router returns the input router, for binding registration.
func (d *Driver) Router() *input.Router { return d.router }

// Actions returns the action registry, for handler registration.
func (d *Driver) Actions() *action.Registry { return d.registry }

// State reports the lifecycle phase.
func (d *Driver) State() State {
	return State(d.state.Load())
}

// RequestStop asks the loop to exit after the current tick. Safe from
// any goroutine, including signal handlers, and safe to call more
// than once or before Run.
func (d *Driver) RequestStop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
	d.state.CompareAndSwap(int32(StateRunning), int32(StateShuttingDown))
}

// Stop requests a stop and waits for Run to return. Only meaningful
// once Run has been started.
func (d *Driver) Stop() {
	d.RequestStop()
	<-d.done
}

// Run drives the UI until the context is canceled, a quit action
// fires, or the event source closes. The calling goroutine becomes
// the UI goroutine; Run returns only after teardown completes.
func (d *Driver) Run(ctx context.Context) error {
	if !d.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyRunning
	}
	defer close(d.done)
	defer d.state.Store(int32(StateStopped))

	if d.logs != nil {
		d.logs.Install()
	}
	if err := d.surface.Init(); err != nil {
		return err
	}
	d.surface.SetCursorVisible(d.cfg.CursorVisible)

	go d.pump()

	d.logger().Info("ui loop started", "tick", d.cfg.Tick.Duration().String())
	for d.State() == StateRunning {
		select {
		case <-ctx.Done():
			d.RequestStop()
			continue
		case <-d.stopCh:
			d.state.CompareAndSwap(int32(StateRunning), int32(StateShuttingDown))
			continue
		default:
		}

		d.tick()
	}

	d.shutdown()
	return nil
}

// tick runs one loop iteration. Order is fixed: input, configuration
// updates, log flush, status application, repaint, so a keystroke's
// effect and the records it logged land in the same frame.
func (d *Driver) tick() {
	res := d.router.Poll(d.cfg.Tick.Duration())
	switch res.Kind {
	case input.PollClosed:
		d.logger().Warn("event source closed")
		d.RequestStop()
		return
	case input.PollResize:
		d.surface.Resize(res.Width, res.Height)
	case input.PollKey:
		d.dispatchKey(res.Stroke)
	}

	select {
	case cfg := <-d.updates:
		d.applyConfig(cfg)
	default:
	}

	if d.logs != nil {
		d.logs.Flush()
	}
	d.applyStatuses()

	if d.surface.Dirty() {
		d.surface.Repaint()
	}
}

func (d *Driver) dispatchKey(s key.Stroke) {
	focused := d.surface.Focused()

	var target input.Target
	var win action.Window
	if focused != nil {
		target = focused
		win = focused
	}

	name := d.router.Resolve(s, target)
	if name == input.ActionNone {
		d.logger().Debug("unbound key", "key", s.String())
		return
	}

	ctx := &action.Context{Window: win, Log: d.logger(), Stroke: s}
	if err := d.runAction(name, ctx); err != nil {
		d.logger().Error("action failed", "action", name, "key", s.String(), "err", err)
	}
}

// runAction contains handler panics so one bad action cannot take the
// loop down with the terminal in raw mode.
func (d *Driver) runAction(name string, ctx *action.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action %s panicked: %v\n%s", name, r, debug.Stack())
		}
	}()
	return d.registry.Dispatch(name, ctx)
}

func (d *Driver) applyStatuses() {
	if d.tasks == nil || d.statusFn == nil {
		return
	}
	for _, id := range d.tasks.Tasks() {
		payload, changed, err := d.tasks.ReadStatus(id)
		if err != nil || !changed {
			continue
		}
		d.statusFn(id, payload)
	}
}

// applyConfig applies a hot reload. Unlike New, problems here are
// logged and skipped; a running session never dies to a bad edit.
func (d *Driver) applyConfig(cfg config.Config) {
	d.cfg = cfg
	d.surface.SetCursorVisible(cfg.CursorVisible)

	if d.logs != nil {
		if lvl, err := logbridge.ParseLevel(cfg.Log.Level); err == nil {
			d.logs.SetLevel(lvl)
		} else {
			d.logger().Warn("reload: bad log level", "err", err)
		}
		d.logs.SetCapacity(cfg.Log.Capacity)
	}

	global := input.DefaultGlobal()
	if parsed, err := input.ParseBindings(cfg.Keys.Global); err != nil {
		d.logger().Warn("reload: bad global bindings", "err", err)
	} else {
		for s, a := range parsed {
			global[s] = a
		}
	}
	d.router.ReplaceGlobal(global)

	for tag, specs := range cfg.Keys.Types {
		parsed, err := input.ParseBindings(specs)
		if err != nil {
			d.logger().Warn("reload: bad type bindings", "type", tag, "err", err)
			continue
		}
		d.router.ReplaceTypeDefaults(tag, parsed)
	}

	for name, src := range cfg.Actions.Lua {
		if err := d.registry.RegisterLua(name, src); err != nil {
			d.logger().Warn("reload: bad lua action", "action", name, "err", err)
		}
	}

	d.logger().Info("configuration reloaded", "tick", cfg.Tick.Duration().String())
}

// installBindings seeds the router from configuration at build time.
func (d *Driver) installBindings(keys config.KeysConfig) error {
	d.router.ReplaceGlobal(input.DefaultGlobal())

	parsed, err := input.ParseBindings(keys.Global)
	if err != nil {
		return fmt.Errorf("keys.global: %w", err)
	}
	if err := d.router.MergeGlobal(parsed); err != nil {
		return fmt.Errorf("keys.global: %w", err)
	}

	for tag, specs := range keys.Types {
		parsed, err := input.ParseBindings(specs)
		if err != nil {
			return fmt.Errorf("keys.types.%s: %w", tag, err)
		}
		if err := d.router.MergeTypeDefaults(tag, parsed); err != nil {
			return fmt.Errorf("keys.types.%s: %w", tag, err)
		}
	}
	return nil
}

func (d *Driver) registerBuiltins() error {
	builtins := map[string]action.Func{
		input.ActionQuit: func(*action.Context) error {
			d.RequestStop()
			return nil
		},
		input.ActionFocusNext: func(*action.Context) error {
			d.surface.FocusNext()
			return nil
		},
		input.ActionScrollUp:   scrollBy(-1),
		input.ActionScrollDown: scrollBy(1),
		input.ActionPageUp:     pageBy(-1),
		input.ActionPageDown:   pageBy(1),
		input.ActionScrollTop: func(ctx *action.Context) error {
			if ctx.Window != nil {
				ctx.Window.ScrollTo(0)
			}
			return nil
		},
		input.ActionScrollBottom: func(ctx *action.Context) error {
			if ctx.Window != nil {
				ctx.Window.ScrollTo(math.MaxInt)
			}
			return nil
		},
	}

	for name, fn := range builtins {
		if err := d.registry.Register(name, fn); err != nil {
			return err
		}
	}
	return nil
}

func scrollBy(delta int) action.Func {
	return func(ctx *action.Context) error {
		if ctx.Window != nil {
			ctx.Window.Scroll(delta)
		}
		return nil
	}
}

func pageBy(sign int) action.Func {
	return func(ctx *action.Context) error {
		if ctx.Window != nil {
			ctx.Window.Scroll(sign * ctx.Window.PageSize())
		}
		return nil
	}
}

// pump forwards backend events to the router until the backend is
// finalized, then closes the stream so Poll reports the closure.
func (d *Driver) pump() {
	defer close(d.events)
	for {
		ev, ok := d.surface.Backend().PollEvent()
		if !ok {
			return
		}
		d.events <- ev
	}
}

// shutdown tears the session down in reverse order of construction:
// stop workers, flush what the queue holds, restore the terminal,
// retire the pump, release the script state.
func (d *Driver) shutdown() {
	d.logger().Info("shutting down")

	if d.tasks != nil {
		d.tasks.Broadcast(monitor.CommandStop)
	}
	if d.logs != nil {
		d.logs.Flush()
	}

	d.surface.Teardown()

	for range d.events {
	}

	d.registry.Close()
	d.logger().Info("stopped")
}
