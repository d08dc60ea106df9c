// Package main is the task-monitor demonstration: background workers
// stream status over the async bridge into a tasks window while log
// records land in a messages window below it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/tidwall/gjson"
	"golang.org/x/term"

	"github.com/dshills/termwin/internal/action"
	"github.com/dshills/termwin/internal/config"
	"github.com/dshills/termwin/internal/driver"
	"github.com/dshills/termwin/internal/input"
	"github.com/dshills/termwin/internal/input/key"
	"github.com/dshills/termwin/internal/logbridge"
	"github.com/dshills/termwin/internal/monitor"
	"github.com/dshills/termwin/internal/screen"
	"github.com/dshills/termwin/internal/screen/backend"
	"github.com/dshills/termwin/internal/task"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	configPath string
	tasksPath  string
	logLevel   string
	echoPath   string
}

func run() int {
	opts := parseFlags()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal")
		return 1
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.echoPath != "" {
		cfg.Log.Echo = opts.echoPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	level, _ := logbridge.ParseLevel(cfg.Log.Level)

	bridgeOpts := []logbridge.Option{
		logbridge.WithCapacity(cfg.Log.Capacity),
		logbridge.WithLevel(level),
	}
	if cfg.Log.Echo != "" {
		f, err := os.OpenFile(cfg.Log.Echo, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		bridgeOpts = append(bridgeOpts, logbridge.WithEcho(tint.NewHandler(f, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    true,
		})))
	}
	logs := logbridge.New(bridgeOpts...)
	logs.Install()
	defer logs.Restore()

	var workers []task.Worker
	if opts.tasksPath != "" {
		manifest, err := task.LoadManifest(opts.tasksPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		workers, err = manifest.Workers()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		workers = task.BuiltinWorkers()
	}

	mon := monitor.NewBridge()
	runner := task.NewRunner(mon)
	for _, w := range workers {
		if err := runner.Add(w); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	var updates <-chan config.Config
	if opts.configPath != "" {
		watcher, err := config.Watch(opts.configPath)
		if err != nil {
			slog.Warn("config watch unavailable", "err", err)
		} else {
			defer watcher.Close()
			updates = watcher.Updates()
		}
	}

	err = launch(cfg, logs, updates, mon, runner)

	// Records queued after the final flush (worker exit messages,
	// shutdown diagnostics) never reached the screen; print them now
	// that the terminal is back.
	for _, rec := range logs.Drain() {
		fmt.Fprintln(os.Stderr, rec.String())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// launch owns the terminal: every error path returns only after the
// deferred teardown has restored the caller's screen.
func launch(cfg config.Config, logs *logbridge.Bridge, updates <-chan config.Config, mon *monitor.Bridge, runner *task.Runner) error {
	tb, err := backend.NewTerminal()
	if err != nil {
		return err
	}
	surface := screen.New(tb)
	if err := surface.Init(); err != nil {
		return err
	}
	defer surface.Teardown()

	width, height := surface.Size()
	taskCount := len(mon.Tasks())
	tasksRect := screen.Rect{X: 1, Y: 1, W: width - 2, H: taskCount + 2}
	msgRect := screen.Rect{X: 1, Y: tasksRect.Y + tasksRect.H + 1, W: width - 2, H: height - tasksRect.H - 3}
	if width < 40 || msgRect.H < 3 {
		return fmt.Errorf("terminal too small for %d tasks: %dx%d", taskCount, width, height)
	}

	tasksWin, err := surface.CreateWindow(screen.Config{
		Title:  "tasks",
		Rect:   tasksRect,
		Type:   "tasks",
		Border: screen.BorderSingle,
	})
	if err != nil {
		return err
	}
	msgWin, err := surface.CreateWindow(screen.Config{
		Title:  "messages",
		Rect:   msgRect,
		Type:   "log",
		Border: screen.BorderSingle,
		Follow: true,
	})
	if err != nil {
		return err
	}
	surface.Focus(tasksWin)
	logs.Designate(msgWin)

	panel := newTaskPanel(mon, tasksWin)
	d, err := driver.New(surface,
		driver.WithConfig(cfg),
		driver.WithLogBridge(logs),
		driver.WithMonitor(mon),
		driver.WithStatusFunc(panel.apply),
		driver.WithConfigUpdates(updates),
	)
	if err != nil {
		return err
	}
	if err := registerTaskActions(d, panel); err != nil {
		return err
	}
	if err := d.Actions().Register("log.clear", func(ctx *action.Context) error {
		if ctx.Window != nil {
			ctx.Window.Clear()
		}
		return nil
	}); err != nil {
		return err
	}
	// Window-local binding: clear only works while messages has focus.
	if err := msgWin.SetOverride(key.RuneStroke('c'), "log.clear"); err != nil {
		return err
	}

	msgWin.WriteLine("termwin monitor: worker status above, captured logs here")
	msgWin.WriteLine("keys: up/down select | p pause | r resume | s stop | tab focus | q quit")
	msgWin.WriteLine("")
	slog.Info("monitor started", "version", version, "tasks", taskCount)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner.Start(ctx)
	err = d.Run(ctx)
	// The driver broadcast a stop on its way out; wait for the workers
	// to consume it so nothing posts into a dead bridge.
	runner.Wait()
	return err
}

// taskPanel renders bridge status into the tasks window. Every method
// runs on the UI goroutine: the driver dispatches both key actions and
// the status callback there, so no locking is needed.
type taskPanel struct {
	mon      *monitor.Bridge
	win      *screen.Window
	selected int
	rows     map[string]string
}

func newTaskPanel(mon *monitor.Bridge, win *screen.Window) *taskPanel {
	p := &taskPanel{mon: mon, win: win, rows: make(map[string]string)}
	p.render()
	return p
}

// apply is the driver's StatusFunc: one call per task per tick, newest
// payload only.
func (p *taskPanel) apply(taskID string, payload []byte) {
	p.rows[taskID] = renderStatus(payload)
	p.render()
}

func (p *taskPanel) render() {
	ids := p.mon.Tasks()
	if p.selected >= len(ids) {
		p.selected = len(ids) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
	for i, id := range ids {
		prefix := "  "
		if i == p.selected {
			prefix = "> "
		}
		row := p.rows[id]
		if row == "" {
			row = "waiting"
		}
		p.win.SetLine(i, fmt.Sprintf("%s%-10s %s", prefix, id, row))
	}
	// Stopped tasks unregister; blank their stale rows.
	for i := len(ids); i < p.win.Lines(); i++ {
		p.win.SetLine(i, "")
	}
}

func (p *taskPanel) move(delta int) {
	ids := p.mon.Tasks()
	if len(ids) == 0 {
		return
	}
	p.selected = (p.selected + delta + len(ids)) % len(ids)
	p.render()
}

func (p *taskPanel) control(ctx *action.Context, cmd monitor.Command) error {
	ids := p.mon.Tasks()
	if len(ids) == 0 || p.selected >= len(ids) {
		return nil
	}
	id := ids[p.selected]
	if err := p.mon.SendControl(id, cmd); err != nil {
		return err
	}
	ctx.Logger().Info("control sent", "task", id, "cmd", cmd.String())
	return nil
}

func registerTaskActions(d *driver.Driver, panel *taskPanel) error {
	acts := map[string]action.Func{
		"task.next":   func(*action.Context) error { panel.move(1); return nil },
		"task.prev":   func(*action.Context) error { panel.move(-1); return nil },
		"task.pause":  func(ctx *action.Context) error { return panel.control(ctx, monitor.CommandPause) },
		"task.resume": func(ctx *action.Context) error { return panel.control(ctx, monitor.CommandResume) },
		"task.stop":   func(ctx *action.Context) error { return panel.control(ctx, monitor.CommandStop) },
	}
	for name, fn := range acts {
		if err := d.Actions().Register(name, fn); err != nil {
			return err
		}
	}

	// Type-tier bindings: these shadow the global scroll keys while a
	// tasks window has focus, and stop applying the moment focus moves
	// to the messages window.
	binds, err := input.ParseBindings(map[string]string{
		"up":   "task.prev",
		"down": "task.next",
		"p":    "task.pause",
		"r":    "task.resume",
		"s":    "task.stop",
	})
	if err != nil {
		return err
	}
	return d.Router().MergeTypeDefaults("tasks", binds)
}

func renderStatus(payload []byte) string {
	if len(payload) == 0 {
		return "waiting"
	}
	tick := gjson.GetBytes(payload, "tick")
	if pct := gjson.GetBytes(payload, "pct"); pct.Exists() {
		return fmt.Sprintf("pct %+5.2f  tick %d", pct.Float(), tick.Int())
	}
	if state := gjson.GetBytes(payload, "state"); state.Exists() {
		temp := gjson.GetBytes(payload, "temp")
		return fmt.Sprintf("%-12s temp %2.0f  tick %d", state.String(), temp.Float(), tick.Int())
	}
	return string(payload)
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to TOML configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to TOML configuration file (shorthand)")
	flag.StringVar(&opts.tasksPath, "tasks", "", "Path to YAML task manifest (default: built-in fast+slow workers)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.echoPath, "echo-log", "", "File receiving a copy of every log record")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "termwin-monitor - background task monitor demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: termwin-monitor [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("termwin-monitor %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}
	return opts
}
