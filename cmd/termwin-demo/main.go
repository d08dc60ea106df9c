// Package main is the minimal termwin demonstration: one window,
// default key bindings, live log capture.
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
	"golang.org/x/term"

	"github.com/dshills/termwin/internal/action"
	"github.com/dshills/termwin/internal/config"
	"github.com/dshills/termwin/internal/driver"
	"github.com/dshills/termwin/internal/input/key"
	"github.com/dshills/termwin/internal/logbridge"
	"github.com/dshills/termwin/internal/screen"
	"github.com/dshills/termwin/internal/screen/backend"
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

	err = launch(cfg, logs, updates)

	// Whatever queued after the last flush never made it on screen;
	// print it now that the terminal is back.
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
func launch(cfg config.Config, logs *logbridge.Bridge, updates <-chan config.Config) error {
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
	win, err := surface.CreateWindow(screen.Config{
		Title:  "messages",
		Rect:   screen.Rect{X: 2, Y: 1, W: width - 4, H: height - 2},
		Type:   "log",
		Border: screen.BorderSingle,
		Follow: true,
	})
	if err != nil {
		return err
	}
	surface.Focus(win)
	logs.Designate(win)

	d, err := driver.New(surface,
		driver.WithConfig(cfg),
		driver.WithLogBridge(logs),
		driver.WithConfigUpdates(updates),
	)
	if err != nil {
		return err
	}
	if err := registerDemoActions(d, win); err != nil {
		return err
	}

	win.WriteLine("termwin demo: captured log records land here")
	win.WriteLine("keys: ctrl+p sample log | l banner | c clear | arrows scroll | q quit")
	win.WriteLine("")
	slog.Info("demo started", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx)
}

// samples are emitted round-robin by the ctrl+p handler.
var samples = []string{
	"Nobody expects the Spanish Inquisition!",
	"this parrot is no more",
	"it's only a flesh wound",
	"and now for something completely different",
}

func registerDemoActions(d *driver.Driver, win *screen.Window) error {
	next := 0
	if err := d.Actions().Register("log.sample", func(ctx *action.Context) error {
		msg := samples[next%len(samples)]
		next++
		ctx.Logger().Info(msg, "n", next)
		return nil
	}); err != nil {
		return err
	}
	if err := d.Actions().Register("demo.clear", func(ctx *action.Context) error {
		if ctx.Window != nil {
			ctx.Window.Clear()
		}
		return nil
	}); err != nil {
		return err
	}
	if err := d.Actions().RegisterLua("demo.banner",
		`win.write(string.rep("-", 12) .. " " .. win.title() .. " " .. string.rep("-", 12))`,
	); err != nil {
		return err
	}

	if err := d.Router().SetGlobal(key.CtrlStroke('p'), "log.sample"); err != nil {
		return err
	}
	if err := d.Router().SetGlobal(key.RuneStroke('l'), "demo.banner"); err != nil {
		return err
	}
	// Window-local binding: only fires while this window has focus.
	return win.SetOverride(key.RuneStroke('c'), "demo.clear")
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to TOML configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to TOML configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.echoPath, "echo-log", "", "File receiving a copy of every log record")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "termwin-demo - windowed terminal UI demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: termwin-demo [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("termwin-demo %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}
	return opts
}
