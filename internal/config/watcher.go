package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the event bursts editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a config file when it changes on disk and publishes
// the result on Updates. The channel holds at most one pending config;
// a newer reload replaces an unconsumed one.
type Watcher struct {
	path     string
	base     string
	debounce time.Duration
	lookup   func(string) (string, bool)
	log      *slog.Logger

	fsw     *fsnotify.Watcher
	updates chan Config

	closeOnce sync.Once
	closeCh   chan struct{}
	closedWg  sync.WaitGroup
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLookup overrides the environment lookup applied on reload.
func WithLookup(lookup func(string) (string, bool)) WatchOption {
	return func(w *Watcher) { w.lookup = lookup }
}

// WithWatchLogger routes watcher diagnostics to log.
func WithWatchLogger(log *slog.Logger) WatchOption {
	return func(w *Watcher) { w.log = log }
}

// Watch starts watching path's directory. Watching the directory
// rather than the file survives the rename-over-save editors do.
func Watch(path string, opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		base:     filepath.Base(abs),
		debounce: DefaultDebounce,
		updates:  make(chan Config, 1),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = slog.Default().With("component", "config")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	w.fsw = fsw

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Updates delivers validated configurations after each reload.
func (w *Watcher) Updates() <-chan Config { return w.updates }

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
		w.closedWg.Wait()
	})
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := false
	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", "err", err)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			w.reload()
		}
	}
}

// reload re-runs the full load pipeline: file, environment overlay,
// validation. A reload that fails any stage is dropped so the running
// configuration stays intact.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed", "path", w.path, "err", err)
		return
	}
	if err := cfg.ApplyEnv(w.lookup); err != nil {
		w.log.Warn("config reload failed", "path", w.path, "err", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		w.log.Warn("config reload rejected", "path", w.path, "err", err)
		return
	}

	select {
	case w.updates <- cfg:
	default:
		select {
		case <-w.updates:
		default:
		}
		select {
		case w.updates <- cfg:
		default:
		}
	}
	w.log.Info("config reloaded", "path", w.path)
}
