package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/termwin/internal/monitor"
)

// ErrStarted reports an Add after Start.
var ErrStarted = errors.New("runner already started")

// Runner drives workers on their own goroutines and connects them to
// the monitor bridge: control commands are consumed before each step,
// and each step's payload is posted as the task's status.
type Runner struct {
	bridge *monitor.Bridge
	log    *slog.Logger

	mu      sync.Mutex
	workers []Worker
	started bool

	wg sync.WaitGroup
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger routes runner diagnostics to log.
func WithLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// NewRunner returns a Runner posting to bridge.
func NewRunner(bridge *monitor.Bridge, opts ...RunnerOption) *Runner {
	r := &Runner{bridge: bridge}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = slog.Default().With("component", "task")
	}
	return r
}

// Add registers a worker with the bridge. All workers must be added
// before Start.
func (r *Runner) Add(w Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrStarted
	}
	if err := r.bridge.Register(w.Name()); err != nil {
		return err
	}
	r.workers = append(r.workers, w)
	return nil
}

// Start launches one goroutine per worker. The context cancels them
// all; individual workers stop earlier on a stop command.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return
	}
	r.started = true

	for _, w := range r.workers {
		r.wg.Add(1)
		go r.run(ctx, w)
	}
}

// Wait blocks until every worker goroutine has exited.
func (r *Runner) Wait() { r.wg.Wait() }

func (r *Runner) run(ctx context.Context, w Worker) {
	defer r.wg.Done()

	log := r.log.With("task", w.Name(), "run", uuid.NewString())
	log.Info("task started", "interval", w.Interval().String())

	if tw, ok := w.(*TemperatureWorker); ok && tw.log == nil {
		tw.SetLogger(log)
	}

	ticker := time.NewTicker(w.Interval())
	defer ticker.Stop()

	tick := 0
	paused := false
	for {
		select {
		case <-ctx.Done():
			log.Info("task canceled")
			return

		case <-ticker.C:
			cmd, ok, err := r.bridge.ConsumeControl(w.Name())
			if err != nil {
				// Unregistered underneath us; nothing left to serve.
				log.Warn("task unregistered", "err", err)
				return
			}
			if ok {
				switch cmd {
				case monitor.CommandPause:
					if !paused {
						paused = true
						log.Info("task paused")
					}
				case monitor.CommandResume:
					if paused {
						paused = false
						log.Info("task resumed")
					}
				case monitor.CommandStop:
					log.Info("task stopped")
					return
				}
			}
			if paused {
				continue
			}

			tick++
			payload, err := w.Step(tick)
			if err != nil {
				log.Error("step failed", "tick", tick, "err", err)
				continue
			}
			if err := r.bridge.PostStatus(w.Name(), payload); err != nil {
				log.Warn("task unregistered", "err", err)
				return
			}
		}
	}
}
