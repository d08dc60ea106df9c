package logbridge

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// LineWriter is the designated display target for flushed records,
// satisfied by a window.
type LineWriter interface {
	WriteLine(text string)
}

// Bridge intercepts the process logging mechanism. Installed, it
// becomes the default slog destination (which also captures the
// legacy log package), appending every record to a bounded queue.
// The UI driver drains the queue into the designated window once per
// tick, so no producer ever writes to the terminal directly.
type Bridge struct {
	mu        sync.Mutex
	queue     *Queue
	level     *slog.LevelVar
	echo      slog.Handler
	target    LineWriter
	prev      *slog.Logger
	installed bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithCapacity bounds the record queue.
func WithCapacity(capacity int) Option {
	return func(b *Bridge) { b.queue = NewQueue(capacity) }
}

// WithEcho duplicates captured records to an additional handler,
// typically a tint handler on a log file for post-mortem reading.
func WithEcho(h slog.Handler) Option {
	return func(b *Bridge) { b.echo = h }
}

// WithLevel sets the minimum captured level. Defaults to Info.
func WithLevel(level slog.Level) Option {
	return func(b *Bridge) { b.level.Set(level) }
}

// New creates a bridge with a default-capacity queue.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		queue: NewQueue(DefaultCapacity),
		level: new(slog.LevelVar),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handler returns the slog handler the bridge installs: the queue
// capture, fanned out to the echo handler when one is configured.
func (b *Bridge) Handler() slog.Handler {
	return Fanout(NewQueueHandler(b.queue, b.level), b.echo)
}

// Install swaps the process default logger for the bridge handler.
// Idempotent; the previous default is kept for Restore.
func (b *Bridge) Install() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.installed {
		return
	}
	b.prev = slog.Default()
	slog.SetDefault(slog.New(b.Handler()))
	b.installed = true
}

// Restore reinstates the logger that was default before Install.
// Idempotent.
func (b *Bridge) Restore() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.installed {
		return
	}
	slog.SetDefault(b.prev)
	b.prev = nil
	b.installed = false
}

// Installed reports whether the bridge currently owns the default
// logger.
func (b *Bridge) Installed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.installed
}

// Designate sets the window that receives flushed records. A nil
// target leaves records queued; once the bounded capacity is
// exceeded the oldest are dropped and the loss is reported on the
// next flush.
func (b *Bridge) Designate(w LineWriter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = w
}

// Flush drains the queue into the designated window in FIFO order
// and returns the number of lines written. Without a target it is a
// no-op.
func (b *Bridge) Flush() int {
	b.mu.Lock()
	target := b.target
	b.mu.Unlock()

	if target == nil {
		return 0
	}

	recs := b.queue.Drain()
	for _, r := range recs {
		target.WriteLine(r.String())
	}
	return len(recs)
}

// Drain removes and returns all queued records without a designated
// window, used at shutdown to dump leftovers to the real stderr.
func (b *Bridge) Drain() []Record {
	return b.queue.Drain()
}

// Pending returns the number of queued records.
func (b *Bridge) Pending() int {
	return b.queue.Len()
}

// SetLevel changes the minimum captured level at runtime.
func (b *Bridge) SetLevel(level slog.Level) {
	b.level.Set(level)
}

// SetCapacity resizes the record queue at runtime.
func (b *Bridge) SetCapacity(capacity int) {
	b.queue.SetCapacity(capacity)
}

// ParseLevel converts a configuration string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
