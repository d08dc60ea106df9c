package screen

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/termwin/internal/screen/backend"
)

// Surface owns the single terminal handle. Every terminal write in
// the process passes through it; no other component touches the
// device directly.
type Surface struct {
	mu          sync.Mutex
	backend     backend.Backend
	log         *slog.Logger
	width       int
	height      int
	windows     []*Window
	focused     *Window
	initialized bool
	torndown    bool
	fullRepaint bool
	noCursor    bool
}

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the surface logger. By default the surface logs
// through the process default logger at call time, so records land in
// the log bridge once it is installed.
func WithLogger(log *slog.Logger) Option {
	return func(s *Surface) { s.log = log }
}

// New creates a surface on the given backend. Call Init before
// creating windows.
func New(b backend.Backend, opts ...Option) *Surface {
	s := &Surface{backend: b}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Surface) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return slog.Default().With("component", "screen")
}

// Init claims exclusive terminal control, enters raw mode, and hides
// the hardware cursor. It is idempotent so the application and the
// driver can both call it. Fails when no usable terminal is attached.
func (s *Surface) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.torndown {
		return ErrSurfaceTornDown
	}
	if s.initialized {
		return nil
	}

	if err := s.backend.Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrTerminalUnavailable, err)
	}

	s.width, s.height = s.backend.Size()
	s.backend.HideCursor()
	s.initialized = true
	s.fullRepaint = true

	if !s.backend.HasColor() {
		s.logger().Debug("terminal reports no color support, degrading to attributes")
	}

	return nil
}

// Teardown restores the terminal to its original mode. Idempotent:
// the driver defers it on every exit path and the application may
// also call it directly.
func (s *Surface) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.torndown {
		return
	}
	s.torndown = true
	if s.initialized {
		s.backend.Fini()
	}
}

// Size returns the current surface dimensions.
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Backend exposes the underlying device for the driver's event poll.
func (s *Surface) Backend() backend.Backend {
	return s.backend
}

// CreateWindow registers a new window. The requested rectangle must
// fit the current surface dimensions; on failure the registry is
// unchanged.
func (s *Surface) CreateWindow(cfg Config) (*Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.torndown {
		return nil, ErrSurfaceTornDown
	}
	if !cfg.Rect.FitsIn(s.width, s.height) {
		return nil, &BoundsError{Rect: cfg.Rect, Width: s.width, Height: s.height}
	}

	w := newWindow(s, cfg)
	s.windows = append(s.windows, w)

	s.logger().Debug("window created",
		"id", w.id, "title", cfg.Title, "type", cfg.Type, "rect", cfg.Rect.String())

	return w, nil
}

// Windows returns the registered windows in creation order.
func (s *Surface) Windows() []*Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Window, len(s.windows))
	copy(out, s.windows)
	return out
}

// Get returns the window with the given identifier.
func (s *Surface) Get(id uuid.UUID) (*Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.windows {
		if w.id == id {
			return w, true
		}
	}
	return nil, false
}

// Focus transfers the focus flag to w. At most one window holds it.
func (s *Surface) Focus(w *Window) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w == nil || w.closed || s.focused == w {
		return
	}
	if s.focused != nil {
		s.focused.focused = false
		s.focused.dirty = true
	}
	w.focused = true
	w.dirty = true
	s.focused = w
}

// Focused returns the focused window, or nil when none holds the
// flag.
func (s *Surface) Focused() *Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// FocusNext moves focus to the next window in creation order,
// wrapping around. With no focused window it focuses the first.
func (s *Surface) FocusNext() {
	s.mu.Lock()
	windows := s.windows
	focused := s.focused
	s.mu.Unlock()

	if len(windows) == 0 {
		return
	}
	if focused == nil {
		s.Focus(windows[0])
		return
	}
	for i, w := range windows {
		if w == focused {
			s.Focus(windows[(i+1)%len(windows)])
			return
		}
	}
}

// remove drops a closed window from the registry and forces a full
// repaint to erase its cells.
func (s *Surface) remove(w *Window) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.windows {
		if cur == w {
			s.windows = append(s.windows[:i], s.windows[i+1:]...)
			break
		}
	}
	if s.focused == w {
		s.focused = nil
	}
	s.fullRepaint = true

	s.logger().Debug("window closed", "id", w.id, "title", w.title)
}

// Resize adapts the surface to new terminal dimensions, clamping
// windows that no longer fit and forcing a full repaint.
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if width == s.width && height == s.height {
		return
	}
	s.width = width
	s.height = height
	for _, w := range s.windows {
		w.setRect(w.rect.clampTo(width, height))
	}
	s.fullRepaint = true

	s.logger().Debug("surface resized", "width", width, "height", height)
}

// Dirty reports whether any window needs repainting.
func (s *Surface) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fullRepaint {
		return true
	}
	for _, w := range s.windows {
		if w.dirty {
			return true
		}
	}
	return false
}

// Repaint flushes every window's visible buffer slice to the
// terminal in creation order as one batched write. Overlapping
// windows paint later-created on top.
func (s *Surface) Repaint() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || s.torndown {
		return
	}

	if s.fullRepaint {
		s.backend.Clear()
	}
	for _, w := range s.windows {
		w.paint(s.backend)
	}
	s.placeCursor()
	s.backend.Show()
	s.fullRepaint = false
}

// SetCursorVisible globally enables or disables the hardware cursor.
// When disabled, window cursor positions are kept but not shown.
func (s *Surface) SetCursorVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.noCursor != !visible {
		s.noCursor = !visible
		s.fullRepaint = true
	}
}

// placeCursor shows the hardware cursor at the focused window's
// cursor position, or hides it when no window wants one.
func (s *Surface) placeCursor() {
	w := s.focused
	if w == nil || !w.cursorOn || s.noCursor {
		s.backend.HideCursor()
		return
	}
	inner := w.inner()
	x := inner.X + w.cursorX
	y := inner.Y + w.cursorY
	if !inner.Contains(x, y) {
		s.backend.HideCursor()
		return
	}
	s.backend.ShowCursor(x, y)
}
