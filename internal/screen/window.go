package screen

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/termwin/internal/input"
	"github.com/dshills/termwin/internal/input/key"
	"github.com/dshills/termwin/internal/screen/backend"
)

// Config describes a window at creation time.
type Config struct {
	Title  string
	Rect   Rect
	Type   string
	Border BorderStyle

	// Follow pins the viewport to the newest line on every write.
	// Intended for log windows; off by default so explicit scroll
	// positions stay put.
	Follow bool
}

// Window is a rectangular viewport onto the surface with its own
// content buffer, scroll offset, and key overrides.
//
// Windows are not safe for concurrent use. All mutation happens on
// the UI goroutine; background tasks reach windows only through the
// log and monitor bridges.
type Window struct {
	id        uuid.UUID
	surface   *Surface
	title     string
	rect      Rect
	typeTag   string
	border    BorderStyle
	follow    bool
	buf       []string
	scroll    int
	overrides input.Bindings
	cursorX   int
	cursorY   int
	cursorOn  bool
	focused   bool
	dirty     bool
	closed    bool
}

func newWindow(s *Surface, cfg Config) *Window {
	return &Window{
		id:        uuid.New(),
		surface:   s,
		title:     cfg.Title,
		rect:      cfg.Rect,
		typeTag:   cfg.Type,
		border:    cfg.Border,
		follow:    cfg.Follow,
		overrides: make(input.Bindings),
		dirty:     true,
	}
}

// ID returns the window's stable identifier.
func (w *Window) ID() uuid.UUID { return w.id }

// Title returns the window title.
func (w *Window) Title() string { return w.title }

// SetTitle changes the window title.
func (w *Window) SetTitle(title string) {
	if w.title == title {
		return
	}
	w.title = title
	w.dirty = true
}

// Rect returns the window's outer rectangle in surface coordinates.
func (w *Window) Rect() Rect { return w.rect }

// TypeTag returns the window-type tag selecting its default handler
// set.
func (w *Window) TypeTag() string { return w.typeTag }

// Follow reports whether the viewport pins to the newest line.
func (w *Window) Follow() bool { return w.follow }

// SetFollow toggles viewport pinning.
func (w *Window) SetFollow(follow bool) { w.follow = follow }

// Focused reports whether this window holds the focus flag.
func (w *Window) Focused() bool { return w.focused }

// Focus transfers focus to this window.
func (w *Window) Focus() {
	if w.surface != nil {
		w.surface.Focus(w)
	}
}

// Closed reports whether the window has been removed from its
// surface.
func (w *Window) Closed() bool { return w.closed }

// Close removes the window from the surface registry and forces a
// full repaint. Closing twice is a no-op.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.closed = true
	if w.surface != nil {
		w.surface.remove(w)
	}
}

// inner returns the content rectangle inside any border.
func (w *Window) inner() Rect {
	if w.border == BorderNone {
		return w.rect
	}
	return w.rect.Inset(1)
}

// PageSize returns the number of content rows visible at once.
func (w *Window) PageSize() int {
	h := w.inner().H
	if h < 1 {
		return 1
	}
	return h
}

// Lines returns the content buffer length.
func (w *Window) Lines() int { return len(w.buf) }

// Line returns the buffer line at index i, or "" when out of range.
func (w *Window) Line(i int) string {
	if i < 0 || i >= len(w.buf) {
		return ""
	}
	return w.buf[i]
}

// WriteLine appends text to the content buffer and marks the window
// dirty. Embedded newlines split into separate buffer lines. Writes
// to a closed window are dropped.
func (w *Window) WriteLine(text string) {
	if w.closed {
		return
	}
	if strings.ContainsRune(text, '\n') {
		w.buf = append(w.buf, strings.Split(strings.TrimRight(text, "\n"), "\n")...)
	} else {
		w.buf = append(w.buf, text)
	}
	if w.follow {
		w.scroll = w.maxScroll()
	}
	w.dirty = true
}

// Writef appends a formatted line.
func (w *Window) Writef(format string, args ...any) {
	w.WriteLine(fmt.Sprintf(format, args...))
}

// SetLine replaces the buffer line at index i, extending the buffer
// with blank lines as needed. Used for in-place status rows.
func (w *Window) SetLine(i int, text string) {
	if w.closed || i < 0 {
		return
	}
	for len(w.buf) <= i {
		w.buf = append(w.buf, "")
	}
	if w.buf[i] == text {
		return
	}
	w.buf[i] = text
	w.dirty = true
}

// Clear empties the content buffer and resets the scroll offset.
func (w *Window) Clear() {
	if w.closed {
		return
	}
	w.buf = w.buf[:0]
	w.scroll = 0
	w.dirty = true
}

// Scroll adjusts the scroll offset by delta, clamping silently to
// buffer bounds.
func (w *Window) Scroll(delta int) {
	w.ScrollTo(w.scroll + delta)
}

// ScrollTo sets the scroll offset, clamping silently to buffer
// bounds.
func (w *Window) ScrollTo(offset int) {
	if w.closed {
		return
	}
	if offset > w.maxScroll() {
		offset = w.maxScroll()
	}
	if offset < 0 {
		offset = 0
	}
	if offset == w.scroll {
		return
	}
	w.scroll = offset
	w.dirty = true
}

// ScrollOffset returns the index of the first visible buffer line.
func (w *Window) ScrollOffset() int { return w.scroll }

func (w *Window) maxScroll() int {
	m := len(w.buf) - w.PageSize()
	if m < 0 {
		return 0
	}
	return m
}

// Visible returns the buffer slice the viewport currently shows.
func (w *Window) Visible() []string {
	start := w.scroll
	if start > len(w.buf) {
		start = len(w.buf)
	}
	end := start + w.PageSize()
	if end > len(w.buf) {
		end = len(w.buf)
	}
	return w.buf[start:end]
}

// SetOverride installs a window-specific binding that takes
// precedence over type and global defaults. Reserved keys cannot be
// overridden.
func (w *Window) SetOverride(s key.Stroke, action string) error {
	if w.closed {
		return ErrWindowClosed
	}
	s = s.Normalize()
	if input.IsReserved(s) {
		return &input.ReservedKeyError{Stroke: s}
	}
	w.overrides[s] = action
	return nil
}

// ClearOverride removes a window-specific binding.
func (w *Window) ClearOverride(s key.Stroke) {
	delete(w.overrides, s.Normalize())
}

// Override returns the window-specific action for a stroke, if any.
func (w *Window) Override(s key.Stroke) (string, bool) {
	action, ok := w.overrides[s]
	return action, ok
}

// SetCursor places the window cursor at inner-content coordinates
// and makes it visible while the window is focused.
func (w *Window) SetCursor(x, y int) {
	w.cursorX = x
	w.cursorY = y
	w.cursorOn = true
	w.dirty = true
}

// HideCursor conceals the window cursor.
func (w *Window) HideCursor() {
	if !w.cursorOn {
		return
	}
	w.cursorOn = false
	w.dirty = true
}

// Dirty reports whether the window needs repainting.
func (w *Window) Dirty() bool { return w.dirty }

// setRect moves the window during surface resize, re-clamping the
// scroll offset to the new viewport height.
func (w *Window) setRect(r Rect) {
	w.rect = r
	if w.scroll > w.maxScroll() {
		w.scroll = w.maxScroll()
	}
	w.dirty = true
}

// paint draws the frame and visible buffer slice into the backend's
// staging buffer. The surface batches the actual flush.
func (w *Window) paint(b backend.Backend) {
	b.Fill(w.rect.X, w.rect.Y, w.rect.W, w.rect.H, backend.EmptyCell())

	if w.border != BorderNone {
		w.paintFrame(b)
	}

	inner := w.inner()
	lines := w.Visible()
	for row := 0; row < inner.H; row++ {
		if row >= len(lines) {
			break
		}
		paintText(b, inner.X, inner.Y+row, inner.W, lines[row], backend.StyleDefault)
	}

	w.dirty = false
}

func (w *Window) paintFrame(b backend.Backend) {
	r := w.rect
	if r.W < 2 || r.H < 2 {
		return
	}

	style := backend.StyleDefault
	if w.focused {
		style.Bold = true
	}
	runes := w.border.runes()

	b.SetCell(r.X, r.Y, backend.Cell{Rune: runes[borderTL], Style: style})
	b.SetCell(r.Right()-1, r.Y, backend.Cell{Rune: runes[borderTR], Style: style})
	b.SetCell(r.X, r.Bottom()-1, backend.Cell{Rune: runes[borderBL], Style: style})
	b.SetCell(r.Right()-1, r.Bottom()-1, backend.Cell{Rune: runes[borderBR], Style: style})

	for x := r.X + 1; x < r.Right()-1; x++ {
		b.SetCell(x, r.Y, backend.Cell{Rune: runes[borderH], Style: style})
		b.SetCell(x, r.Bottom()-1, backend.Cell{Rune: runes[borderH], Style: style})
	}
	for y := r.Y + 1; y < r.Bottom()-1; y++ {
		b.SetCell(r.X, y, backend.Cell{Rune: runes[borderV], Style: style})
		b.SetCell(r.Right()-1, y, backend.Cell{Rune: runes[borderV], Style: style})
	}

	if w.title != "" && r.W > 4 {
		title := " " + runewidth.Truncate(w.title, r.W-4, "…") + " "
		x := r.X + (r.W-runewidth.StringWidth(title))/2
		paintText(b, x, r.Y, r.W-2, title, style)
	}
}

// paintText writes a single line, truncating by display width.
// Zero-width runes are skipped; wide runes that would straddle the
// right edge are dropped.
func paintText(b backend.Backend, x, y, width int, text string, style backend.Style) {
	col := 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > width {
			break
		}
		b.SetCell(x+col, y, backend.Cell{Rune: r, Style: style})
		col += rw
	}
}
