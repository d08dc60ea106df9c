package screen

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/termwin/internal/input"
	"github.com/dshills/termwin/internal/input/key"
	"github.com/dshills/termwin/internal/screen/backend"
)

func newTestSurface(t *testing.T, width, height int) (*Surface, *backend.NullBackend) {
	t.Helper()
	b := backend.NewNullBackend(width, height)
	s := New(b)
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(s.Teardown)
	return s, b
}

func TestWriteLineAndScrollClamp(t *testing.T) {
	s, _ := newTestSurface(t, 40, 12)
	// Borderless window, 3 content rows.
	w, err := s.CreateWindow(Config{Rect: Rect{X: 0, Y: 0, W: 20, H: 3}})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		w.WriteLine(strings.Repeat("x", i+1))
	}

	if got := w.Lines(); got != 10 {
		t.Fatalf("Lines() = %d, want 10", got)
	}

	tests := []struct {
		name       string
		scrollTo   int
		wantOffset int
		wantFirst  string
	}{
		{"negative clamps to zero", -5, 0, "x"},
		{"in range", 4, 4, "xxxxx"},
		{"past end clamps to max", 99, 7, "xxxxxxxx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.ScrollTo(tt.scrollTo)
			if got := w.ScrollOffset(); got != tt.wantOffset {
				t.Errorf("ScrollOffset() = %d, want %d", got, tt.wantOffset)
			}
			vis := w.Visible()
			if len(vis) == 0 || vis[0] != tt.wantFirst {
				t.Errorf("Visible()[0] = %q, want %q", vis, tt.wantFirst)
			}
		})
	}
}

// A new line becomes visible after repaint if and only if the scroll
// offset places it in view.
func TestWriteLineVisibilityFollowsOffset(t *testing.T) {
	s, b := newTestSurface(t, 40, 12)
	w, err := s.CreateWindow(Config{Rect: Rect{X: 0, Y: 0, W: 20, H: 3}})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		w.WriteLine("old")
	}
	w.ScrollTo(0)
	w.WriteLine("new line")
	s.Repaint()

	for y := 0; y < 3; y++ {
		if strings.Contains(b.Row(y), "new line") {
			t.Fatalf("line visible at row %d despite offset 0", y)
		}
	}

	// Scrolled to the tail the same line must appear.
	w.ScrollTo(w.Lines())
	s.Repaint()

	found := false
	for y := 0; y < 3; y++ {
		if strings.Contains(b.Row(y), "new line") {
			found = true
		}
	}
	if !found {
		t.Error("line not visible after scrolling to tail")
	}
}

func TestFollowPinsToTail(t *testing.T) {
	s, _ := newTestSurface(t, 40, 12)
	w, err := s.CreateWindow(Config{Rect: Rect{X: 0, Y: 0, W: 20, H: 3}, Follow: true})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		w.WriteLine("line")
	}

	if got, want := w.ScrollOffset(), 7; got != want {
		t.Errorf("ScrollOffset() = %d, want %d (pinned to tail)", got, want)
	}
}

func TestWriteLineSplitsEmbeddedNewlines(t *testing.T) {
	s, _ := newTestSurface(t, 40, 12)
	w, err := s.CreateWindow(Config{Rect: Rect{X: 0, Y: 0, W: 20, H: 5}})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}

	w.WriteLine("first\nsecond\nthird\n")

	if got := w.Lines(); got != 3 {
		t.Fatalf("Lines() = %d, want 3", got)
	}
	if got := w.Line(1); got != "second" {
		t.Errorf("Line(1) = %q, want %q", got, "second")
	}
}

func TestSetLineExtendsBuffer(t *testing.T) {
	s, _ := newTestSurface(t, 40, 12)
	w, err := s.CreateWindow(Config{Rect: Rect{X: 0, Y: 0, W: 20, H: 5}})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}

	w.SetLine(2, "status row")

	if got := w.Lines(); got != 3 {
		t.Fatalf("Lines() = %d, want 3", got)
	}
	if got := w.Line(2); got != "status row" {
		t.Errorf("Line(2) = %q, want %q", got, "status row")
	}
	if got := w.Line(0); got != "" {
		t.Errorf("Line(0) = %q, want blank filler", got)
	}
}

func TestSetOverrideReservedRejected(t *testing.T) {
	s, _ := newTestSurface(t, 40, 12)
	w, err := s.CreateWindow(Config{Rect: Rect{X: 0, Y: 0, W: 20, H: 5}})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}

	err = w.SetOverride(key.SpecialStroke(key.KeyTab, key.ModNone), "stolen")
	if !errors.Is(err, input.ErrReservedKey) {
		t.Errorf("SetOverride(Tab) error = %v, want ErrReservedKey", err)
	}

	if err := w.SetOverride(key.RuneStroke('c'), "win.clear"); err != nil {
		t.Fatalf("SetOverride(c) error = %v", err)
	}
	if action, ok := w.Override(key.RuneStroke('c')); !ok || action != "win.clear" {
		t.Errorf("Override(c) = %q, %v, want win.clear", action, ok)
	}

	w.ClearOverride(key.RuneStroke('c'))
	if _, ok := w.Override(key.RuneStroke('c')); ok {
		t.Error("Override(c) still present after ClearOverride")
	}
}

func TestClosedWindowOpsAreNoOps(t *testing.T) {
	s, _ := newTestSurface(t, 40, 12)
	w, err := s.CreateWindow(Config{Rect: Rect{X: 0, Y: 0, W: 20, H: 5}})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}

	w.Close()
	w.Close() // idempotent

	w.WriteLine("dropped")
	if got := w.Lines(); got != 0 {
		t.Errorf("Lines() = %d after write to closed window, want 0", got)
	}
	if err := w.SetOverride(key.RuneStroke('c'), "x"); !errors.Is(err, ErrWindowClosed) {
		t.Errorf("SetOverride on closed window error = %v, want ErrWindowClosed", err)
	}
	if got := len(s.Windows()); got != 0 {
		t.Errorf("registry size = %d after close, want 0", got)
	}
}

func TestBorderAndTitlePainted(t *testing.T) {
	s, b := newTestSurface(t, 20, 6)
	w, err := s.CreateWindow(Config{
		Title:  "demo",
		Rect:   Rect{X: 0, Y: 0, W: 12, H: 4},
		Border: BorderSingle,
	})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}
	w.WriteLine("hi")
	s.Repaint()

	if got := b.CellAt(0, 0).Rune; got != '┌' {
		t.Errorf("top-left = %q, want ┌", got)
	}
	if got := b.CellAt(11, 3).Rune; got != '┘' {
		t.Errorf("bottom-right = %q, want ┘", got)
	}
	if top := b.Row(0); !strings.Contains(top, " demo ") {
		t.Errorf("top row = %q, want embedded title", top)
	}
	if row := b.Row(1); !strings.Contains(row, "hi") {
		t.Errorf("content row = %q, want %q inside frame", row, "hi")
	}
}

func TestFocusedBorderIsBold(t *testing.T) {
	s, b := newTestSurface(t, 20, 10)
	w1, err := s.CreateWindow(Config{Rect: Rect{X: 0, Y: 0, W: 10, H: 4}, Border: BorderSingle})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}
	w2, err := s.CreateWindow(Config{Rect: Rect{X: 0, Y: 5, W: 10, H: 4}, Border: BorderSingle})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}

	w1.Focus()
	s.Repaint()

	if !b.CellAt(0, 0).Style.Bold {
		t.Error("focused window frame not bold")
	}
	if b.CellAt(0, 5).Style.Bold {
		t.Error("unfocused window frame bold")
	}

	w2.Focus()
	s.Repaint()

	if b.CellAt(0, 0).Style.Bold {
		t.Error("frame still bold after losing focus")
	}
	if !b.CellAt(0, 5).Style.Bold {
		t.Error("newly focused frame not bold")
	}
}

func TestPaintTruncatesWideRunes(t *testing.T) {
	s, b := newTestSurface(t, 10, 3)
	w, err := s.CreateWindow(Config{Rect: Rect{X: 0, Y: 0, W: 4, H: 1}})
	if err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}

	// Three double-width runes need six columns; only two fit in four.
	w.WriteLine("日本語")
	s.Repaint()

	if got := b.CellAt(0, 0).Rune; got != '日' {
		t.Errorf("cell 0 = %q, want 日", got)
	}
	if got := b.CellAt(2, 0).Rune; got != '本' {
		t.Errorf("cell 2 = %q, want 本", got)
	}
	if got := b.CellAt(4, 0).Rune; got == '語' {
		t.Error("third wide rune painted past window edge")
	}
}
