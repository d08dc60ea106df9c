package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/termwin/internal/input/key"
)

func TestNullBackendGrid(t *testing.T) {
	b := NewNullBackend(10, 4)
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	b.SetCell(0, 0, Cell{Rune: 'a'})
	b.SetCell(9, 3, Cell{Rune: 'z'})
	b.SetCell(10, 0, Cell{Rune: 'x'}) // out of bounds, discarded
	b.SetCell(0, 4, Cell{Rune: 'x'})  // out of bounds, discarded

	if got := b.CellAt(0, 0).Rune; got != 'a' {
		t.Errorf("CellAt(0,0) = %q, want %q", got, 'a')
	}
	if got := b.CellAt(9, 3).Rune; got != 'z' {
		t.Errorf("CellAt(9,3) = %q, want %q", got, 'z')
	}
	if got := b.CellAt(10, 0).Rune; got != ' ' {
		t.Errorf("CellAt(10,0) = %q, want blank", got)
	}
}

func TestNullBackendFill(t *testing.T) {
	b := NewNullBackend(6, 3)
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	b.Fill(1, 1, 3, 2, Cell{Rune: '#'})

	if got := b.Row(0); got != "      " {
		t.Errorf("Row(0) = %q, want blank", got)
	}
	if got := b.Row(1); got != " ###  " {
		t.Errorf("Row(1) = %q, want %q", got, " ###  ")
	}
	if got := b.Row(2); got != " ###  " {
		t.Errorf("Row(2) = %q, want %q", got, " ###  ")
	}
}

func TestNullBackendFillClips(t *testing.T) {
	b := NewNullBackend(4, 2)
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	// Overruns both dimensions; must clip instead of panic.
	b.Fill(2, 1, 10, 10, Cell{Rune: '*'})

	if got := b.Row(1); got != "  **" {
		t.Errorf("Row(1) = %q, want %q", got, "  **")
	}
}

func TestNullBackendEvents(t *testing.T) {
	b := NewNullBackend(10, 4)
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	b.PostEvent(KeyEvent(key.RuneStroke('q')))

	ev, ok := b.PollEvent()
	if !ok {
		t.Fatal("PollEvent() reported closed with event pending")
	}
	if ev.Type != EventKey {
		t.Fatalf("PollEvent() type = %v, want EventKey", ev.Type)
	}
	if ev.Stroke != key.RuneStroke('q') {
		t.Errorf("PollEvent() stroke = %v, want q", ev.Stroke)
	}
}

func TestNullBackendPollAfterFini(t *testing.T) {
	b := NewNullBackend(10, 4)
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	done := make(chan bool, 1)
	go func() {
		_, ok := b.PollEvent()
		done <- ok
	}()

	b.Fini()

	select {
	case ok := <-done:
		if ok {
			t.Error("PollEvent() reported open after Fini")
		}
	case <-time.After(time.Second):
		t.Fatal("PollEvent() did not unblock after Fini")
	}

	// Fini is idempotent.
	b.Fini()
	if got := b.FiniCount(); got != 2 {
		t.Errorf("FiniCount() = %d, want 2", got)
	}
}

func TestNullBackendResize(t *testing.T) {
	b := NewNullBackend(10, 4)
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	b.Resize(20, 8)

	ev, ok := b.PollEvent()
	if !ok {
		t.Fatal("PollEvent() reported closed")
	}
	if ev.Type != EventResize {
		t.Fatalf("PollEvent() type = %v, want EventResize", ev.Type)
	}
	if ev.Width != 20 || ev.Height != 8 {
		t.Errorf("resize = %dx%d, want 20x8", ev.Width, ev.Height)
	}
	if w, h := b.Size(); w != 20 || h != 8 {
		t.Errorf("Size() = %dx%d, want 20x8", w, h)
	}
}

func TestNullBackendFailInit(t *testing.T) {
	wantErr := errors.New("no tty")
	b := NewNullBackend(10, 4)
	b.FailInit(wantErr)

	if err := b.Init(); !errors.Is(err, wantErr) {
		t.Errorf("Init() error = %v, want %v", err, wantErr)
	}
}

func TestConvertKeyEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want key.Stroke
	}{
		{
			name: "plain rune",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
			want: key.RuneStroke('q'),
		},
		{
			name: "shifted rune drops shift",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'Q', tcell.ModShift),
			want: key.RuneStroke('Q'),
		},
		{
			name: "ctrl letter folds to lowercase rune",
			ev:   tcell.NewEventKey(tcell.KeyCtrlP, rune(0x10), tcell.ModCtrl),
			want: key.CtrlStroke('p'),
		},
		{
			name: "ctrl-x",
			ev:   tcell.NewEventKey(tcell.KeyCtrlX, rune(0x18), tcell.ModCtrl),
			want: key.CtrlStroke('x'),
		},
		{
			name: "tab is tab not ctrl-i",
			ev:   tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone),
			want: key.SpecialStroke(key.KeyTab, key.ModNone),
		},
		{
			name: "enter is enter not ctrl-m",
			ev:   tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
			want: key.SpecialStroke(key.KeyEnter, key.ModNone),
		},
		{
			name: "backtab",
			ev:   tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModShift),
			want: key.SpecialStroke(key.KeyBacktab, key.ModShift),
		},
		{
			name: "arrow up",
			ev:   tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone),
			want: key.SpecialStroke(key.KeyUp, key.ModNone),
		},
		{
			name: "page down",
			ev:   tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone),
			want: key.SpecialStroke(key.KeyPageDown, key.ModNone),
		},
		{
			name: "function key",
			ev:   tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone),
			want: key.SpecialStroke(key.KeyF5, key.ModNone),
		},
		{
			name: "backspace2 maps to backspace",
			ev:   tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone),
			want: key.SpecialStroke(key.KeyBackspace, key.ModNone),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertKeyEvent(tt.ev)
			if got != tt.want {
				t.Errorf("convertKeyEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvertKeyRoundTrip(t *testing.T) {
	strokes := []key.Stroke{
		key.RuneStroke('a'),
		key.RuneStroke('Z'),
		key.CtrlStroke('p'),
		key.CtrlStroke('x'),
		key.SpecialStroke(key.KeyTab, key.ModNone),
		key.SpecialStroke(key.KeyEnter, key.ModNone),
		key.SpecialStroke(key.KeyUp, key.ModNone),
		key.SpecialStroke(key.KeyPageUp, key.ModNone),
		key.SpecialStroke(key.KeyF9, key.ModNone),
		key.SpecialStroke(key.KeyDelete, key.ModAlt),
	}

	for _, s := range strokes {
		t.Run(s.String(), func(t *testing.T) {
			tk, r, mods := convertToTcellKey(s)
			got := convertKeyEvent(tcell.NewEventKey(tk, r, mods))
			if got != s {
				t.Errorf("round trip = %v, want %v", got, s)
			}
		})
	}
}

func TestConvertStyle(t *testing.T) {
	style := convertStyle(Style{Bold: true, Reverse: true})
	_, _, attrs := style.Decompose()

	if attrs&tcell.AttrBold == 0 {
		t.Error("bold attribute not set")
	}
	if attrs&tcell.AttrReverse == 0 {
		t.Error("reverse attribute not set")
	}
	if attrs&tcell.AttrDim != 0 {
		t.Error("dim attribute set unexpectedly")
	}
}
