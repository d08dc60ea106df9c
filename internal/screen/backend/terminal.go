package backend

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/termwin/internal/input/key"
)

// Terminal implements Backend on a real terminal using tcell.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
	fini   bool
}

// NewTerminal creates a terminal backend. It fails when no usable
// terminal is attached to the process.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}

	// Keyboard only. Mouse and bracketed paste stay disabled.
	t.screen.HideCursor()

	return nil
}

func (t *Terminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fini {
		return
	}
	t.fini = true
	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, cell Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetContent(x, y, cell.Rune, nil, convertStyle(cell.Style))
}

func (t *Terminal) Fill(x, y, width, height int, cell Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	style := convertStyle(cell.Style)
	maxW, maxH := t.screen.Size()

	for row := y; row < y+height && row < maxH; row++ {
		for col := x; col < x+width && col < maxW; col++ {
			if col >= 0 && row >= 0 {
				t.screen.SetContent(col, row, cell.Rune, nil, style)
			}
		}
	}
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.ShowCursor(x, y)
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

func (t *Terminal) HasColor() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Colors() > 0
}

// PollEvent blocks until tcell delivers an event. After Fini, tcell
// returns nil and the poll reports false.
func (t *Terminal) PollEvent() (Event, bool) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return Event{}, false
		}
		converted := convertEvent(ev)
		if converted.Type == EventNone {
			continue
		}
		if converted.Type == EventResize {
			t.mu.Lock()
			t.screen.Sync()
			t.mu.Unlock()
		}
		return converted, true
	}
}

func (t *Terminal) PostEvent(ev Event) {
	if ev.Type != EventKey {
		return
	}
	tk, r, mods := convertToTcellKey(ev.Stroke)
	_ = t.screen.PostEvent(tcell.NewEventKey(tk, r, mods)) // best-effort; queue may be full
}

func (t *Terminal) Beep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	_ = t.screen.Beep() // best-effort; terminal may not support beep
}

// convertStyle converts our Style to tcell.Style.
func convertStyle(s Style) tcell.Style {
	style := tcell.StyleDefault
	if s.Bold {
		style = style.Bold(true)
	}
	if s.Dim {
		style = style.Dim(true)
	}
	if s.Reverse {
		style = style.Reverse(true)
	}
	if s.Underline {
		style = style.Underline(true)
	}
	return style
}

// convertEvent converts tcell events to our Event type.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		s := convertKeyEvent(e)
		if s.IsZero() {
			return Event{Type: EventNone}
		}
		return Event{Type: EventKey, Stroke: s, When: e.When()}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h, When: e.When()}

	default:
		return Event{Type: EventNone, When: time.Now()}
	}
}

// convertKeyEvent converts a tcell key event to a normalized stroke.
// Tab, Enter, Backspace, and Escape share key codes with their Ctrl
// aliases in tcell, so the explicit cases must run before the Ctrl
// letter range is folded.
func convertKeyEvent(ev *tcell.EventKey) key.Stroke {
	mods := convertMod(ev.Modifiers())

	switch k := ev.Key(); k {
	case tcell.KeyRune:
		return key.NewStroke(key.KeyRune, ev.Rune(), mods)
	case tcell.KeyEscape:
		return key.NewStroke(key.KeyEscape, 0, mods)
	case tcell.KeyEnter:
		return key.NewStroke(key.KeyEnter, 0, mods)
	case tcell.KeyTab:
		return key.NewStroke(key.KeyTab, 0, mods)
	case tcell.KeyBacktab:
		return key.NewStroke(key.KeyBacktab, 0, mods)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.NewStroke(key.KeyBackspace, 0, mods)
	case tcell.KeyDelete:
		return key.NewStroke(key.KeyDelete, 0, mods)
	case tcell.KeyInsert:
		return key.NewStroke(key.KeyInsert, 0, mods)
	case tcell.KeyHome:
		return key.NewStroke(key.KeyHome, 0, mods)
	case tcell.KeyEnd:
		return key.NewStroke(key.KeyEnd, 0, mods)
	case tcell.KeyPgUp:
		return key.NewStroke(key.KeyPageUp, 0, mods)
	case tcell.KeyPgDn:
		return key.NewStroke(key.KeyPageDown, 0, mods)
	case tcell.KeyUp:
		return key.NewStroke(key.KeyUp, 0, mods)
	case tcell.KeyDown:
		return key.NewStroke(key.KeyDown, 0, mods)
	case tcell.KeyLeft:
		return key.NewStroke(key.KeyLeft, 0, mods)
	case tcell.KeyRight:
		return key.NewStroke(key.KeyRight, 0, mods)
	default:
		if k >= tcell.KeyF1 && k <= tcell.KeyF12 {
			return key.NewStroke(key.KeyF1+key.Key(k-tcell.KeyF1), 0, mods)
		}
		if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			r := rune('a' + k - tcell.KeyCtrlA)
			return key.NewStroke(key.KeyRune, r, mods.With(key.ModCtrl))
		}
		return key.Stroke{}
	}
}

// convertMod converts tcell modifiers to our Modifier type.
func convertMod(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(key.ModMeta)
	}
	return mods
}

// convertToTcellKey converts a stroke back to tcell event parameters.
func convertToTcellKey(s key.Stroke) (tcell.Key, rune, tcell.ModMask) {
	var mods tcell.ModMask
	if s.Mods.HasShift() {
		mods |= tcell.ModShift
	}
	if s.Mods.HasCtrl() {
		mods |= tcell.ModCtrl
	}
	if s.Mods.HasAlt() {
		mods |= tcell.ModAlt
	}
	if s.Mods.HasMeta() {
		mods |= tcell.ModMeta
	}

	switch s.Key {
	case key.KeyRune:
		if s.Mods.HasCtrl() && s.Rune >= 'a' && s.Rune <= 'z' {
			return tcell.KeyCtrlA + tcell.Key(s.Rune-'a'), s.Rune, mods
		}
		return tcell.KeyRune, s.Rune, mods
	case key.KeyEscape:
		return tcell.KeyEscape, 0, mods
	case key.KeyEnter:
		return tcell.KeyEnter, 0, mods
	case key.KeyTab:
		return tcell.KeyTab, 0, mods
	case key.KeyBacktab:
		return tcell.KeyBacktab, 0, mods
	case key.KeyBackspace:
		return tcell.KeyBackspace2, 0, mods
	case key.KeyDelete:
		return tcell.KeyDelete, 0, mods
	case key.KeyInsert:
		return tcell.KeyInsert, 0, mods
	case key.KeyHome:
		return tcell.KeyHome, 0, mods
	case key.KeyEnd:
		return tcell.KeyEnd, 0, mods
	case key.KeyPageUp:
		return tcell.KeyPgUp, 0, mods
	case key.KeyPageDown:
		return tcell.KeyPgDn, 0, mods
	case key.KeyUp:
		return tcell.KeyUp, 0, mods
	case key.KeyDown:
		return tcell.KeyDown, 0, mods
	case key.KeyLeft:
		return tcell.KeyLeft, 0, mods
	case key.KeyRight:
		return tcell.KeyRight, 0, mods
	default:
		if s.Key.IsFunctionKey() {
			return tcell.KeyF1 + tcell.Key(s.Key-key.KeyF1), 0, mods
		}
		return tcell.KeyRune, s.Rune, mods
	}
}
