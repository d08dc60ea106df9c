// Package backend provides the terminal device abstraction for the
// screen surface. The Backend interface covers the small set of
// primitives the toolkit needs: cell writes, batched refresh, cursor
// control, and a blocking event poll. Terminal implements it on tcell;
// NullBackend implements it in memory for tests.
package backend

import (
	"time"

	"github.com/dshills/termwin/internal/input/key"
)

// Style carries the display attributes a cell can be drawn with.
// Color theming is out of scope; attribute styling is enough to
// distinguish focused borders and emphasized text.
type Style struct {
	Bold      bool
	Dim       bool
	Reverse   bool
	Underline bool
}

// StyleDefault is the zero style: terminal defaults, no attributes.
var StyleDefault = Style{}

// Cell is a single screen position: a rune and its style.
type Cell struct {
	Rune  rune
	Style Style
}

// EmptyCell returns a blank cell with default styling.
func EmptyCell() Cell {
	return Cell{Rune: ' '}
}

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
)

// Event represents a terminal event. Key events carry a normalized
// stroke; resize events carry the new dimensions.
type Event struct {
	Type   EventType
	Stroke key.Stroke
	Width  int
	Height int
	When   time.Time
}

// KeyEvent builds a key event for the given stroke.
func KeyEvent(s key.Stroke) Event {
	return Event{Type: EventKey, Stroke: s, When: time.Now()}
}

// ResizeEvent builds a resize event for the given dimensions.
func ResizeEvent(width, height int) Event {
	return Event{Type: EventResize, Width: width, Height: height, When: time.Now()}
}

// Backend abstracts the terminal device.
//
// Draw calls accumulate in the backend's internal buffer; nothing
// reaches the device until Show. PollEvent blocks until an event
// arrives or the backend shuts down, in which case it reports false.
type Backend interface {
	// Init acquires the terminal and enters raw mode.
	Init() error

	// Fini releases the terminal. Safe to call more than once.
	Fini()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// SetCell stages a rune at the given position. Writes outside the
	// terminal bounds are discarded.
	SetCell(x, y int, cell Cell)

	// Fill stages a rectangular region of identical cells.
	Fill(x, y, width, height int, cell Cell)

	// Clear stages a blank screen.
	Clear()

	// Show flushes all staged writes to the device in one batch.
	Show()

	// ShowCursor places and reveals the hardware cursor.
	ShowCursor(x, y int)

	// HideCursor conceals the hardware cursor.
	HideCursor()

	// HasColor reports whether the device supports color output.
	HasColor() bool

	// PollEvent blocks for the next event. It reports false once the
	// backend has shut down and no further events will arrive.
	PollEvent() (Event, bool)

	// PostEvent injects an event into the poll queue. Best-effort:
	// the event is dropped if the queue is full.
	PostEvent(ev Event)

	// Beep sounds the terminal bell.
	Beep()
}

// NullBackend is an in-memory backend for testing. It records cell
// writes into a grid and serves injected events from a queue.
type NullBackend struct {
	width, height int
	cells         [][]Cell
	shown         [][]Cell
	cursorX       int
	cursorY       int
	cursorVisible bool
	showCount     int
	finiCount     int
	initErr       error
	events        chan Event
	done          chan struct{}
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 128),
		done:   make(chan struct{}),
	}
}

// FailInit makes the next Init call return err.
func (b *NullBackend) FailInit(err error) {
	b.initErr = err
}

func (b *NullBackend) Init() error {
	if b.initErr != nil {
		return b.initErr
	}
	b.cells = newGrid(b.width, b.height)
	b.shown = newGrid(b.width, b.height)
	return nil
}

func (b *NullBackend) Fini() {
	b.finiCount++
	if b.finiCount == 1 {
		close(b.done)
	}
}

func (b *NullBackend) Size() (int, int) {
	return b.width, b.height
}

func (b *NullBackend) SetCell(x, y int, cell Cell) {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		b.cells[y][x] = cell
	}
}

func (b *NullBackend) Fill(x, y, width, height int, cell Cell) {
	for row := y; row < y+height && row < b.height; row++ {
		for col := x; col < x+width && col < b.width; col++ {
			if col >= 0 && row >= 0 {
				b.cells[row][col] = cell
			}
		}
	}
}

func (b *NullBackend) Clear() {
	empty := EmptyCell()
	for y := range b.cells {
		for x := range b.cells[y] {
			b.cells[y][x] = empty
		}
	}
}

func (b *NullBackend) Show() {
	b.showCount++
	for y := range b.cells {
		copy(b.shown[y], b.cells[y])
	}
}

func (b *NullBackend) ShowCursor(x, y int) {
	b.cursorX = x
	b.cursorY = y
	b.cursorVisible = true
}

func (b *NullBackend) HideCursor() {
	b.cursorVisible = false
}

func (b *NullBackend) HasColor() bool { return true }

func (b *NullBackend) PollEvent() (Event, bool) {
	select {
	case ev := <-b.events:
		return ev, true
	case <-b.done:
		return Event{}, false
	}
}

func (b *NullBackend) PostEvent(ev Event) {
	select {
	case b.events <- ev:
	default:
		// Queue full; event dropped, same as the terminal backend.
	}
}

func (b *NullBackend) Beep() {}

// Resize changes the backend dimensions and injects the matching
// resize event, simulating a terminal window resize.
func (b *NullBackend) Resize(width, height int) {
	b.width = width
	b.height = height
	b.cells = newGrid(width, height)
	b.shown = newGrid(width, height)
	b.PostEvent(ResizeEvent(width, height))
}

// CellAt returns the staged cell at the given position for testing.
func (b *NullBackend) CellAt(x, y int) Cell {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		return b.cells[y][x]
	}
	return EmptyCell()
}

// Row returns the staged runes of row y as a string for testing.
func (b *NullBackend) Row(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	runes := make([]rune, 0, b.width)
	for x := 0; x < b.width; x++ {
		r := b.cells[y][x].Rune
		if r == 0 {
			r = ' '
		}
		runes = append(runes, r)
	}
	return string(runes)
}

// CursorPosition returns the cursor position for testing.
func (b *NullBackend) CursorPosition() (int, int) {
	return b.cursorX, b.cursorY
}

// CursorVisible reports cursor visibility for testing.
func (b *NullBackend) CursorVisible() bool {
	return b.cursorVisible
}

// ShowCount returns how many times Show has been called.
func (b *NullBackend) ShowCount() int {
	return b.showCount
}

// FiniCount returns how many times Fini has been called.
func (b *NullBackend) FiniCount() int {
	return b.finiCount
}

func newGrid(width, height int) [][]Cell {
	grid := make([][]Cell, height)
	for i := range grid {
		grid[i] = make([]Cell, width)
		for j := range grid[i] {
			grid[i][j] = EmptyCell()
		}
	}
	return grid
}
