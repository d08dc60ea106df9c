package input

import (
	"sync"
	"time"

	"github.com/dshills/termwin/internal/input/key"
	"github.com/dshills/termwin/internal/screen/backend"
)

// Built-in action identifiers. The driver registers callables for all
// of these; applications may bind additional keys to them.
const (
	// ActionNone is the sentinel no-op returned for unmapped keys.
	ActionNone = ""

	ActionQuit         = "ui.quit"
	ActionFocusNext    = "ui.focus_next"
	ActionScrollUp     = "win.scroll_up"
	ActionScrollDown   = "win.scroll_down"
	ActionPageUp       = "win.page_up"
	ActionPageDown     = "win.page_down"
	ActionScrollTop    = "win.scroll_top"
	ActionScrollBottom = "win.scroll_bottom"
)

// reserved maps the strokes handled before layered lookup. These
// cannot be rebound in any layer: window switching and quit must stay
// reachable no matter what an application installs.
var reserved = map[key.Stroke]string{
	key.SpecialStroke(key.KeyTab, key.ModNone): ActionFocusNext,
	key.CtrlStroke('x'):                        ActionQuit,
}

// IsReserved reports whether a stroke is reserved.
func IsReserved(s key.Stroke) bool {
	_, ok := reserved[s.Normalize()]
	return ok
}

// ReservedAction returns the action a reserved stroke maps to.
func ReservedAction(s key.Stroke) (string, bool) {
	action, ok := reserved[s.Normalize()]
	return action, ok
}

// ReservedStrokes returns the reserved strokes for documentation and
// validation.
func ReservedStrokes() []key.Stroke {
	out := make([]key.Stroke, 0, len(reserved))
	for s := range reserved {
		out = append(out, s)
	}
	return out
}

// Target is the router's view of a focusable window: its type tag
// selects the default layer and its overrides form the top layer.
type Target interface {
	TypeTag() string
	Override(s key.Stroke) (string, bool)
}

// PollKind classifies what a poll returned.
type PollKind int

const (
	// PollTimeout means the bounded wait elapsed with no event.
	PollTimeout PollKind = iota
	// PollKey carries a keystroke.
	PollKey
	// PollResize carries new terminal dimensions.
	PollResize
	// PollClosed means the event source shut down.
	PollClosed
)

func (k PollKind) String() string {
	switch k {
	case PollTimeout:
		return "timeout"
	case PollKey:
		return "key"
	case PollResize:
		return "resize"
	case PollClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// PollResult is the outcome of one bounded input wait.
type PollResult struct {
	Kind   PollKind
	Stroke key.Stroke
	Width  int
	Height int
}

// Router reads terminal events and resolves keystrokes to action
// identifiers through the three-tier handler mapping: window-specific
// override, then window-type default, then global default.
type Router struct {
	mu           sync.RWMutex
	events       <-chan backend.Event
	global       Bindings
	typeDefaults map[string]Bindings
}

// NewRouter creates a router consuming the given event stream. A nil
// stream is allowed for resolve-only use; Poll then always times out.
func NewRouter(events <-chan backend.Event) *Router {
	return &Router{
		events:       events,
		global:       make(Bindings),
		typeDefaults: make(map[string]Bindings),
	}
}

// SetGlobal installs a global default binding. Reserved keys are
// rejected.
func (r *Router) SetGlobal(s key.Stroke, action string) error {
	s = s.Normalize()
	if IsReserved(s) {
		return &ReservedKeyError{Stroke: s}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global[s] = action
	return nil
}

// SetTypeDefault installs a binding in the default layer for one
// window type. Reserved keys are rejected.
func (r *Router) SetTypeDefault(typeTag string, s key.Stroke, action string) error {
	s = s.Normalize()
	if IsReserved(s) {
		return &ReservedKeyError{Stroke: s}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	layer, ok := r.typeDefaults[typeTag]
	if !ok {
		layer = make(Bindings)
		r.typeDefaults[typeTag] = layer
	}
	layer[s] = action
	return nil
}

// MergeGlobal installs a whole binding table into the global layer,
// stopping at the first reserved key.
func (r *Router) MergeGlobal(b Bindings) error {
	for s, action := range b {
		if err := r.SetGlobal(s, action); err != nil {
			return err
		}
	}
	return nil
}

// MergeTypeDefaults installs a whole binding table for one window
// type, stopping at the first reserved key.
func (r *Router) MergeTypeDefaults(typeTag string, b Bindings) error {
	for s, action := range b {
		if err := r.SetTypeDefault(typeTag, s, action); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceGlobal swaps the entire global layer, used when
// configuration reloads. Reserved keys in the table are skipped.
func (r *Router) ReplaceGlobal(b Bindings) {
	clean := make(Bindings, len(b))
	for s, action := range b {
		if !IsReserved(s) {
			clean[s] = action
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global = clean
}

// ReplaceTypeDefaults swaps one window type's default layer, used
// when configuration reloads. Reserved keys in the table are skipped.
func (r *Router) ReplaceTypeDefaults(typeTag string, b Bindings) {
	clean := make(Bindings, len(b))
	for s, action := range b {
		if !IsReserved(s) {
			clean[s] = action
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typeDefaults[typeTag] = clean
}

// Resolve maps a stroke to an action identifier using ordered lookup:
// reserved keys first, then the focused target's overrides, its type
// defaults, and the global defaults. Unmapped strokes resolve to
// ActionNone; resolution never fails.
func (r *Router) Resolve(s key.Stroke, target Target) string {
	s = s.Normalize()

	if action, ok := reserved[s]; ok {
		return action
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if target != nil {
		if action, ok := target.Override(s); ok {
			return action
		}
		if layer, ok := r.typeDefaults[target.TypeTag()]; ok {
			if action, ok := layer.Lookup(s); ok {
				return action
			}
		}
	}

	if action, ok := r.global.Lookup(s); ok {
		return action
	}
	return ActionNone
}

// Poll waits for the next terminal event with a bounded timeout, so
// the driver loop can service log and status queues even with no
// keystrokes.
func (r *Router) Poll(timeout time.Duration) PollResult {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev, ok := <-r.events:
		if !ok {
			return PollResult{Kind: PollClosed}
		}
		switch ev.Type {
		case backend.EventKey:
			return PollResult{Kind: PollKey, Stroke: ev.Stroke}
		case backend.EventResize:
			return PollResult{Kind: PollResize, Width: ev.Width, Height: ev.Height}
		default:
			return PollResult{Kind: PollTimeout}
		}
	case <-timer.C:
		return PollResult{Kind: PollTimeout}
	}
}
