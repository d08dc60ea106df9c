package input

import (
	"fmt"

	"github.com/dshills/termwin/internal/input/key"
)

// Bindings maps normalized strokes to action identifiers. It is one
// layer of the three-tier handler mapping.
type Bindings map[key.Stroke]string

// Set installs a binding.
func (b Bindings) Set(s key.Stroke, action string) {
	b[s.Normalize()] = action
}

// Lookup returns the action bound to a stroke, if any.
func (b Bindings) Lookup(s key.Stroke) (string, bool) {
	action, ok := b[s]
	return action, ok
}

// Clone returns a copy of the binding table.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for s, action := range b {
		out[s] = action
	}
	return out
}

// ParseBindings converts a spec-to-action table, as loaded from
// configuration, into a binding table. Specs follow the key package
// grammar ("q", "ctrl+p", "pgup").
func ParseBindings(specs map[string]string) (Bindings, error) {
	out := make(Bindings, len(specs))
	for spec, action := range specs {
		s, err := key.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", spec, err)
		}
		if action == "" {
			return nil, fmt.Errorf("binding %q: empty action", spec)
		}
		out[s] = action
	}
	return out, nil
}

// DefaultGlobal returns the global default binding layer: quit plus
// viewport navigation for whichever window is focused.
func DefaultGlobal() Bindings {
	b := make(Bindings)
	b.Set(key.RuneStroke('q'), ActionQuit)
	b.Set(key.SpecialStroke(key.KeyUp, key.ModNone), ActionScrollUp)
	b.Set(key.SpecialStroke(key.KeyDown, key.ModNone), ActionScrollDown)
	b.Set(key.SpecialStroke(key.KeyPageUp, key.ModNone), ActionPageUp)
	b.Set(key.SpecialStroke(key.KeyPageDown, key.ModNone), ActionPageDown)
	b.Set(key.SpecialStroke(key.KeyHome, key.ModNone), ActionScrollTop)
	b.Set(key.SpecialStroke(key.KeyEnd, key.ModNone), ActionScrollBottom)
	return b
}
