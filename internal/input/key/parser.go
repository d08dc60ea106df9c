package key

import (
	"errors"
	"fmt"
	"strings"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into a Stroke.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Key names: "enter", "escape", "tab", "space", "pgup"
//   - With modifiers: "ctrl+p", "Ctrl+Shift+F5", "alt+x"
func Parse(spec string) (Stroke, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Stroke{}, ErrEmptySpec
	}

	// "+" alone is a bindable character, not a modifier separator.
	if strings.Contains(spec, "+") && spec != "+" {
		return parseModified(spec)
	}
	return parsePlain(spec, ModNone)
}

// parseModified parses "mod+...+key" notation.
func parseModified(spec string) (Stroke, error) {
	parts := strings.Split(spec, "+")

	// A trailing "+" means the key itself is '+', as in "ctrl++".
	if parts[len(parts)-1] == "" {
		parts[len(parts)-1] = "+"
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Stroke{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}
	return parsePlain(strings.TrimSpace(parts[len(parts)-1]), mods)
}

// parsePlain parses a bare character or key name with known modifiers.
func parsePlain(spec string, mods Modifier) (Stroke, error) {
	if spec == "" {
		return Stroke{}, ErrInvalidSpec
	}

	if k := FromName(spec); k != KeyNone {
		return SpecialStroke(k, mods), nil
	}
	if strings.EqualFold(spec, "space") {
		return NewStroke(KeyRune, ' ', mods), nil
	}

	runes := []rune(spec)
	if len(runes) == 1 {
		return NewStroke(KeyRune, runes[0], mods), nil
	}

	return Stroke{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, spec)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Stroke {
	s, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return s
}
