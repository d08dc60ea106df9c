package key

import (
	"strings"
	"unicode"
)

// Stroke is a single key press: key code, character for rune keys, and
// active modifiers. It is comparable and used directly as the lookup
// key in binding tables.
type Stroke struct {
	Key  Key
	Rune rune
	Mods Modifier
}

// NewStroke builds a normalized stroke.
func NewStroke(k Key, r rune, mods Modifier) Stroke {
	return Stroke{Key: k, Rune: r, Mods: mods}.Normalize()
}

// RuneStroke builds a normalized stroke for a plain character.
func RuneStroke(r rune) Stroke {
	return NewStroke(KeyRune, r, ModNone)
}

// CtrlStroke builds a normalized stroke for a Ctrl+letter combination.
func CtrlStroke(r rune) Stroke {
	return NewStroke(KeyRune, r, ModCtrl)
}

// SpecialStroke builds a normalized stroke for a non-character key.
func SpecialStroke(k Key, mods Modifier) Stroke {
	return NewStroke(k, 0, mods)
}

// Normalize canonicalizes a stroke so that parsed binding specs and
// terminal events compare equal:
//   - rune strokes drop Shift (case is carried by the rune itself)
//   - Ctrl combinations fold the rune to lowercase
//   - rune strokes with no character collapse to KeyNone
//   - special keys keep their character field empty
func (s Stroke) Normalize() Stroke {
	if s.Key == KeyRune {
		if s.Rune == 0 {
			return Stroke{Key: KeyNone}
		}
		s.Mods = s.Mods.Without(ModShift)
		if s.Mods.HasCtrl() {
			s.Rune = unicode.ToLower(s.Rune)
		}
		return s
	}
	s.Rune = 0
	return s
}

// IsRune returns true if this is a character stroke.
func (s Stroke) IsRune() bool {
	return s.Key == KeyRune && s.Rune != 0
}

// IsZero returns true for the empty stroke.
func (s Stroke) IsZero() bool {
	return s.Key == KeyNone && s.Rune == 0 && s.Mods == ModNone
}

// String returns a compact canonical form: "q", "C-p", "Tab", "S-Tab".
func (s Stroke) String() string {
	var parts []string
	if s.Mods.HasCtrl() {
		parts = append(parts, "C")
	}
	if s.Mods.HasAlt() {
		parts = append(parts, "A")
	}
	if s.Mods.HasMeta() {
		parts = append(parts, "M")
	}
	if s.Mods.HasShift() && s.Key != KeyRune {
		parts = append(parts, "S")
	}

	switch {
	case s.Key == KeyRune && s.Rune == ' ':
		parts = append(parts, "Space")
	case s.Key == KeyRune:
		parts = append(parts, string(s.Rune))
	default:
		parts = append(parts, s.Key.String())
	}
	return strings.Join(parts, "-")
}
