// Package key defines keyboard key codes, modifiers, and the Stroke
// type used throughout input handling.
//
// Core types:
//   - Key: identifies special keys (Enter, Tab, arrows, F1-F12)
//   - Modifier: modifier key bitmask (Ctrl, Alt, Shift, Meta)
//   - Stroke: a comparable (key, rune, modifiers) triple used as the
//     lookup key in binding tables
//
// Binding specifications are parsed with Parse:
//   - Single character: "a", "A", "@"
//   - Key names: "enter", "escape", "pgup"
//   - With modifiers: "ctrl+p", "alt+f4"
//
// Strokes are normalized so a parsed spec and a terminal key event
// always produce the same map key.
package key
