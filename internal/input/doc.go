// Package input resolves keystrokes to action identifiers.
//
// Resolution is a three-tier lookup with fixed precedence: the
// focused window's own overrides win over its window-type defaults,
// which win over the global defaults. A handful of strokes (window
// switch, quit) are reserved: they are handled before the layered
// lookup and rebinding them fails at registration time.
package input
