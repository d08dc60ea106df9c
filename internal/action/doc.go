// Package action maps action identifiers to callables.
//
// The input router resolves keystrokes to identifiers; this registry
// resolves identifiers to code. Applications register Go functions;
// configuration may add Lua chunks that see the focused window and
// the logging bridge through small `win` and `log` tables. A single
// embedded Lua state serves all chunks and is driven only from the UI
// goroutine.
package action
