// Package screen manages the terminal surface and the windows drawn
// on it.
//
// Surface is the single owner of the terminal device: it enters raw
// mode, registers windows, and serializes every write through one
// batched repaint. Window is a bounded viewport with its own content
// buffer, scroll offset, border, and key overrides. Background
// goroutines never touch either; they hand content to the UI
// goroutine through the log and monitor bridges.
package screen
