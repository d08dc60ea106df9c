// Package driver runs the single-threaded UI loop.
//
// The driver is the only component that blocks: one bounded-timeout
// input poll per tick. Everything else it does per tick is
// non-blocking, in a fixed order (dispatch input, flush captured
// logs, apply task status, repaint), so background activity becomes
// visible within one tick without ever racing the terminal.
package driver
