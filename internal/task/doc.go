// Package task runs demonstration workers against the monitor bridge.
//
// A Worker is a pure tick function: the Runner owns the goroutine,
// the ticker, and the bridge wiring, so workers never block the UI
// and never touch the terminal. Control commands (pause, resume,
// stop) are consumed at tick granularity.
package task
