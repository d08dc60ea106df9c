// Package logbridge redirects conventional logging into the UI.
//
// A raw-mode terminal and stderr logging cannot coexist: any write to
// the standard streams tears the painted screen. The bridge installs
// itself as the process-wide slog default (capturing the legacy log
// package along the way), queues every record in a bounded FIFO, and
// lets the UI driver drain the queue into a designated window once
// per tick. Producers on any goroutine only ever touch the queue.
//
// When the queue overflows, the oldest records are dropped and the
// loss surfaces as a single warning record on the next drain rather
// than one warning per dropped line.
package logbridge
