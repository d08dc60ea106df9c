package logbridge

import (
	"fmt"
	"log/slog"
	"time"
)

// Record is one captured log entry: timestamp, level, message, and
// preformatted attributes.
type Record struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   string
}

// String renders the record as a single display line.
func (r Record) String() string {
	if r.Attrs == "" {
		return fmt.Sprintf("%s %s %s", r.Time.Format("15:04:05.000"), levelLabel(r.Level), r.Message)
	}
	return fmt.Sprintf("%s %s %s%s", r.Time.Format("15:04:05.000"), levelLabel(r.Level), r.Message, r.Attrs)
}

// levelLabel returns a fixed-width level tag so window lines align.
func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN "
	case level >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}
