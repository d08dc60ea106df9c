package logbridge

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// QueueHandler is a slog.Handler that appends every record to a
// Queue instead of writing to standard streams. It carries
// WithAttrs/WithGroup state the same way a stream handler would, but
// formatting stays cheap: attributes are flattened to one string at
// handle time.
type QueueHandler struct {
	queue  *Queue
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewQueueHandler creates a handler appending to q. A nil level
// defaults to Info.
func NewQueueHandler(q *Queue, level slog.Leveler) *QueueHandler {
	return &QueueHandler{queue: q, level: level}
}

func (h *QueueHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.level != nil {
		min = h.level.Level()
	}
	return level >= min
}

func (h *QueueHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	for _, a := range h.attrs {
		appendAttr(&sb, a, nil)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&sb, a, h.groups)
		return true
	})

	h.queue.Append(Record{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   sb.String(),
	})
	return nil
}

func (h *QueueHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		h2.attrs = append(h2.attrs, qualify(a, h.groups))
	}
	return &h2
}

func (h *QueueHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = make([]string, 0, len(h.groups)+1)
	h2.groups = append(h2.groups, h.groups...)
	h2.groups = append(h2.groups, name)
	return &h2
}

// qualify prefixes an attribute key with its group path.
func qualify(a slog.Attr, groups []string) slog.Attr {
	if len(groups) == 0 {
		return a
	}
	a.Key = strings.Join(groups, ".") + "." + a.Key
	return a
}

// appendAttr renders one attribute as " key=value", expanding groups
// inline.
func appendAttr(sb *strings.Builder, a slog.Attr, groups []string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := groups
		if a.Key != "" {
			sub = append(append([]string{}, groups...), a.Key)
		}
		for _, ga := range a.Value.Group() {
			appendAttr(sb, ga, sub)
		}
		return
	}

	a = qualify(a, groups)
	sb.WriteByte(' ')
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	s := v.String()
	if strings.ContainsAny(s, " \t\"=") {
		return strconv.Quote(s)
	}
	return s
}

// FanoutHandler duplicates records to several handlers, letting the
// queue capture coexist with an echo handler writing to a file.
type FanoutHandler struct {
	handlers []slog.Handler
}

// Fanout combines handlers. Nil entries are skipped; a single
// survivor is returned unwrapped.
func Fanout(handlers ...slog.Handler) slog.Handler {
	kept := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			kept = append(kept, h)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &FanoutHandler{handlers: kept}
}

func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &FanoutHandler{handlers: handlers}
}

func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &FanoutHandler{handlers: handlers}
}
