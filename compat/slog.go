package compat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lixenwraith/logbridge/facade"
)

// SlogModule is the module path stamped on slog records unless overridden
const SlogModule = "slog"

var _ slog.Handler = (*SlogHandler)(nil)

// SlogHandler is a slog.Handler that routes records to a facade dispatcher.
type SlogHandler struct {
	d      *facade.Dispatcher
	module string
	prefix string // dotted group path applied to record attrs
	attrs  string // pre-rendered handler attrs
}

// NewSlogHandler creates a handler writing to d under module, or SlogModule when empty.
func NewSlogHandler(d *facade.Dispatcher, module string) *SlogHandler {
	if module == "" {
		module = SlogModule
	}
	return &SlogHandler{d: d, module: module}
}

// fromSlogLevel maps slog levels onto facade levels.
func fromSlogLevel(l slog.Level) facade.Level {
	switch {
	case l >= slog.LevelError:
		return facade.LevelError
	case l >= slog.LevelWarn:
		return facade.LevelWarn
	case l >= slog.LevelInfo:
		return facade.LevelInfo
	case l >= slog.LevelDebug:
		return facade.LevelDebug
	default:
		return facade.LevelTrace
	}
}

// Enabled gates by the dispatcher's max level.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.d.Enabled(fromSlogLevel(level))
}

// Handle renders the message followed by handler and record attrs.
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Message)
	sb.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&sb, h.prefix, a)
		return true
	})

	h.d.LogRecord(facade.Record{
		Level:      fromSlogLevel(r.Level),
		ModulePath: h.module,
		Message:    sb.String(),
		Time:       r.Time,
	})
	return nil
}

// WithAttrs returns a copy of the handler with additional base attributes.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&sb, h.prefix, a)
	}
	nh.attrs = sb.String()
	return &nh
}

// WithGroup returns a copy of the handler that qualifies later attrs with name.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

// appendAttr flattens groups into dotted keys and drops empty attrs.
func appendAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(sb, group, ga)
		}
		return
	}
	appendField(sb, prefix+a.Key, a.Value.Any())
}
