package compat

import (
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/logbridge/facade"
)

// ZapModule is the module path used for entries from unnamed zap loggers
const ZapModule = "zap"

var _ zapcore.Core = (*ZapCore)(nil)

// ZapCore is a zapcore.Core that forwards entries to a facade dispatcher.
// Fields are rendered as " key=value" after the message; a named logger's
// name becomes the record's module path.
type ZapCore struct {
	d      *facade.Dispatcher
	module string
	fields []zapcore.Field
}

// NewZapCore creates a core writing to d. Wrap it with zap.New.
func NewZapCore(d *facade.Dispatcher) *ZapCore {
	return &ZapCore{d: d, module: ZapModule}
}

// fromZapLevel maps zap severities onto facade levels. zap has no trace
// level, so anything below debug becomes trace.
func fromZapLevel(l zapcore.Level) facade.Level {
	switch {
	case l < zapcore.DebugLevel:
		return facade.LevelTrace
	case l == zapcore.DebugLevel:
		return facade.LevelDebug
	case l == zapcore.InfoLevel:
		return facade.LevelInfo
	case l == zapcore.WarnLevel:
		return facade.LevelWarn
	default:
		return facade.LevelError
	}
}

// Enabled follows the dispatcher's max level.
func (c *ZapCore) Enabled(l zapcore.Level) bool {
	return c.d.Enabled(fromZapLevel(l))
}

// With returns a core that adds fields to every entry.
func (c *ZapCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

// Check adds the core to ce when the entry's level is enabled.
func (c *ZapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write renders the entry and its fields as one record.
func (c *ZapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	var sb strings.Builder
	sb.WriteString(ent.Message)
	appendZapFields(&sb, c.fields)
	appendZapFields(&sb, fields)

	module := c.module
	if ent.LoggerName != "" {
		module = ent.LoggerName
	}

	c.d.LogRecord(facade.Record{
		Level:      fromZapLevel(ent.Level),
		ModulePath: module,
		Message:    sb.String(),
		Time:       ent.Time,
	})
	return nil
}

// Sync flushes the dispatcher's logger.
func (c *ZapCore) Sync() error {
	c.d.Flush()
	return nil
}

// appendZapFields encodes fields one at a time so their order is kept. A
// field that expands to several keys (zap.Inline) emits them sorted.
func appendZapFields(sb *strings.Builder, fields []zapcore.Field) {
	var keys []string
	for _, f := range fields {
		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)
		keys = keys[:0]
		for k := range enc.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendField(sb, k, enc.Fields[k])
		}
	}
}
