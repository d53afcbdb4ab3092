// Package compat adapts third-party logging interfaces (gnet, fasthttp, zap,
// log/slog) onto a facade.Dispatcher, so library output ends up in the same
// sink as the application's own records.
package compat

import (
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/logbridge/facade"
)

// emit delivers one already formatted message for module.
func emit(d *facade.Dispatcher, level facade.Level, module, msg string) {
	d.LogRecord(facade.Record{
		Level:      level,
		ModulePath: module,
		Message:    msg,
		Time:       time.Now(),
	})
}

// appendField writes " key=value" to sb, quoting values that contain spaces.
func appendField(sb *strings.Builder, key string, value any) {
	sb.WriteByte(' ')
	sb.WriteString(key)
	sb.WriteByte('=')

	s := fmt.Sprint(value)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		fmt.Fprintf(sb, "%q", s)
		return
	}
	sb.WriteString(s)
}
