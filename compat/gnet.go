package compat

import (
	"fmt"
	"os"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/logbridge/facade"
)

// GnetModule is the module path stamped on gnet records unless overridden
const GnetModule = "gnet"

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter implements gnet's logging.Logger on top of a facade dispatcher
type GnetAdapter struct {
	d            *facade.Dispatcher
	module       string
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(d *facade.Dispatcher, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		d:      d,
		module: GnetModule,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// WithGnetModule overrides the module path of gnet records
func WithGnetModule(module string) GnetOption {
	return func(a *GnetAdapter) {
		a.module = module
	}
}

func (a *GnetAdapter) logf(level facade.Level, format string, args []any) {
	if !a.d.Enabled(level) {
		return
	}
	emit(a.d, level, a.module, fmt.Sprintf(format, args...))
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logf(facade.LevelDebug, format, args)
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logf(facade.LevelInfo, format, args)
}

// Warnf logs at warn level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logf(facade.LevelWarn, format, args)
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logf(facade.LevelError, format, args)
}

// Fatalf logs at error level, flushes and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	emit(a.d, facade.LevelError, a.module, "fatal: "+msg)

	// Ensure log is flushed before exit
	a.d.Flush()

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
