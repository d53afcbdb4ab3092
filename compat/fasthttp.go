package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logbridge/facade"
)

// FastHTTPModule is the module path stamped on fasthttp records unless overridden
const FastHTTPModule = "fasthttp"

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter implements fasthttp.Logger on top of a facade dispatcher
type FastHTTPAdapter struct {
	d             *facade.Dispatcher
	module        string
	defaultLevel  facade.Level
	levelDetector func(string) facade.Level // Function to detect log level from message
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(d *facade.Dispatcher, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		d:             d,
		module:        FastHTTPModule,
		defaultLevel:  facade.LevelInfo,
		levelDetector: DetectLogLevel, // Default level detection
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when detection finds nothing
func WithDefaultLevel(level facade.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content.
// Returning LevelOff falls back to the default level.
func WithLevelDetector(detector func(string) facade.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// WithFastHTTPModule overrides the module path of fasthttp records
func WithFastHTTPModule(module string) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.module = module
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected.Valid() {
			level = detected
		}
	}

	if !a.d.Enabled(level) {
		return
	}
	emit(a.d, level, a.module, msg)
}

// DetectLogLevel guesses a level from message content
func DetectLogLevel(msg string) facade.Level {
	msgLower := strings.ToLower(msg)

	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") ||
		strings.Contains(msgLower, "fatal") ||
		strings.Contains(msgLower, "panic") {
		return facade.LevelError
	}

	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") {
		return facade.LevelWarn
	}

	if strings.Contains(msgLower, "trace") {
		return facade.LevelTrace
	}
	if strings.Contains(msgLower, "debug") {
		return facade.LevelDebug
	}

	return facade.LevelInfo
}
