package logbridge

import (
	"sync"
)

// The process-wide backend, registered with facade.Default(). It is the only
// global state in the package; Backends built with New are independent.
// The first call to Default fixes its configuration.
var (
	defaultOnce    sync.Once
	defaultBackend *Backend
)

// Default returns the process-wide backend, built from DefaultConfig on first use.
func Default() *Backend {
	defaultOnce.Do(func() {
		b, err := New(DefaultConfig())
		if err != nil {
			// defaults are validated by tests
			panic(err)
		}
		defaultBackend = b
	})
	return defaultBackend
}

// Setup registers the process-wide backend with the process-wide facade.
func Setup() error {
	return Default().Setup()
}

// IsSetup reports whether the process-wide backend is registered.
func IsSetup() bool {
	return Default().IsSetup()
}

// Attach attaches sink to the process-wide backend.
func Attach(sink RawSink, level Level) error {
	return Default().Attach(sink, level)
}

// Detach detaches and returns the process-wide backend's sink.
func Detach() RawSink {
	return Default().Detach()
}

// LogDirect emits msg through the process-wide backend.
func LogDirect(msg []byte, level Level) error {
	return Default().LogDirect(msg, level)
}

// SetMaxLevel sets the process-wide facade threshold.
func SetMaxLevel(level Level) {
	Default().SetMaxLevel(level)
}

// Flush flushes the process-wide backend's sink.
func Flush() {
	Default().Flush()
}
