// Package ffi exposes the process-wide backend through plain status codes,
// in the shape a C caller expects: every fallible call returns a
// logbridge.Status instead of an error and levels travel as raw integers.
//
// Level values: 1 error, 2 warn, 3 info, 4 debug, 5 trace.
package ffi

import (
	"github.com/lixenwraith/logbridge"
)

// Level is a raw level as received from a foreign caller
type Level = uint32

// Setup registers the process-wide backend. Calling it again is harmless.
// StatusRegistrationFailure is permanent.
func Setup() logbridge.Status {
	return logbridge.StatusOf(logbridge.Setup())
}

// Set attaches sink at level. sink must not be nil, and the caller keeps it
// valid until Unset returns it.
func Set(sink logbridge.RawSink, level Level) logbridge.Status {
	return logbridge.StatusOf(logbridge.Attach(sink, logbridge.Level(level)))
}

// IsSetup reports whether Setup has succeeded.
func IsSetup() bool {
	return logbridge.IsSetup()
}

// Log emits msg at level. msg must be valid UTF-8.
func Log(msg []byte, level Level) logbridge.Status {
	return logbridge.StatusOf(logbridge.LogDirect(msg, logbridge.Level(level)))
}

// SetMaxLevel sets the facade threshold. Values above trace are clamped and
// 0 turns the facade off.
func SetMaxLevel(level Level) {
	if level > Level(logbridge.LevelTrace) {
		level = Level(logbridge.LevelTrace)
	}
	logbridge.SetMaxLevel(logbridge.Level(level))
}

// Unset detaches and returns the sink, or nil if none was attached.
func Unset() logbridge.RawSink {
	return logbridge.Detach()
}

// Flush flushes the attached sink.
func Flush() {
	logbridge.Flush()
}
