package logbridge

import "fmt"

// RawSink is an externally owned byte-level log writer. The backend never
// closes it; the caller keeps it valid from Attach until the Detach that
// returns it. Write reports success. Both methods may be called from many
// goroutines at once.
//
// Write and Flush must not log, neither through the facade nor through
// LogDirect or Flush on the backend, directly or from a goroutine they wait
// on. They run under the slot's read lock, and a nested read lock deadlocks
// as soon as a Detach is queued behind the outer one. A sink that needs to
// report its own errors should use a separate channel such as stderr.
type RawSink interface {
	Write(p []byte) bool
	Flush()
}

// writeResult is the outcome of handing one record to a sink
type writeResult uint8

const (
	resultFiltered writeResult = iota
	resultWritten
	resultFailed
)

// rawSink pairs an attached handle with its minimum level. Immutable.
type rawSink struct {
	handle RawSink
	level  Level
}

// enabled reports whether level is at least as severe as the sink's minimum.
func (s *rawSink) enabled(level Level) bool {
	return level != LevelOff && level <= s.level
}

// writeLine writes an already formatted line for a record at level. On
// failure the line is passed to report alongside the cause.
func (s *rawSink) writeLine(line []byte, level Level, report func(line []byte, cause any)) writeResult {
	if !s.enabled(level) {
		return resultFiltered
	}
	ok, cause := s.write(line)
	if !ok {
		report(line, cause)
		return resultFailed
	}
	return resultWritten
}

// write calls the handle, converting a panic into a failed write.
func (s *rawSink) write(p []byte) (ok bool, cause any) {
	defer func() {
		if r := recover(); r != nil {
			ok, cause = false, r
		}
	}()
	return s.handle.Write(p), nil
}

// flush forwards to the handle; a panic is returned instead of propagated.
func (s *rawSink) flush() (cause any) {
	defer func() {
		if r := recover(); r != nil {
			cause = r
		}
	}()
	s.handle.Flush()
	return nil
}

// describeCause renders a write failure for the side channel
func describeCause(cause any) string {
	if cause == nil {
		return "write returned false"
	}
	return fmt.Sprintf("panic: %v", cause)
}
