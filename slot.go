package logbridge

import (
	"sync"
	"sync/atomic"
)

// slot holds the one active sink. Attach and detach take the write lock for a
// pointer swap; writers hold the read lock only around a single Write or
// Flush, so loggers run in parallel while Detach waits out in-flight writes
// before handing the handle back.
//
// While a Detach is waiting, new writers queue behind it (sync.RWMutex
// prefers writers) for as long as the slowest in-flight Write takes. Records
// are formatted before the lock is taken, and records that are filtered or
// have no sink use the lock-free snapshot, so only actual writes wait.
type slot struct {
	mu   sync.RWMutex
	sink *rawSink

	// snap mirrors sink for lock-free reads; stored only under mu
	snap atomic.Pointer[rawSink]
}

// tryAttach installs rs if the slot is empty.
func (s *slot) tryAttach(rs *rawSink) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink != nil {
		return false
	}
	s.sink = rs
	s.snap.Store(rs)
	return true
}

// swap replaces the current sink and returns the previous one.
func (s *slot) swap(rs *rawSink) *rawSink {
	s.mu.Lock()
	prev := s.sink
	s.sink = rs
	s.snap.Store(rs)
	s.mu.Unlock()
	return prev
}

// peek returns the sink attached at some recent point without locking.
// It may be stale; use with to touch the handle.
func (s *slot) peek() *rawSink {
	return s.snap.Load()
}

// attached reports whether a sink is present.
func (s *slot) attached() bool {
	return s.peek() != nil
}

// with calls fn with the current sink while it is pinned. It returns false
// without calling fn when the slot is empty.
func (s *slot) with(fn func(rs *rawSink)) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sink == nil {
		return false
	}
	fn(s.sink)
	return true
}
