package logbridge

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// regState is the one-shot lifecycle of facade registration.
// Uninitialized -> Initializing -> Initialized | Failed, never back.
type regState uint32

const (
	stateUninitialized regState = iota
	stateInitializing
	stateInitialized
	stateFailed
)

func (s regState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateInitializing:
		return "initializing"
	case stateInitialized:
		return "initialized"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint32(s))
	}
}

// registration holds the state word shared by all goroutines
type registration struct {
	v atomic.Uint32
}

func (r *registration) load() regState {
	return regState(r.v.Load())
}

// begin claims the right to register. Only one caller ever gets true.
func (r *registration) begin() bool {
	return r.v.CompareAndSwap(uint32(stateUninitialized), uint32(stateInitializing))
}

// finish publishes the terminal state. Only the caller that won begin may call it.
func (r *registration) finish(ok bool) {
	if ok {
		r.v.Store(uint32(stateInitialized))
	} else {
		r.v.Store(uint32(stateFailed))
	}
}

// wait yields until no registration is in flight and returns the state it settled on.
func (r *registration) wait() regState {
	for {
		s := r.load()
		if s != stateInitializing {
			return s
		}
		runtime.Gosched()
	}
}
