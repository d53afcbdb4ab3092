package facade

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"
)

// ErrAlreadySet is returned by SetLogger once a logger has been installed.
// There is no way to uninstall it.
var ErrAlreadySet = errors.New("facade: a logger has already been set")

// Metadata describes a record before its message is formatted
type Metadata struct {
	Level      Level
	ModulePath string
}

// Record is one log event delivered to the installed Logger
type Record struct {
	Level      Level
	ModulePath string // empty when unknown
	Message    string
	Time       time.Time
}

// Metadata returns the record's level and module path.
func (r Record) Metadata() Metadata {
	return Metadata{Level: r.Level, ModulePath: r.ModulePath}
}

// Logger is the sink side of the facade. Implementations must be safe for
// concurrent use.
type Logger interface {
	Enabled(md Metadata) bool
	Log(rec Record)
	Flush()
}

// Installation states of a Dispatcher
const (
	stateUninitialized uint32 = iota
	stateInitializing
	stateInitialized
)

// Dispatcher routes records to a single Logger that can be installed once.
// Until then every record is discarded.
type Dispatcher struct {
	state    atomic.Uint32
	logger   Logger
	maxLevel atomic.Uint32
}

// NewDispatcher returns a dispatcher with no logger and LevelOff as its max level.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// SetLogger installs l as the destination of all records. It succeeds at most
// once per Dispatcher.
func (d *Dispatcher) SetLogger(l Logger) error {
	if l == nil {
		return fmt.Errorf("facade: logger cannot be nil")
	}
	if !d.state.CompareAndSwap(stateUninitialized, stateInitializing) {
		// Wait out a concurrent install so the caller never sees a half-set logger
		for d.state.Load() == stateInitializing {
			runtime.Gosched()
		}
		return ErrAlreadySet
	}
	d.logger = l
	d.state.Store(stateInitialized)
	return nil
}

// SetMaxLevel sets the most verbose level that will be dispatched.
func (d *Dispatcher) SetMaxLevel(level Level) {
	d.maxLevel.Store(uint32(level))
}

// MaxLevel returns the current max level.
func (d *Dispatcher) MaxLevel() Level {
	return Level(d.maxLevel.Load())
}

// Enabled reports whether a record at level would pass the max level filter.
func (d *Dispatcher) Enabled(level Level) bool {
	return level.Valid() && level <= d.MaxLevel()
}

// current returns the installed logger or nil.
func (d *Dispatcher) current() Logger {
	if d.state.Load() != stateInitialized {
		return nil
	}
	return d.logger
}

// LogRecord delivers rec as-is, applying the max level and logger filters.
func (d *Dispatcher) LogRecord(rec Record) {
	if !d.Enabled(rec.Level) {
		return
	}
	l := d.current()
	if l == nil || !l.Enabled(rec.Metadata()) {
		return
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	l.Log(rec)
}

// Logf formats and dispatches a message for module. Formatting is skipped
// entirely when the record would be filtered.
func (d *Dispatcher) Logf(level Level, module string, format string, args ...any) {
	if !d.Enabled(level) {
		return
	}
	l := d.current()
	if l == nil || !l.Enabled(Metadata{Level: level, ModulePath: module}) {
		return
	}
	l.Log(Record{
		Level:      level,
		ModulePath: module,
		Message:    fmt.Sprintf(format, args...),
		Time:       time.Now(),
	})
}

// Log dispatches args joined by spaces for module.
func (d *Dispatcher) Log(level Level, module string, args ...any) {
	if !d.Enabled(level) {
		return
	}
	l := d.current()
	if l == nil || !l.Enabled(Metadata{Level: level, ModulePath: module}) {
		return
	}
	l.Log(Record{
		Level:      level,
		ModulePath: module,
		Message:    sprint(args),
		Time:       time.Now(),
	})
}

// Flush flushes the installed logger, if any.
func (d *Dispatcher) Flush() {
	if l := d.current(); l != nil {
		l.Flush()
	}
}
