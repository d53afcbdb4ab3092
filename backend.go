package logbridge

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"

	"github.com/lixenwraith/logbridge/facade"
	"github.com/lixenwraith/logbridge/formatter"
)

// Facade is the install-once logging front end the backend registers with.
// *facade.Dispatcher satisfies it.
type Facade interface {
	SetLogger(l facade.Logger) error
	SetMaxLevel(level facade.Level)
}

// Stats is a snapshot of the backend counters
type Stats struct {
	Records         uint64 // records handed to the backend
	Written         uint64 // successful sink writes
	Filtered        uint64 // records below the sink's minimum level
	Unsinked        uint64 // records that arrived while no sink was attached
	WriteFailures   uint64 // failed or panicking sink writes
	InvalidEncoding uint64 // LogDirect calls rejected for bad UTF-8
}

type counters struct {
	records         atomic.Uint64
	written         atomic.Uint64
	filtered        atomic.Uint64
	unsinked        atomic.Uint64
	writeFailures   atomic.Uint64
	invalidEncoding atomic.Uint64
}

// Backend registers itself once with a Facade and forwards every record to
// the currently attached RawSink.
type Backend struct {
	cfg       *Config
	facade    Facade
	formatter *formatter.Formatter
	errOut    io.Writer

	state registration
	slot  slot
	stats counters
}

// Option customizes a Backend at construction
type Option func(*Backend)

// WithFacade sets the facade to register with instead of facade.Default().
func WithFacade(f Facade) Option {
	return func(b *Backend) {
		b.facade = f
	}
}

// WithErrorOutput sets the side channel for internal diagnostics instead of os.Stderr.
func WithErrorOutput(w io.Writer) Option {
	return func(b *Backend) {
		b.errOut = w
	}
}

// New creates a Backend from cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config, opts ...Option) (*Backend, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, fmtErrorf("invalid configuration: %w", err)
	}
	cfg = cfg.Clone()

	b := &Backend{
		cfg:       cfg,
		facade:    facade.Default(),
		formatter: cfg.newFormatter(),
		errOut:    os.Stderr,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.facade == nil {
		return nil, fmtErrorf("facade cannot be nil")
	}
	if b.errOut == nil {
		b.errOut = io.Discard
	}
	return b, nil
}

// Config returns a copy of the configuration the backend was built with.
func (b *Backend) Config() *Config {
	return b.cfg.Clone()
}

// Setup registers the backend as the facade's logger. It is safe to call
// from many goroutines: exactly one performs the registration and all of
// them return the outcome. Once it has succeeded further calls return nil;
// once it has failed they keep returning ErrRegistrationFailure without
// retrying, because the facade cannot unregister its logger.
func (b *Backend) Setup() error {
	switch b.state.load() {
	case stateInitialized:
		return nil
	case stateFailed:
		return ErrRegistrationFailure
	}

	if !b.state.begin() {
		if b.state.wait() == stateInitialized {
			return nil
		}
		return ErrRegistrationFailure
	}

	if err := b.register(); err != nil {
		b.internalLog("error setting up logger: %v\n", err)
		b.state.finish(false)
		return fmt.Errorf("%w: %v", ErrRegistrationFailure, err)
	}
	b.state.finish(true)
	return nil
}

// register installs the backend on the facade. A panic in the facade is
// returned as an error.
func (b *Backend) register() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("facade panicked: %v", r)
		}
	}()
	if err := b.facade.SetLogger(&facadeLogger{b: b}); err != nil {
		return err
	}
	b.facade.SetMaxLevel(b.cfg.maxLevel())
	return nil
}

// IsSetup reports whether Setup has succeeded. It never blocks.
func (b *Backend) IsSetup() bool {
	return b.state.load() == stateInitialized
}

// Attach makes sink the destination for records at level or more severe.
// The backend does not take ownership: sink must stay usable until the
// Detach call that returns it has returned. A nil sink is a programming
// error and panics.
func (b *Backend) Attach(sink RawSink, level Level) error {
	if sink == nil {
		panic("logbridge: Attach called with a nil sink")
	}
	if s := b.state.load(); s != stateInitialized {
		b.internalLog("attach: error state was: %s\n", s)
		return ErrNotSetup
	}
	if !level.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidLevel, level)
	}
	if !b.slot.tryAttach(&rawSink{handle: sink, level: level}) {
		return ErrAlreadyAttached
	}
	return nil
}

// Detach removes the attached sink and returns it, or nil if none was
// attached. When Detach returns no write to the sink is in progress and
// the caller owns it again.
func (b *Backend) Detach() RawSink {
	prev := b.slot.swap(nil)
	if prev == nil {
		return nil
	}
	return prev.handle
}

// Attached reports whether a sink is currently attached.
func (b *Backend) Attached() bool {
	return b.slot.attached()
}

// LogDirect emits msg as one record at level, bypassing the facade's max
// level. Only the attached sink's minimum level filters it. Invalid UTF-8
// is rejected before anything is written.
func (b *Backend) LogDirect(msg []byte, level Level) error {
	if !utf8.Valid(msg) {
		b.stats.invalidEncoding.Add(1)
		return ErrInvalidEncoding
	}
	if !level.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidLevel, level)
	}
	b.dispatch(facade.Record{
		Level:      level,
		ModulePath: b.cfg.DirectModule,
		Message:    string(msg),
		Time:       time.Now(),
	})
	return nil
}

// SetMaxLevel changes the facade's global threshold. It does not affect the
// attached sink's minimum level or records already dispatched.
func (b *Backend) SetMaxLevel(level Level) {
	b.facade.SetMaxLevel(level)
}

// Flush flushes the attached sink, if any.
func (b *Backend) Flush() {
	b.slot.with(func(rs *rawSink) {
		if cause := rs.flush(); cause != nil {
			b.internalLog("failed to flush log: %s\n", describeCause(cause))
		}
	})
}

// Stats returns a snapshot of the backend counters.
func (b *Backend) Stats() Stats {
	return Stats{
		Records:         b.stats.records.Load(),
		Written:         b.stats.written.Load(),
		Filtered:        b.stats.filtered.Load(),
		Unsinked:        b.stats.unsinked.Load(),
		WriteFailures:   b.stats.writeFailures.Load(),
		InvalidEncoding: b.stats.invalidEncoding.Load(),
	}
}

// dispatch routes one record to the current sink. Filtering and formatting
// happen before the slot is locked; only the Write itself is pinned.
func (b *Backend) dispatch(rec facade.Record) {
	b.stats.records.Add(1)
	cur := b.slot.peek()
	if cur == nil {
		b.stats.unsinked.Add(1)
		return
	}
	if !cur.enabled(rec.Level) {
		b.stats.filtered.Add(1)
		return
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.B = b.formatter.AppendRecord(buf.B[:0], rec)

	// The sink may have changed since peek; writeLine checks the level again.
	attached := b.slot.with(func(rs *rawSink) {
		switch rs.writeLine(buf.B, rec.Level, b.reportWriteFailure) {
		case resultWritten:
			b.stats.written.Add(1)
		case resultFiltered:
			b.stats.filtered.Add(1)
		case resultFailed:
			b.stats.writeFailures.Add(1)
		}
	})
	if !attached {
		b.stats.unsinked.Add(1)
	}
}

func (b *Backend) reportWriteFailure(line []byte, cause any) {
	b.internalLog("failed to write to log (%s): %s\n", describeCause(cause), strings.TrimRight(string(line), "\n"))
}

// internalLog writes backend diagnostics to the side channel, if enabled.
func (b *Backend) internalLog(format string, args ...any) {
	if !b.cfg.InternalErrorsToStderr {
		return
	}
	if !strings.HasPrefix(format, "logbridge: ") {
		format = "logbridge: " + format
	}
	fmt.Fprintf(b.errOut, format, args...)
}

// facadeLogger is the object registered with the facade. It accepts every
// level so the effective filter can be changed by re-attaching a sink with
// a different level, without registering again.
type facadeLogger struct {
	b *Backend
}

func (l *facadeLogger) Enabled(facade.Metadata) bool { return true }

func (l *facadeLogger) Log(rec facade.Record) { l.b.dispatch(rec) }

func (l *facadeLogger) Flush() { l.b.Flush() }
