// Package rawlog is a byte-level log writer: it appends pre-formatted lines
// to a file (or stderr) with an optional fixed-size buffer. It satisfies
// logbridge.RawSink and is owned entirely by its creator.
package rawlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options describe where and how a Logger writes
type Options struct {
	Path       string // empty writes to stderr
	BufferSize int    // bytes held until Flush; 0 writes through
	MaxSizeMB  int    // rotate through lumberjack when > 0
	MaxBackups int    // rotated files kept, 0 keeps all
	MaxAgeDays int    // days rotated files are kept, 0 keeps all
	Compress   bool   // gzip rotated files
}

// Logger appends bytes to its destination. All methods are safe for
// concurrent use.
type Logger struct {
	opts    Options
	metrics *Metrics

	mu     sync.Mutex
	out    io.Writer
	file   *os.File           // plain file destination
	rot    *lumberjack.Logger // rotating destination
	buf    []byte
	closed bool
}

// Create opens a Logger. m may be nil, in which case the logger keeps
// private counters available through Metrics.
func Create(opts Options, m *Metrics) (*Logger, error) {
	if m == nil {
		m = &Metrics{}
	}
	if opts.BufferSize < 0 || opts.MaxSizeMB < 0 || opts.MaxBackups < 0 || opts.MaxAgeDays < 0 {
		m.CreateEx.Add(1)
		return nil, fmt.Errorf("rawlog: negative option values are not allowed")
	}

	l := &Logger{opts: opts, metrics: m}
	if opts.BufferSize > 0 {
		l.buf = make([]byte, 0, opts.BufferSize)
	}
	if err := l.open(); err != nil {
		m.CreateEx.Add(1)
		return nil, err
	}
	m.Create.Add(1)
	return l, nil
}

// open sets the destination; caller holds mu or has exclusive access.
func (l *Logger) open() error {
	switch {
	case l.opts.Path == "":
		l.out = os.Stderr
		return nil

	case l.opts.MaxSizeMB > 0:
		if err := os.MkdirAll(filepath.Dir(l.opts.Path), 0755); err != nil {
			l.metrics.OpenEx.Add(1)
			return fmt.Errorf("rawlog: failed to create log directory for '%s': %w", l.opts.Path, err)
		}
		l.rot = &lumberjack.Logger{
			Filename:   l.opts.Path,
			MaxSize:    l.opts.MaxSizeMB,
			MaxBackups: l.opts.MaxBackups,
			MaxAge:     l.opts.MaxAgeDays,
			Compress:   l.opts.Compress,
			LocalTime:  true,
		}
		l.out = l.rot
		l.metrics.Open.Add(1)
		return nil

	default:
		file, err := os.OpenFile(l.opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			l.metrics.OpenEx.Add(1)
			return fmt.Errorf("rawlog: failed to open/create log file '%s': %w", l.opts.Path, err)
		}
		l.file = file
		l.out = file
		l.metrics.Open.Add(1)
		return nil
	}
}

// Name returns the destination path, or "" for stderr.
func (l *Logger) Name() string {
	return l.opts.Path
}

// Metrics returns the counters this logger updates.
func (l *Logger) Metrics() *Metrics {
	return l.metrics
}

// Write appends p. With a buffer, p is accepted whole or skipped when it
// does not fit; without one it goes straight to the destination. It reports
// whether p was accepted.
func (l *Logger) Write(p []byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		l.metrics.WriteEx.Add(1)
		return false
	}

	if cap(l.buf) > 0 {
		if len(l.buf)+len(p) > cap(l.buf) {
			l.metrics.Skip.Add(1)
			l.metrics.SkipByte.Add(uint64(len(p)))
			return false
		}
		l.buf = append(l.buf, p...)
		l.metrics.Write.Add(1)
		l.metrics.WriteByte.Add(uint64(len(p)))
		return true
	}

	if _, err := l.out.Write(p); err != nil {
		l.metrics.WriteEx.Add(1)
		return false
	}
	l.metrics.Write.Add(1)
	l.metrics.WriteByte.Add(uint64(len(p)))
	return true
}

// Flush moves buffered bytes to the destination.
func (l *Logger) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.flushLocked()
}

func (l *Logger) flushLocked() error {
	if len(l.buf) == 0 || l.closed {
		return nil
	}
	_, err := l.out.Write(l.buf)
	l.buf = l.buf[:0]
	if err != nil {
		l.metrics.FlushEx.Add(1)
		return fmt.Errorf("rawlog: flush failed: %w", err)
	}
	l.metrics.Flush.Add(1)
	return nil
}

// Reopen flushes and reopens the destination, for use after an external
// tool moved the file. With rotation enabled it forces a rotation instead.
func (l *Logger) Reopen() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return fmt.Errorf("rawlog: logger is closed")
	}
	err := l.flushLocked()

	switch {
	case l.rot != nil:
		return multierr.Append(err, l.rot.Rotate())
	case l.file != nil:
		err = multierr.Append(err, l.file.Close())
		l.file = nil
		return multierr.Append(err, l.open())
	}
	return err
}

// Close flushes and releases the destination. Writes after Close fail.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	err := l.flushLocked()
	l.closed = true

	if l.file != nil {
		err = multierr.Append(err, l.file.Sync())
		err = multierr.Append(err, l.file.Close())
		l.file = nil
	}
	if l.rot != nil {
		err = multierr.Append(err, l.rot.Close())
		l.rot = nil
	}
	l.out = io.Discard
	l.metrics.Destroy.Add(1)
	return err
}
