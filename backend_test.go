package logbridge

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/logbridge/facade"
)

// memSink records every line written to it
type memSink struct {
	mu      sync.Mutex
	lines   []string
	flushes int
	fail    bool
	panics  bool
}

func (s *memSink) Write(p []byte) bool {
	if s.panics {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return false
	}
	s.lines = append(s.lines, string(p))
	return true
}

func (s *memSink) Flush() {
	if s.panics {
		panic("flush exploded")
	}
	s.mu.Lock()
	s.flushes++
	s.mu.Unlock()
}

func (s *memSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *memSink) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

// syncBuffer is a goroutine-safe side channel
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// countingFacade counts registrations and can be told to reject them
type countingFacade struct {
	calls    atomic.Int32
	reject   bool
	maxLevel atomic.Uint32
	logger   facade.Logger
}

func (f *countingFacade) SetLogger(l facade.Logger) error {
	f.calls.Add(1)
	if f.reject {
		return facade.ErrAlreadySet
	}
	f.logger = l
	return nil
}

func (f *countingFacade) SetMaxLevel(level facade.Level) {
	f.maxLevel.Store(uint32(level))
}

// createTestBackend builds a backend on a private dispatcher and sets it up
func createTestBackend(t *testing.T) (*Backend, *facade.Dispatcher, *syncBuffer) {
	t.Helper()
	d := facade.NewDispatcher()
	errOut := &syncBuffer{}

	b, err := New(nil, WithFacade(d), WithErrorOutput(errOut))
	require.NoError(t, err)
	require.NoError(t, b.Setup())
	return b, d, errOut
}

var lineRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} (.{5}) \[(.*)\] (.*)\n$`)

// TestNew verifies construction defaults and validation
func TestNew(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		b, err := New(nil, WithFacade(facade.NewDispatcher()))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), b.Config())
		assert.False(t, b.IsSetup())
		assert.False(t, b.Attached())
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Format = "xml"
		_, err := New(cfg)
		assert.Error(t, err)
	})

	t.Run("nil facade rejected", func(t *testing.T) {
		_, err := New(nil, WithFacade(nil))
		assert.Error(t, err)
	})

	t.Run("config is copied", func(t *testing.T) {
		cfg := DefaultConfig()
		b, err := New(cfg, WithFacade(facade.NewDispatcher()))
		require.NoError(t, err)
		cfg.DirectModule = "changed"
		assert.Equal(t, "direct", b.Config().DirectModule)
	})
}

// TestAttachBeforeSetup verifies nothing is attached until registration succeeds
func TestAttachBeforeSetup(t *testing.T) {
	errOut := &syncBuffer{}
	b, err := New(nil, WithFacade(facade.NewDispatcher()), WithErrorOutput(errOut))
	require.NoError(t, err)

	sink := &memSink{}
	err = b.Attach(sink, LevelDebug)
	assert.ErrorIs(t, err, ErrNotSetup)
	assert.False(t, b.Attached())
	assert.Nil(t, b.Detach())
	assert.Contains(t, errOut.String(), "attach: error state was: uninitialized")
}

// TestAttachDetach verifies slot ownership semantics
func TestAttachDetach(t *testing.T) {
	t.Run("detach returns the attached handle", func(t *testing.T) {
		b, _, _ := createTestBackend(t)
		sink := &memSink{}

		require.NoError(t, b.Attach(sink, LevelDebug))
		assert.True(t, b.Attached())

		got := b.Detach()
		assert.Same(t, sink, got)
		assert.False(t, b.Attached())
		assert.Nil(t, b.Detach(), "second detach returns nothing")
	})

	t.Run("double attach keeps the first sink", func(t *testing.T) {
		b, _, _ := createTestBackend(t)
		first, second := &memSink{}, &memSink{}

		require.NoError(t, b.Attach(first, LevelDebug))
		err := b.Attach(second, LevelTrace)
		assert.ErrorIs(t, err, ErrAlreadyAttached)

		require.NoError(t, b.LogDirect([]byte("hello"), LevelInfo))
		assert.Len(t, first.Lines(), 1)
		assert.Empty(t, second.Lines())
		assert.Same(t, first, b.Detach())
	})

	t.Run("reattach after detach", func(t *testing.T) {
		b, _, _ := createTestBackend(t)
		first, second := &memSink{}, &memSink{}

		require.NoError(t, b.Attach(first, LevelDebug))
		b.Detach()
		require.NoError(t, b.Attach(second, LevelError))
		assert.Same(t, second, b.Detach())
	})

	t.Run("invalid level", func(t *testing.T) {
		b, _, _ := createTestBackend(t)
		err := b.Attach(&memSink{}, LevelOff)
		assert.ErrorIs(t, err, ErrInvalidLevel)
		err = b.Attach(&memSink{}, Level(42))
		assert.ErrorIs(t, err, ErrInvalidLevel)
		assert.False(t, b.Attached())
	})

	t.Run("nil sink panics", func(t *testing.T) {
		b, _, _ := createTestBackend(t)
		assert.Panics(t, func() { _ = b.Attach(nil, LevelDebug) })
	})
}

// TestLogDirect verifies level filtering, encoding checks and line layout
func TestLogDirect(t *testing.T) {
	t.Run("sink level filters", func(t *testing.T) {
		b, _, _ := createTestBackend(t)
		sink := &memSink{}
		require.NoError(t, b.Attach(sink, LevelWarn))

		require.NoError(t, b.LogDirect([]byte("too chatty"), LevelInfo))
		assert.Empty(t, sink.Lines())

		require.NoError(t, b.LogDirect([]byte("disk almost full"), LevelWarn))
		require.NoError(t, b.LogDirect([]byte("disk full"), LevelError))

		lines := sink.Lines()
		require.Len(t, lines, 2)

		m := lineRe.FindStringSubmatch(lines[0])
		require.NotNil(t, m, "unexpected layout: %q", lines[0])
		assert.Equal(t, "WARN ", m[1])
		assert.Equal(t, "direct", m[2])
		assert.Equal(t, "disk almost full", m[3])
		assert.Contains(t, lines[1], "ERROR [direct] disk full\n")
	})

	t.Run("bypasses facade max level", func(t *testing.T) {
		b, d, _ := createTestBackend(t)
		d.SetMaxLevel(LevelOff)
		sink := &memSink{}
		require.NoError(t, b.Attach(sink, LevelTrace))

		require.NoError(t, b.LogDirect([]byte("trace me"), LevelTrace))
		assert.Len(t, sink.Lines(), 1)
	})

	t.Run("invalid utf8 rejected before writing", func(t *testing.T) {
		b, _, _ := createTestBackend(t)
		sink := &memSink{}
		require.NoError(t, b.Attach(sink, LevelTrace))

		err := b.LogDirect([]byte{0xff, 0xfe, 'x'}, LevelError)
		assert.ErrorIs(t, err, ErrInvalidEncoding)
		assert.Empty(t, sink.Lines())
		assert.Equal(t, uint64(1), b.Stats().InvalidEncoding)
	})

	t.Run("invalid level", func(t *testing.T) {
		b, _, _ := createTestBackend(t)
		err := b.LogDirect([]byte("x"), LevelOff)
		assert.ErrorIs(t, err, ErrInvalidLevel)
	})

	t.Run("no sink attached drops silently", func(t *testing.T) {
		b, _, errOut := createTestBackend(t)
		require.NoError(t, b.LogDirect([]byte("nobody listens"), LevelError))
		assert.Equal(t, uint64(1), b.Stats().Unsinked)
		assert.Empty(t, errOut.String())
	})

	t.Run("custom direct module", func(t *testing.T) {
		b, err := NewBuilder().
			DirectModule("c/ffi").
			Facade(facade.NewDispatcher()).
			Build()
		require.NoError(t, err)
		require.NoError(t, b.Setup())

		sink := &memSink{}
		require.NoError(t, b.Attach(sink, LevelInfo))
		require.NoError(t, b.LogDirect([]byte("from c"), LevelInfo))
		assert.Contains(t, sink.Lines()[0], "INFO  [c/ffi] from c\n")
	})
}

// TestFacadeDispatch verifies records logged through the facade reach the sink
func TestFacadeDispatch(t *testing.T) {
	t.Run("formatted error reaches debug sink", func(t *testing.T) {
		b, d, _ := createTestBackend(t)
		d.SetMaxLevel(LevelTrace)
		sink := &memSink{}
		require.NoError(t, b.Attach(sink, LevelDebug))

		d.Logf(LevelError, "app/net", "connection refused: %d", 111)

		lines := sink.Lines()
		require.Len(t, lines, 1)
		m := lineRe.FindStringSubmatch(lines[0])
		require.NotNil(t, m, "unexpected layout: %q", lines[0])
		assert.Equal(t, "ERROR", m[1])
		assert.Equal(t, "app/net", m[2])
		assert.Equal(t, "connection refused: 111", m[3])
	})

	t.Run("trace filtered by debug sink", func(t *testing.T) {
		b, d, _ := createTestBackend(t)
		d.SetMaxLevel(LevelTrace)
		sink := &memSink{}
		require.NoError(t, b.Attach(sink, LevelDebug))

		d.Logf(LevelTrace, "app/net", "packet dump")
		assert.Empty(t, sink.Lines())
		assert.Equal(t, uint64(1), b.Stats().Filtered)
	})

	t.Run("setup applies configured max level", func(t *testing.T) {
		_, d, _ := createTestBackend(t)
		assert.Equal(t, LevelInfo, d.MaxLevel())
	})

	t.Run("facade max level filters before the backend", func(t *testing.T) {
		b, d, _ := createTestBackend(t)
		sink := &memSink{}
		require.NoError(t, b.Attach(sink, LevelTrace))

		b.SetMaxLevel(LevelWarn)
		assert.Equal(t, LevelWarn, d.MaxLevel())

		d.Logf(LevelInfo, "m", "dropped")
		d.Log(LevelWarn, "m", "kept", 1)
		assert.Equal(t, uint64(1), b.Stats().Records)

		lines := sink.Lines()
		require.Len(t, lines, 1)
		assert.True(t, strings.HasSuffix(lines[0], "WARN  [m] kept 1\n"))
	})

	t.Run("empty module path", func(t *testing.T) {
		b, d, _ := createTestBackend(t)
		sink := &memSink{}
		require.NoError(t, b.Attach(sink, LevelInfo))

		d.Logf(LevelInfo, "", "anonymous")
		assert.Contains(t, sink.Lines()[0], "INFO  [] anonymous\n")
	})
}

// TestWriteFailures verifies sink failures never reach the caller
func TestWriteFailures(t *testing.T) {
	t.Run("write returns false", func(t *testing.T) {
		b, _, errOut := createTestBackend(t)
		sink := &memSink{fail: true}
		require.NoError(t, b.Attach(sink, LevelInfo))

		require.NoError(t, b.LogDirect([]byte("lost line"), LevelError))
		out := errOut.String()
		assert.Contains(t, out, "failed to write to log (write returned false)")
		assert.Contains(t, out, "ERROR [direct] lost line")
		assert.Equal(t, uint64(1), b.Stats().WriteFailures)
	})

	t.Run("write panics", func(t *testing.T) {
		b, _, errOut := createTestBackend(t)
		sink := &memSink{panics: true}
		require.NoError(t, b.Attach(sink, LevelInfo))

		assert.NotPanics(t, func() {
			require.NoError(t, b.LogDirect([]byte("boom"), LevelError))
			b.Flush()
		})
		out := errOut.String()
		assert.Contains(t, out, "panic: sink exploded")
		assert.Contains(t, out, "failed to flush log: panic: flush exploded")
	})

	t.Run("side channel can be silenced", func(t *testing.T) {
		errOut := &syncBuffer{}
		b, err := NewBuilder().
			InternalErrors(false).
			Facade(facade.NewDispatcher()).
			ErrorOutput(errOut).
			Build()
		require.NoError(t, err)
		require.NoError(t, b.Setup())
		require.NoError(t, b.Attach(&memSink{fail: true}, LevelInfo))

		require.NoError(t, b.LogDirect([]byte("quiet"), LevelError))
		assert.Empty(t, errOut.String())
		assert.Equal(t, uint64(1), b.Stats().WriteFailures)
	})
}

// TestFlush verifies flush forwarding
func TestFlush(t *testing.T) {
	b, d, _ := createTestBackend(t)

	assert.NotPanics(t, b.Flush, "flush without sink is a no-op")

	sink := &memSink{}
	require.NoError(t, b.Attach(sink, LevelInfo))
	b.Flush()
	d.Flush()
	assert.Equal(t, 2, sink.Flushes())

	b.Detach()
	b.Flush()
	assert.Equal(t, 2, sink.Flushes())
}

// handoffSink counts writes that land after its owner took it back. With
// release set, every Write blocks until the channel is closed.
type handoffSink struct {
	entered  chan struct{}
	release  chan struct{}
	detached atomic.Bool
	writes   atomic.Int32
	late     atomic.Int32
}

func (s *handoffSink) Write([]byte) bool {
	if s.entered != nil {
		select {
		case s.entered <- struct{}{}:
		default:
		}
	}
	if s.release != nil {
		<-s.release
	}
	if s.detached.Load() {
		s.late.Add(1)
	}
	s.writes.Add(1)
	return true
}

func (s *handoffSink) Flush() {}

// TestDetachWaitsForWrite verifies Detach returns only after an in-flight write
func TestDetachWaitsForWrite(t *testing.T) {
	b, _, _ := createTestBackend(t)
	sink := &handoffSink{entered: make(chan struct{}, 1), release: make(chan struct{})}
	require.NoError(t, b.Attach(sink, LevelInfo))

	go func() { _ = b.LogDirect([]byte("slow"), LevelInfo) }()
	<-sink.entered

	detached := make(chan RawSink, 1)
	go func() {
		got := b.Detach()
		sink.detached.Store(true)
		detached <- got
	}()

	select {
	case <-detached:
		t.Fatal("Detach returned while a write was in progress")
	case <-time.After(50 * time.Millisecond):
	}

	close(sink.release)
	select {
	case got := <-detached:
		assert.Same(t, sink, got)
	case <-time.After(time.Second):
		t.Fatal("Detach did not return after the write finished")
	}

	assert.Equal(t, int32(1), sink.writes.Load())
	assert.Equal(t, int32(0), sink.late.Load())

	require.NoError(t, b.LogDirect([]byte("after"), LevelError))
	assert.Equal(t, int32(1), sink.writes.Load())
}

// TestFilteredRecordDuringDetach verifies records the sink would drop never
// queue behind a pending Detach
func TestFilteredRecordDuringDetach(t *testing.T) {
	b, _, _ := createTestBackend(t)
	sink := &handoffSink{entered: make(chan struct{}, 1), release: make(chan struct{})}
	require.NoError(t, b.Attach(sink, LevelError))

	go func() { _ = b.LogDirect([]byte("slow"), LevelError) }()
	<-sink.entered

	detached := make(chan struct{})
	go func() {
		b.Detach()
		close(detached)
	}()
	// Give Detach time to queue on the slot lock
	time.Sleep(20 * time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- b.LogDirect([]byte("chatty"), LevelDebug) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("filtered record blocked behind Detach")
	}

	close(sink.release)
	<-detached
	st := b.Stats()
	assert.Equal(t, uint64(1), st.Filtered)
	assert.Equal(t, uint64(1), st.Written)
}

// TestConcurrentLogAndDetach verifies no write reaches a sink after Detach returns
func TestConcurrentLogAndDetach(t *testing.T) {
	b, d, _ := createTestBackend(t)
	d.SetMaxLevel(LevelTrace)

	var stop atomic.Bool
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for !stop.Load() {
				d.Logf(LevelInfo, "worker", "tick")
			}
			return nil
		})
	}

	sinks := make([]*handoffSink, 50)
	for i := range sinks {
		sink := &handoffSink{}
		sinks[i] = sink
		require.NoError(t, b.Attach(sink, LevelInfo))
		got := b.Detach()
		sink.detached.Store(true)
		require.Same(t, sink, got)
	}
	stop.Store(true)
	require.NoError(t, g.Wait())

	for i, sink := range sinks {
		assert.Zero(t, sink.late.Load(), "sink %d written after Detach", i)
	}

	st := b.Stats()
	assert.Equal(t, st.Records, st.Written+st.Unsinked+st.Filtered+st.WriteFailures)
}

// TestStats verifies counter bookkeeping
func TestStats(t *testing.T) {
	b, _, _ := createTestBackend(t)
	sink := &memSink{}

	require.NoError(t, b.LogDirect([]byte("a"), LevelInfo))
	require.NoError(t, b.Attach(sink, LevelWarn))
	require.NoError(t, b.LogDirect([]byte("b"), LevelInfo))
	require.NoError(t, b.LogDirect([]byte("c"), LevelError))
	_ = b.LogDirect([]byte{0xc3}, LevelError)

	assert.Equal(t, Stats{
		Records:         3,
		Written:         1,
		Filtered:        1,
		Unsinked:        1,
		InvalidEncoding: 1,
	}, b.Stats())
}
