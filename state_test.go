package logbridge

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/logbridge/facade"
)

// TestRegistrationTransitions verifies the state word only moves forward
func TestRegistrationTransitions(t *testing.T) {
	var r registration
	assert.Equal(t, stateUninitialized, r.load())

	require.True(t, r.begin())
	assert.Equal(t, stateInitializing, r.load())
	assert.False(t, r.begin(), "only one caller may begin")

	r.finish(true)
	assert.Equal(t, stateInitialized, r.wait())
	assert.False(t, r.begin())

	var failed registration
	require.True(t, failed.begin())
	failed.finish(false)
	assert.Equal(t, stateFailed, failed.wait())
	assert.False(t, failed.begin(), "failure is terminal")
	assert.Equal(t, "failed", failed.load().String())
}

// TestSetupOnce verifies concurrent Setup registers exactly once
func TestSetupOnce(t *testing.T) {
	f := &countingFacade{}
	b, err := New(nil, WithFacade(f))
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(b.Setup)
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), f.calls.Load())
	assert.True(t, b.IsSetup())
	assert.Equal(t, uint32(LevelInfo), f.maxLevel.Load())

	// Later calls are answered from the state word
	require.NoError(t, b.Setup())
	assert.Equal(t, int32(1), f.calls.Load())
}

// TestSetupFailure verifies a rejected registration is permanent
func TestSetupFailure(t *testing.T) {
	f := &countingFacade{reject: true}
	errOut := &syncBuffer{}
	b, err := New(nil, WithFacade(f), WithErrorOutput(errOut))
	require.NoError(t, err)

	err = b.Setup()
	require.ErrorIs(t, err, ErrRegistrationFailure)
	assert.Contains(t, err.Error(), facade.ErrAlreadySet.Error())
	assert.Contains(t, errOut.String(), "error setting up logger")
	assert.False(t, b.IsSetup())
	assert.Equal(t, stateFailed, b.state.load())

	// No retry
	assert.ErrorIs(t, b.Setup(), ErrRegistrationFailure)
	assert.Equal(t, int32(1), f.calls.Load())

	// Everything that needs registration stays unavailable
	assert.ErrorIs(t, b.Attach(&memSink{}, LevelError), ErrNotSetup)
}

// TestSetupConcurrentFailure verifies losers of the race see the winner's failure
func TestSetupConcurrentFailure(t *testing.T) {
	f := &countingFacade{reject: true}
	b, err := New(nil, WithFacade(f), WithErrorOutput(&syncBuffer{}))
	require.NoError(t, err)

	errs := make([]error, 16)
	var g errgroup.Group
	for i := range errs {
		g.Go(func() error {
			errs[i] = b.Setup()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, err := range errs {
		assert.ErrorIs(t, err, ErrRegistrationFailure)
	}
	assert.Equal(t, int32(1), f.calls.Load())
}

// TestSetupFacadeAlreadyOwned verifies a second backend cannot take over a dispatcher
func TestSetupFacadeAlreadyOwned(t *testing.T) {
	d := facade.NewDispatcher()
	first, err := New(nil, WithFacade(d))
	require.NoError(t, err)
	second, err := New(nil, WithFacade(d), WithErrorOutput(&syncBuffer{}))
	require.NoError(t, err)

	require.NoError(t, first.Setup())
	assert.ErrorIs(t, second.Setup(), ErrRegistrationFailure)

	sink := &memSink{}
	require.NoError(t, first.Attach(sink, LevelInfo))
	d.Logf(LevelInfo, "owner", "still first")
	assert.Len(t, sink.Lines(), 1)
}

// panickingFacade panics instead of installing the logger
type panickingFacade struct {
	calls atomic.Int32
}

func (f *panickingFacade) SetLogger(facade.Logger) error {
	f.calls.Add(1)
	panic("facade exploded")
}

func (f *panickingFacade) SetMaxLevel(facade.Level) {}

// TestSetupFacadePanics verifies a panicking facade fails registration for good
func TestSetupFacadePanics(t *testing.T) {
	f := &panickingFacade{}
	errOut := &syncBuffer{}
	b, err := New(nil, WithFacade(f), WithErrorOutput(errOut))
	require.NoError(t, err)

	require.NotPanics(t, func() { err = b.Setup() })
	require.ErrorIs(t, err, ErrRegistrationFailure)
	assert.Contains(t, err.Error(), "facade exploded")
	assert.Contains(t, errOut.String(), "error setting up logger")
	assert.Equal(t, stateFailed, b.state.load())

	// Later callers must not spin on the initializing state
	done := make(chan error, 1)
	go func() { done <- b.Setup() }()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrRegistrationFailure)
	case <-time.After(time.Second):
		t.Fatal("Setup did not return after a panicking registration")
	}
	assert.Equal(t, int32(1), f.calls.Load())
}
