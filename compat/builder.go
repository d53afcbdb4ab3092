package compat

import (
	"fmt"
	"log/slog"

	"go.uber.org/zap"

	"github.com/lixenwraith/logbridge/facade"
)

// Builder creates adapters that share one dispatcher.
// Without WithDispatcher the process-wide facade.Default() is used.
type Builder struct {
	d   *facade.Dispatcher
	err error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithDispatcher specifies the dispatcher the adapters write to
func (b *Builder) WithDispatcher(d *facade.Dispatcher) *Builder {
	if d == nil {
		b.err = fmt.Errorf("logbridge/compat: provided dispatcher cannot be nil")
		return b
	}
	b.d = d
	return b
}

// getDispatcher resolves the dispatcher to be used
func (b *Builder) getDispatcher() (*facade.Dispatcher, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.d == nil {
		b.d = facade.Default()
	}
	return b.d, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	d, err := b.getDispatcher()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(d, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	d, err := b.getDispatcher()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(d, opts...), nil
}

// BuildZap creates a *zap.Logger backed by a ZapCore
func (b *Builder) BuildZap(opts ...zap.Option) (*zap.Logger, error) {
	d, err := b.getDispatcher()
	if err != nil {
		return nil, err
	}
	return zap.New(NewZapCore(d), opts...), nil
}

// BuildSlog creates a *slog.Logger backed by a SlogHandler
func (b *Builder) BuildSlog(module string) (*slog.Logger, error) {
	d, err := b.getDispatcher()
	if err != nil {
		return nil, err
	}
	return slog.New(NewSlogHandler(d, module)), nil
}

// Dispatcher returns the dispatcher the adapters write to
func (b *Builder) Dispatcher() (*facade.Dispatcher, error) {
	return b.getDispatcher()
}

// --- Example Usage ---
//
//	// 1. Register the backend and attach a sink
//	if err := logbridge.Setup(); err != nil {
//		panic(err)
//	}
//	sink, _ := rawlog.Create(rawlog.Options{Path: "server.log"}, nil)
//	_ = logbridge.Attach(sink, logbridge.LevelDebug)
//
//	// 2. Build the adapters on the process-wide facade
//	builder := compat.NewBuilder()
//	gnetLogger, _ := builder.BuildGnet()
//	fasthttpLogger, _ := builder.BuildFastHTTP()
//	zapLogger, _ := builder.BuildZap()
//
//	// 3. Hand them to the libraries
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
//	zapLogger.Named("db").Info("pool ready", zap.Int("size", 8))
