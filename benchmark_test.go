package logbridge

import (
	"testing"

	"github.com/lixenwraith/logbridge/facade"
)

// discardSink accepts everything
type discardSink struct{}

func (discardSink) Write([]byte) bool { return true }
func (discardSink) Flush()            {}

func createBenchBackend(b *testing.B, level Level) (*Backend, *facade.Dispatcher) {
	d := facade.NewDispatcher()
	backend, err := New(nil, WithFacade(d))
	if err != nil {
		b.Fatal(err)
	}
	if err := backend.Setup(); err != nil {
		b.Fatal(err)
	}
	if err := backend.Attach(discardSink{}, level); err != nil {
		b.Fatal(err)
	}
	d.SetMaxLevel(LevelTrace)
	return backend, d
}

// BenchmarkFacadeLogf benchmarks a formatted record through the facade
func BenchmarkFacadeLogf(b *testing.B) {
	_, d := createBenchBackend(b, LevelTrace)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Logf(LevelInfo, "bench", "benchmark message %d", i)
	}
}

// BenchmarkFilteredBySink benchmarks a record dropped by the sink level
func BenchmarkFilteredBySink(b *testing.B) {
	_, d := createBenchBackend(b, LevelError)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Logf(LevelDebug, "bench", "benchmark message %d", i)
	}
}

// BenchmarkLogDirect benchmarks the byte entry point
func BenchmarkLogDirect(b *testing.B) {
	backend, _ := createBenchBackend(b, LevelTrace)
	msg := []byte("benchmark message from a foreign caller")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = backend.LogDirect(msg, LevelWarn)
	}
}

// BenchmarkConcurrentLogging benchmarks parallel writers sharing one sink
func BenchmarkConcurrentLogging(b *testing.B) {
	_, d := createBenchBackend(b, LevelTrace)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			d.Logf(LevelInfo, "bench", "concurrent message %d", i)
			i++
		}
	})
}
