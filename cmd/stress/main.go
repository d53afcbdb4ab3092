package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/logbridge"
	"github.com/lixenwraith/logbridge/facade"
	"github.com/lixenwraith/logbridge/rawlog"
)

const (
	totalBursts    = 100
	logsPerBurst   = 500
	maxMessageSize = 2000
	numWorkers     = 64
	churnInterval  = 5 * time.Millisecond
)

var levels = []logbridge.Level{
	logbridge.LevelTrace,
	logbridge.LevelDebug,
	logbridge.LevelInfo,
	logbridge.LevelWarn,
	logbridge.LevelError,
}

func generateRandomMessage(size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rand.Intn(len(chars))])
	}
	return sb.String()
}

// logBurst simulates a burst of logging activity
func logBurst(d *facade.Dispatcher, burstID int) {
	for i := 0; i < logsPerBurst; i++ {
		level := levels[rand.Intn(len(levels))]
		msg := generateRandomMessage(rand.Intn(maxMessageSize) + 10)
		d.Log(level, "stress", msg, "bst", burstID, "seq", i)
	}
}

// churn attaches and detaches sink until ctx is done, so workers keep
// racing the slot.
func churn(ctx context.Context, backend *logbridge.Backend, sink logbridge.RawSink) error {
	var cycles int
	defer func() {
		fmt.Printf("\nAttach/detach cycles: %d\n", cycles)
	}()
	for {
		if err := backend.Attach(sink, logbridge.LevelDebug); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			if backend.Detach() != sink {
				return fmt.Errorf("detach returned a foreign handle")
			}
			return nil
		case <-time.After(churnInterval):
		}
		if backend.Detach() != sink {
			return fmt.Errorf("detach returned a foreign handle")
		}
		cycles++
	}
}

func main() {
	fmt.Println("--- Backend Stress Test ---")

	logsDir := "./logs"
	_ = os.RemoveAll(logsDir) // Clean previous run's LOGS directory before starting

	d := facade.NewDispatcher()
	backend, err := logbridge.NewBuilder().
		MaxLevel(logbridge.LevelTrace).
		InternalErrors(false). // a full buffer shows up in the counters instead
		Facade(d).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create backend: %v\n", err)
		os.Exit(1)
	}
	if err := backend.Setup(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register backend: %v\n", err)
		os.Exit(1)
	}

	metrics := &rawlog.Metrics{}
	sink, err := rawlog.Create(rawlog.Options{
		Path:       filepath.Join(logsDir, "stress.log"),
		BufferSize: 1 << 20,
		MaxSizeMB:  1, // Force frequent rotation
		MaxBackups: 5,
	}, metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create raw logger: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting stress test: %d workers, %d bursts, %d logs/burst.\n",
		numWorkers, totalBursts, logsPerBurst)
	fmt.Println("Press Ctrl+C to stop early.")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	churnCtx, stopChurn := context.WithCancel(ctx)
	var churnGroup errgroup.Group
	churnGroup.Go(func() error { return churn(churnCtx, backend, sink) })

	// Flush periodically like a background flusher would
	churnGroup.Go(func() error {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-churnCtx.Done():
				return nil
			case <-ticker.C:
				sink.Flush()
			}
		}
	})

	startTime := time.Now()
	var completedBursts atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for i := 1; i <= totalBursts; i++ {
		if gctx.Err() != nil {
			fmt.Println("\n[Signal Received] Halting burst submission.")
			break
		}
		burstID := i
		g.Go(func() error {
			logBurst(d, burstID)
			completed := completedBursts.Add(1)
			if completed%10 == 0 || completed == totalBursts {
				fmt.Printf("\rProgress: %d/%d bursts completed", completed, totalBursts)
			}
			return nil
		})
	}
	_ = g.Wait()
	duration := time.Since(startTime)

	stopChurn()
	if err := churnGroup.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Churn failed: %v\n", err)
	}
	if err := sink.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Close failed: %v\n", err)
	}

	finalCompleted := completedBursts.Load()
	fmt.Printf("\n--- Test Finished ---")
	fmt.Printf("\nCompleted %d/%d bursts in %v\n", finalCompleted, totalBursts, duration.Round(time.Millisecond))
	if finalCompleted > 0 && duration.Seconds() > 0 {
		logsPerSec := float64(finalCompleted*logsPerBurst) / duration.Seconds()
		fmt.Printf("Approximate Logs/sec: %.2f\n", logsPerSec)
	}

	st := backend.Stats()
	snap := metrics.Snapshot()
	fmt.Printf("Backend: records=%d written=%d filtered=%d unsinked=%d failures=%d\n",
		st.Records, st.Written, st.Filtered, st.Unsinked, st.WriteFailures)
	fmt.Printf("Raw logger: writes=%d bytes=%d skipped=%d flushes=%d\n",
		snap.Write, snap.WriteByte, snap.Skip, snap.Flush)
}
