package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/logbridge"
	"github.com/lixenwraith/logbridge/facade"
	"github.com/lixenwraith/logbridge/rawlog"
)

// Change the effective level at runtime by swapping sinks while a producer
// logs constantly.
func main() {
	var count atomic.Int64

	cfg, err := logbridge.DefaultConfig().ApplyOverrides("max_level=trace")
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		return
	}
	backend, err := logbridge.New(cfg)
	if err != nil {
		fmt.Printf("Init error: %v\n", err)
		return
	}
	if err := backend.Setup(); err != nil {
		fmt.Printf("Setup error: %v\n", err)
		return
	}

	metrics := &rawlog.Metrics{}
	sink, err := rawlog.Create(rawlog.Options{}, metrics) // stderr
	if err != nil {
		fmt.Printf("Sink error: %v\n", err)
		return
	}
	defer sink.Close()

	// Log something constantly
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			facade.Debugf("debug tick %d", i)
			facade.Errorf("error tick %d", i)
			count.Add(2)
			time.Sleep(time.Millisecond)
		}
	}()

	// Alternate between a verbose and a quiet attachment
	levels := []logbridge.Level{logbridge.LevelDebug, logbridge.LevelError}
	for i := 0; i < 10; i++ {
		level := levels[i%len(levels)]
		if err := backend.Attach(sink, level); err != nil {
			fmt.Printf("Attach error: %v\n", err)
		}
		time.Sleep(20 * time.Millisecond)
		if backend.Detach() == nil {
			fmt.Fprintln(os.Stderr, "nothing was attached")
		}
	}

	close(stop)
	<-done

	st := backend.Stats()
	fmt.Printf("Total logs attempted: %d\n", count.Load())
	fmt.Printf("written=%d filtered=%d unsinked=%d raw_writes=%d\n",
		st.Written, st.Filtered, st.Unsinked, metrics.Write.Load())
}
