package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lixenwraith/logbridge"
	"github.com/lixenwraith/logbridge/facade"
	"github.com/lixenwraith/logbridge/rawlog"
)

const configFile = "simple_config.toml"

// Example TOML content
var tomlContent = `
# Example simple_config.toml
[logbridge]
  max_level = "trace"
  format = "txt"
  direct_module = "simple"
`

func main() {
	fmt.Println("--- Simple Backend Example ---")

	// --- Setup Config ---
	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write dummy config: %v\n", err)
	} else {
		fmt.Printf("Created dummy config file: %s\n", configFile)
	}

	cfg, err := logbridge.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	backend, err := logbridge.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create backend: %v\n", err)
		os.Exit(1)
	}
	if err := backend.Setup(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register backend: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Backend registered.")

	// --- Attach a raw logger ---
	dir, err := os.MkdirTemp("", "logbridge-simple")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	logPath := filepath.Join(dir, "simple.log")
	sink, err := rawlog.Create(rawlog.Options{Path: logPath, BufferSize: 1 << 16}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create raw logger: %v\n", err)
		os.Exit(1)
	}
	if err := backend.Attach(sink, logbridge.LevelDebug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to attach: %v\n", err)
		os.Exit(1)
	}

	// --- Logging ---
	facade.Errorf("foo bar baz")
	facade.Infof("connected to %s", "10.0.0.1:22122")
	facade.Tracef("filtered by the sink level")
	_ = backend.LogDirect([]byte("written by a foreign caller"), logbridge.LevelWarn)

	backend.Flush()

	// --- Hand the sink back and read it ---
	if backend.Detach() != sink {
		fmt.Fprintln(os.Stderr, "Detach returned an unexpected handle")
		os.Exit(1)
	}
	if err := sink.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close raw logger: %v\n", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read log: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("--- %s ---\n%s", logPath, content)

	snap := sink.Metrics().Snapshot()
	st := backend.Stats()
	fmt.Printf("records=%d written=%d filtered=%d raw_writes=%d raw_bytes=%d\n",
		st.Records, st.Written, st.Filtered, snap.Write, snap.WriteByte)

	// --- Save the effective configuration ---
	if err := logbridge.SaveConfig(configFile, backend.Config()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save configuration to '%s': %v\n", configFile, err)
	} else {
		fmt.Printf("Configuration saved to: %s\n", configFile)
	}
}
