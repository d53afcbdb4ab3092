package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logbridge"
	"github.com/lixenwraith/logbridge/compat"
	"github.com/lixenwraith/logbridge/facade"
	"github.com/lixenwraith/logbridge/rawlog"
)

func main() {
	backend, err := logbridge.NewBuilder().
		MaxLevelString("info").
		Format("json").
		Build()
	if err != nil {
		panic(err)
	}
	if err := backend.Setup(); err != nil {
		panic(err)
	}

	sink, err := rawlog.Create(rawlog.Options{Path: "/var/log/fasthttp/server.log", BufferSize: 2048}, nil)
	if err != nil {
		panic(err)
	}
	defer sink.Close()
	if err := backend.Attach(sink, logbridge.LevelInfo); err != nil {
		panic(err)
	}
	defer backend.Detach()

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter := compat.NewFastHTTPAdapter(
		facade.Default(),
		compat.WithDefaultLevel(facade.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	// Configure fasthttp server
	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		// Other server settings
		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	// Flush the buffered sink in the background
	go func() {
		for range time.Tick(time.Second) {
			backend.Flush()
		}
	}()

	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	facade.Infof("%s %s", ctx.Method(), ctx.Path())
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

func customLevelDetector(msg string) facade.Level {
	if strings.Contains(msg, "connection cannot be served") {
		return facade.LevelWarn
	}
	if strings.Contains(msg, "error when serving connection") {
		return facade.LevelError
	}

	// Use default detection
	return compat.DetectLogLevel(msg)
}
