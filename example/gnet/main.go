package main

import (
	"github.com/panjf2000/gnet/v2"

	"github.com/lixenwraith/logbridge"
	"github.com/lixenwraith/logbridge/compat"
	"github.com/lixenwraith/logbridge/facade"
	"github.com/lixenwraith/logbridge/rawlog"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnBoot(eng gnet.Engine) gnet.Action {
	facade.Infof("echo server booted")
	return gnet.None
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	facade.Debugf("echo %d bytes to %s", len(buf), c.RemoteAddr())
	c.Write(buf)
	return gnet.None
}

func main() {
	if err := logbridge.Setup(); err != nil {
		panic(err) // someone else owns the facade
	}
	logbridge.SetMaxLevel(logbridge.LevelDebug)

	sink, err := rawlog.Create(rawlog.Options{
		Path:       "/var/log/gnet/echo.log",
		MaxSizeMB:  64,
		MaxBackups: 3,
	}, nil)
	if err != nil {
		panic(err)
	}
	defer sink.Close()
	if err := logbridge.Attach(sink, logbridge.LevelDebug); err != nil {
		panic(err)
	}
	defer logbridge.Detach()

	gnetAdapter, err := compat.NewBuilder().BuildGnet()
	if err != nil {
		panic(err)
	}

	// Configure gnet server with the logger
	err = gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
