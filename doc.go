// Package logbridge connects the facade package to an externally owned,
// byte-oriented log writer.
//
// A Backend registers itself exactly once as the facade's logger (Setup).
// Afterwards a RawSink can be attached and detached at any time; every
// record the facade dispatches is formatted as
//
//	2006-01-02 15:04:05 LEVEL [module/path] message
//
// and written to whichever sink is attached at that moment. Records that
// arrive while nothing is attached are dropped silently. A failing sink never
// surfaces an error at the log call site; failures are reported on a side
// channel (stderr by default).
//
// Registration failure is permanent: the facade has no way to remove a
// logger, so a process that gets ErrRegistrationFailure should treat it as
// fatal.
//
//	if err := logbridge.Setup(); err != nil {
//	    panic(err)
//	}
//	sink, _ := rawlog.Create(rawlog.Options{Path: "app.log"}, nil)
//	_ = logbridge.Attach(sink, logbridge.LevelDebug)
//	facade.Errorf("listener failed: %v", err)
//	logbridge.Flush()
//	_ = logbridge.Detach() // hand the sink back before closing it
//	_ = sink.Close()
package logbridge
