// Package facade is a small leveled logging front end with a single,
// install-once sink.
//
// Call sites use the package-level functions (Errorf, Infof, ...) or a
// Dispatcher directly. Records carry the level, the calling package path and
// the formatted message. Nothing is emitted until a Logger is installed with
// SetLogger, which succeeds exactly once; the max level starts at LevelOff.
//
//	facade.SetMaxLevel(facade.LevelDebug)
//	facade.Infof("listening on %s", addr)
package facade
