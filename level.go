package logbridge

import "github.com/lixenwraith/logbridge/facade"

// Level is the facade severity, re-exported for callers that only import
// this package.
type Level = facade.Level

// Log level constants
const (
	LevelOff   = facade.LevelOff
	LevelError = facade.LevelError
	LevelWarn  = facade.LevelWarn
	LevelInfo  = facade.LevelInfo
	LevelDebug = facade.LevelDebug
	LevelTrace = facade.LevelTrace
)

// ParseLevel converts a level name to its constant.
func ParseLevel(s string) (Level, error) {
	return facade.ParseLevel(s)
}
