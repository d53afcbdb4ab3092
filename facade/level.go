package facade

import (
	"fmt"
	"strings"
)

// Level is the severity of a record. Lower values are more severe.
// LevelOff is only meaningful as a max-level filter.
type Level uint32

// Level constants, numerically aligned with the C side enum
const (
	LevelOff Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// String returns the upper-case level name used in formatted lines
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "OFF"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return fmt.Sprintf("LEVEL(%d)", uint32(l))
	}
}

// Valid reports whether l is a record level (Error through Trace).
func (l Level) Valid() bool {
	return l >= LevelError && l <= LevelTrace
}

// ParseLevel converts a level name to its constant.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return LevelOff, fmt.Errorf("facade: invalid level string: '%s' (use off, error, warn, info, debug, trace)", s)
	}
}
