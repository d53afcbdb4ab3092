package facade

// Process-wide dispatcher used by the package-level functions
var defaultDispatcher = NewDispatcher()

// Default returns the process-wide dispatcher.
func Default() *Dispatcher {
	return defaultDispatcher
}

// SetLogger installs l on the process-wide dispatcher.
func SetLogger(l Logger) error {
	return defaultDispatcher.SetLogger(l)
}

// SetMaxLevel sets the process-wide max level.
func SetMaxLevel(level Level) {
	defaultDispatcher.SetMaxLevel(level)
}

// MaxLevel returns the process-wide max level.
func MaxLevel() Level {
	return defaultDispatcher.MaxLevel()
}

// Flush flushes the process-wide logger.
func Flush() {
	defaultDispatcher.Flush()
}

// logf dispatches on behalf of the package that called the exported wrapper
func logf(level Level, format string, args []any) {
	if !defaultDispatcher.Enabled(level) {
		return
	}
	defaultDispatcher.Logf(level, callerModule(2), format, args...)
}

func logArgs(level Level, args []any) {
	if !defaultDispatcher.Enabled(level) {
		return
	}
	defaultDispatcher.Log(level, callerModule(2), args...)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) { logf(LevelError, format, args) }

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...any) { logf(LevelWarn, format, args) }

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) { logf(LevelInfo, format, args) }

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) { logf(LevelDebug, format, args) }

// Tracef logs a formatted message at trace level.
func Tracef(format string, args ...any) { logf(LevelTrace, format, args) }

// Error logs args at error level.
func Error(args ...any) { logArgs(LevelError, args) }

// Warn logs args at warn level.
func Warn(args ...any) { logArgs(LevelWarn, args) }

// Info logs args at info level.
func Info(args ...any) { logArgs(LevelInfo, args) }

// Debug logs args at debug level.
func Debug(args ...any) { logArgs(LevelDebug, args) }

// Trace logs args at trace level.
func Trace(args ...any) { logArgs(LevelTrace, args) }
