package logbridge

import (
	"io"
)

// Builder provides a fluent API for building a Backend.
// It wraps a Config instance and the construction options.
type Builder struct {
	cfg  *Config
	opts []Option
	err  error // Accumulate errors for deferred handling
}

// NewBuilder creates a new builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build validates the configuration and creates the Backend.
func (b *Builder) Build() (*Backend, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.cfg, b.opts...)
}

// Config replaces the accumulated configuration with a copy of cfg.
func (b *Builder) Config(cfg *Config) *Builder {
	if cfg == nil {
		if b.err == nil {
			b.err = fmtErrorf("configuration cannot be nil")
		}
		return b
	}
	b.cfg = cfg.Clone()
	return b
}

// MaxLevel sets the facade threshold applied on setup.
func (b *Builder) MaxLevel(level Level) *Builder {
	b.cfg.MaxLevel = level.String()
	return b
}

// MaxLevelString sets the facade threshold from a level name.
func (b *Builder) MaxLevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := ParseLevel(level); err != nil {
		b.err = err
		return b
	}
	b.cfg.MaxLevel = level
	return b
}

// Format sets the line format ("txt" or "json").
func (b *Builder) Format(format string) *Builder {
	b.cfg.Format = format
	return b
}

// TimestampFormat sets the time layout.
func (b *Builder) TimestampFormat(layout string) *Builder {
	b.cfg.TimestampFormat = layout
	return b
}

// UTC renders timestamps in UTC.
func (b *Builder) UTC(enable bool) *Builder {
	b.cfg.UTC = enable
	return b
}

// AppendNewline controls the trailing newline on every line.
func (b *Builder) AppendNewline(enable bool) *Builder {
	b.cfg.AppendNewline = enable
	return b
}

// Sanitization sets the sanitizer policy name.
func (b *Builder) Sanitization(policy string) *Builder {
	b.cfg.Sanitization = policy
	return b
}

// DirectModule sets the module path stamped on LogDirect records.
func (b *Builder) DirectModule(module string) *Builder {
	b.cfg.DirectModule = module
	return b
}

// InternalErrors enables or disables side channel diagnostics.
func (b *Builder) InternalErrors(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Facade sets the facade to register with.
func (b *Builder) Facade(f Facade) *Builder {
	b.opts = append(b.opts, WithFacade(f))
	return b
}

// ErrorOutput sets the side channel writer.
func (b *Builder) ErrorOutput(w io.Writer) *Builder {
	b.opts = append(b.opts, WithErrorOutput(w))
	return b
}

// Example usage:
// backend, err := logbridge.NewBuilder().
//
//	MaxLevelString("debug").
//	Format("json").
//	UTC(true).
//	Build()
//
// if err == nil {
//
//	 if err := backend.Setup(); err != nil {
//	     panic(err) // the facade belongs to someone else, permanently
//	 }
//
// }
