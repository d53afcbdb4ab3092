package logbridge

import (
	"strconv"

	"go.uber.org/multierr"
)

// ApplyOverrides returns a copy of c with "key=value" overrides applied and
// validated. All malformed overrides are reported together.
//
// Example:
//
//	cfg, err := logbridge.DefaultConfig().ApplyOverrides(
//	    "max_level=debug",
//	    "format=json",
//	)
func (c *Config) ApplyOverrides(overrides ...string) (*Config, error) {
	cfg := c.Clone()

	var errs error
	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		errs = multierr.Append(errs, applyConfigField(cfg, key, value))
	}
	if errs != nil {
		return nil, errs
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	case "max_level":
		if _, err := ParseLevel(value); err != nil {
			return fmtErrorf("invalid max_level value '%s': %w", value, err)
		}
		cfg.MaxLevel = value

	case "format":
		cfg.Format = value
	case "timestamp_format":
		cfg.TimestampFormat = value
	case "utc":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for utc '%s': %w", value, err)
		}
		cfg.UTC = boolVal
	case "level_width":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for level_width '%s': %w", value, err)
		}
		cfg.LevelWidth = intVal
	case "append_newline":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for append_newline '%s': %w", value, err)
		}
		cfg.AppendNewline = boolVal
	case "sanitization":
		cfg.Sanitization = value

	case "direct_module":
		cfg.DirectModule = value

	case "internal_errors_to_stderr":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for internal_errors_to_stderr '%s': %w", value, err)
		}
		cfg.InternalErrorsToStderr = boolVal

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}
