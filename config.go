package logbridge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lixenwraith/config"

	"github.com/lixenwraith/logbridge/formatter"
	"github.com/lixenwraith/logbridge/sanitizer"
)

// configPrefix is the TOML table the backend settings live under
const configPrefix = "logbridge."

// Config holds all backend configuration values
type Config struct {
	// Facade threshold applied once registration succeeds
	MaxLevel string `toml:"max_level"`

	// Line formatting
	Format          string `toml:"format"` // "txt" or "json"
	TimestampFormat string `toml:"timestamp_format"`
	UTC             bool   `toml:"utc"`
	LevelWidth      int64  `toml:"level_width"`
	AppendNewline   bool   `toml:"append_newline"`
	Sanitization    string `toml:"sanitization"` // sanitizer policy applied to module path and message

	// Module path stamped on records emitted through LogDirect
	DirectModule string `toml:"direct_module"`

	// Side channel for write failures and registration errors
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	MaxLevel: "info",

	Format:          formatter.FormatTxt,
	TimestampFormat: formatter.DefaultTimestampFormat,
	UTC:             false,
	LevelWidth:      formatter.DefaultLevelWidth,
	AppendNewline:   true,
	Sanitization:    string(sanitizer.PolicyRaw),

	DirectModule: "direct",

	InternalErrorsToStderr: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads the [logbridge] table of a TOML file on top of the
// defaults. A missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()
	if err := loader.RegisterStruct(configPrefix, *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, configPrefix, cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies typed overrides keyed by toml tag
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg as a [logbridge] TOML table to path.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmtErrorf("failed to create config directory '%s': %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmtErrorf("failed to create config file '%s': %w", path, err)
	}
	defer f.Close()

	doc := map[string]Config{strings.TrimSuffix(configPrefix, "."): *cfg}
	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		return fmtErrorf("failed to encode config: %w", err)
	}
	return f.Sync()
}

// extractConfig copies loader values into cfg, field by toml tag
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}
	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}
	return nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if _, err := ParseLevel(c.MaxLevel); err != nil {
		return fmtErrorf("invalid max_level: '%s'", c.MaxLevel)
	}

	if c.Format != formatter.FormatTxt && c.Format != formatter.FormatJSON {
		return fmtErrorf("invalid format: '%s' (use txt or json)", c.Format)
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	if c.LevelWidth < 0 || c.LevelWidth > 16 {
		return fmtErrorf("level_width must be between 0 and 16: %d", c.LevelWidth)
	}

	if !sanitizer.ValidPolicy(c.Sanitization) {
		return fmtErrorf("invalid sanitization: '%s' (use raw, txt, json, or shell)", c.Sanitization)
	}

	return nil
}

// Validate reports whether the configuration is usable
func (c *Config) Validate() error {
	return c.validate()
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// maxLevel returns the parsed MaxLevel; the config must have been validated.
func (c *Config) maxLevel() Level {
	l, _ := ParseLevel(c.MaxLevel)
	return l
}

// newFormatter builds the line formatter described by the config.
func (c *Config) newFormatter() *formatter.Formatter {
	san := sanitizer.New().Policy(sanitizer.Policy(c.Sanitization))
	return formatter.New(san).
		Type(c.Format).
		TimestampFormat(c.TimestampFormat).
		UTC(c.UTC).
		LevelWidth(int(c.LevelWidth)).
		Newline(c.AppendNewline)
}
