// Package formatter renders facade records into single log lines.
package formatter

import (
	"time"

	"github.com/lixenwraith/logbridge/facade"
	"github.com/lixenwraith/logbridge/sanitizer"
)

// Output formats
const (
	FormatTxt  = "txt"
	FormatJSON = "json"
)

// Defaults for a new Formatter
const (
	DefaultTimestampFormat = "2006-01-02 15:04:05"
	DefaultLevelWidth      = 5
)

// Formatter turns a record into bytes. Configure it with the chained setters
// before sharing; AppendRecord does not mutate it and may be called
// concurrently.
type Formatter struct {
	sanitizer       *sanitizer.Sanitizer
	jsonSanitizer   *sanitizer.Sanitizer // sanitizer minus JSON escaping, which AppendJSONString already does
	format          string
	timestampFormat string
	levelWidth      int
	newline         bool
	utc             bool
}

// New creates a txt formatter with the provided sanitizer
func New(s ...*sanitizer.Sanitizer) *Formatter {
	san := sanitizer.New()
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	}
	return &Formatter{
		sanitizer:       san,
		jsonSanitizer:   san.Without(sanitizer.TransformJSONEscape),
		format:          FormatTxt,
		timestampFormat: DefaultTimestampFormat,
		levelWidth:      DefaultLevelWidth,
		newline:         true,
	}
}

// Type sets the output format ("txt" or "json")
func (f *Formatter) Type(format string) *Formatter {
	f.format = format
	return f
}

// TimestampFormat sets the time layout
func (f *Formatter) TimestampFormat(layout string) *Formatter {
	if layout != "" {
		f.timestampFormat = layout
	}
	return f
}

// LevelWidth sets the minimum width the level name is padded to in txt output
func (f *Formatter) LevelWidth(width int) *Formatter {
	if width >= 0 {
		f.levelWidth = width
	}
	return f
}

// Newline controls whether a trailing '\n' terminates each line
func (f *Formatter) Newline(enable bool) *Formatter {
	f.newline = enable
	return f
}

// UTC renders timestamps in UTC instead of local time
func (f *Formatter) UTC(enable bool) *Formatter {
	f.utc = enable
	return f
}

// AppendRecord appends the formatted line for rec to dst.
func (f *Formatter) AppendRecord(dst []byte, rec facade.Record) []byte {
	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	if f.utc {
		ts = ts.UTC()
	}

	if f.format == FormatJSON {
		dst = f.appendJSON(dst, ts, rec)
	} else {
		dst = f.appendTxt(dst, ts, rec)
	}
	if f.newline {
		dst = append(dst, '\n')
	}
	return dst
}

// Format returns the formatted line for rec in a new slice.
func (f *Formatter) Format(rec facade.Record) []byte {
	return f.AppendRecord(make([]byte, 0, 64+len(rec.Message)), rec)
}

// appendTxt produces "<time> <LEVEL> [<module>] <message>"
func (f *Formatter) appendTxt(dst []byte, ts time.Time, rec facade.Record) []byte {
	dst = ts.AppendFormat(dst, f.timestampFormat)
	dst = append(dst, ' ')

	level := rec.Level.String()
	dst = append(dst, level...)
	for i := len(level); i < f.levelWidth; i++ {
		dst = append(dst, ' ')
	}

	dst = append(dst, ' ', '[')
	dst = f.sanitizer.Append(dst, rec.ModulePath)
	dst = append(dst, ']', ' ')
	return f.sanitizer.Append(dst, rec.Message)
}

func (f *Formatter) appendJSON(dst []byte, ts time.Time, rec facade.Record) []byte {
	dst = append(dst, `{"time":"`...)
	dst = ts.AppendFormat(dst, f.timestampFormat)
	dst = append(dst, `","level":"`...)
	dst = append(dst, rec.Level.String()...)
	dst = append(dst, `","module":`...)
	dst = sanitizer.AppendJSONString(dst, rec.ModulePath)
	dst = append(dst, `,"message":`...)
	if f.jsonSanitizer.Passthrough() {
		dst = sanitizer.AppendJSONString(dst, rec.Message)
	} else {
		dst = sanitizer.AppendJSONString(dst, f.jsonSanitizer.Sanitize(rec.Message))
	}
	return append(dst, '}')
}
