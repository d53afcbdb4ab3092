// Package sanitizer rewrites message text before it reaches a sink, based on
// composable filter/transform rules. A Sanitizer is immutable once built and
// safe for concurrent use.
package sanitizer

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // runes rejected by strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterWhitespace                      // unicode.IsSpace
	FilterShellSpecial                    // '`', '$', ';', '|', '&', '>', '<', '(', ')', '#'
)

// Transform flags
const (
	TransformStrip      uint64 = 1 << iota // drop the rune
	TransformHexEncode                     // "<XXYY>" of the rune's UTF-8 bytes
	TransformJSONEscape                    // backslash escape ('\n', '\u0000')
)

// Policy names a preset rule set
type Policy string

const (
	PolicyRaw   Policy = "raw"   // passthrough
	PolicyTxt   Policy = "txt"   // hex-encode non-printables, keeps one record per line
	PolicyJSON  Policy = "json"  // JSON-escape control characters
	PolicyShell Policy = "shell" // strip shell metacharacters and whitespace
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[Policy][]rule{
	PolicyRaw:   {},
	PolicyTxt:   {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyJSON:  {{filter: FilterControl, transform: TransformJSONEscape}},
	PolicyShell: {{filter: FilterShellSpecial | FilterWhitespace, transform: TransformStrip}},
}

// ValidPolicy reports whether p names a known preset.
func ValidPolicy(p string) bool {
	_, ok := policyRules[Policy(p)]
	return ok
}

// Sanitizer applies rules in order; the first matching rule wins for a rune
type Sanitizer struct {
	rules []rule
}

// New returns a passthrough sanitizer.
func New() *Sanitizer {
	return &Sanitizer{}
}

// Rule returns a copy of s with one more rule appended.
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	rules := make([]rule, len(s.rules), len(s.rules)+1)
	copy(rules, s.rules)
	return &Sanitizer{rules: append(rules, rule{filter: filter, transform: transform})}
}

// Policy returns a copy of s with the preset's rules appended.
func (s *Sanitizer) Policy(p Policy) *Sanitizer {
	out := &Sanitizer{rules: append([]rule(nil), s.rules...)}
	out.rules = append(out.rules, policyRules[p]...)
	return out
}

// Without returns a copy of s minus every rule using transform.
func (s *Sanitizer) Without(transform uint64) *Sanitizer {
	out := &Sanitizer{}
	for _, rl := range s.rules {
		if rl.transform&transform == 0 {
			out.rules = append(out.rules, rl)
		}
	}
	return out
}

// Passthrough reports whether s has no rules.
func (s *Sanitizer) Passthrough() bool {
	return len(s.rules) == 0
}

// Append appends the sanitized form of data to dst.
func (s *Sanitizer) Append(dst []byte, data string) []byte {
	if len(s.rules) == 0 {
		return append(dst, data...)
	}
	for _, r := range data {
		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				dst = applyTransform(dst, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			dst = utf8.AppendRune(dst, r)
		}
	}
	return dst
}

// Sanitize returns the sanitized form of data.
func (s *Sanitizer) Sanitize(data string) string {
	if len(s.rules) == 0 {
		return data
	}
	return string(s.Append(make([]byte, 0, len(data)), data))
}

func matchesFilter(r rune, mask uint64) bool {
	if mask&FilterNonPrintable != 0 && !strconv.IsPrint(r) {
		return true
	}
	if mask&FilterControl != 0 && unicode.IsControl(r) {
		return true
	}
	if mask&FilterWhitespace != 0 && unicode.IsSpace(r) {
		return true
	}
	if mask&FilterShellSpecial != 0 {
		switch r {
		case '`', '$', ';', '|', '&', '>', '<', '(', ')', '#':
			return true
		}
	}
	return false
}

func applyTransform(dst []byte, r rune, mask uint64) []byte {
	switch {
	case mask&TransformStrip != 0:
		return dst

	case mask&TransformHexEncode != 0:
		var rb [utf8.UTFMax]byte
		n := utf8.EncodeRune(rb[:], r)
		dst = append(dst, '<')
		dst = append(dst, hex.EncodeToString(rb[:n])...)
		return append(dst, '>')

	case mask&TransformJSONEscape != 0:
		return appendJSONRune(dst, r)
	}
	return utf8.AppendRune(dst, r)
}

func appendJSONRune(dst []byte, r rune) []byte {
	switch r {
	case '\n':
		return append(dst, '\\', 'n')
	case '\r':
		return append(dst, '\\', 'r')
	case '\t':
		return append(dst, '\\', 't')
	case '\b':
		return append(dst, '\\', 'b')
	case '\f':
		return append(dst, '\\', 'f')
	case '"':
		return append(dst, '\\', '"')
	case '\\':
		return append(dst, '\\', '\\')
	}
	if r < 0x20 || r == 0x7f {
		return append(dst, fmt.Sprintf("\\u%04x", r)...)
	}
	return utf8.AppendRune(dst, r)
}

// AppendJSONString appends s as a quoted JSON string.
func AppendJSONString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= ' ' && c != '"' && c != '\\' && c < 0x7f {
			start := i
			for i < len(s) && s[i] >= ' ' && s[i] != '"' && s[i] != '\\' && s[i] < 0x7f {
				i++
			}
			dst = append(dst, s[start:i]...)
			continue
		}
		if c < utf8.RuneSelf {
			dst = appendJSONRune(dst, rune(c))
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, `�`...)
		} else {
			dst = append(dst, s[i:i+size]...)
		}
		i += size
	}
	return append(dst, '"')
}
