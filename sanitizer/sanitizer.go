// FILE: lixenwraith/sqllog/sanitizer/sanitizer.go
// Package sanitizer renders untrusted request text (target aliases, query
// excerpts) safely for diagnostic records using composable filter and
// transform rules. It never touches the bytes written to SQL logs.
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
	FilterNonPrintable uint64 = 1 << iota // Runes not printable per strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterWhitespace                      // unicode.IsSpace
	FilterPathSpecial                     // '/', '\\' and NUL
)

// Transform flags for character transformation
const (
	TransformStrip      uint64 = 1 << iota // Removes the character
	TransformHexEncode                     // Encodes the rune's UTF-8 bytes as "<XXYY>"
	TransformJSONEscape                    // Backslash escapes such as '\n' or '\u0000'
)

// PolicyPreset names a pre-configured rule set
type PolicyPreset string

const (
	PolicyRaw   PolicyPreset = "raw"   // Passthrough
	PolicyTxt   PolicyPreset = "txt"   // Hex-encode anything non-printable
	PolicyJSON  PolicyPreset = "json"  // Escape control characters
	PolicyAlias PolicyPreset = "alias" // Hex-encode characters unsafe in a directory name
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw:   {},
	PolicyTxt:   {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyJSON:  {{filter: FilterControl, transform: TransformJSONEscape}},
	PolicyAlias: {{filter: FilterNonPrintable | FilterPathSpecial | FilterWhitespace, transform: TransformHexEncode}},
}

// filterOrder fixes the evaluation order of individual filter flags
var filterOrder = []uint64{FilterNonPrintable, FilterControl, FilterWhitespace, FilterPathSpecial}

var filterCheckers = map[uint64]func(rune) bool{
	FilterNonPrintable: func(r rune) bool { return !strconv.IsPrint(r) },
	FilterControl:      unicode.IsControl,
	FilterWhitespace:   unicode.IsSpace,
	FilterPathSpecial: func(r rune) bool {
		return r == '/' || r == '\\' || r == 0
	},
}

// Sanitizer applies an ordered rule list. Once built it is safe for concurrent use.
type Sanitizer struct {
	rules []rule
}

// New creates an empty (passthrough) Sanitizer
func New() *Sanitizer {
	return &Sanitizer{}
}

// Rule appends a custom rule; earlier rules take precedence
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Sanitize applies all rules to data
func (s *Sanitizer) Sanitize(data string) string {
	if len(s.rules) == 0 {
		return data
	}
	buf := make([]byte, 0, len(data)+8)
	for _, r := range data {
		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				buf = applyTransform(buf, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			buf = utf8.AppendRune(buf, r)
		}
	}
	return string(buf)
}

// Preview sanitizes at most maxRunes runes of data, marking truncation with "..."
func (s *Sanitizer) Preview(data string, maxRunes int) string {
	if maxRunes > 0 && utf8.RuneCountInString(data) > maxRunes {
		i, n := 0, 0
		for i = range data {
			if n == maxRunes {
				break
			}
			n++
		}
		return s.Sanitize(data[:i]) + "..."
	}
	return s.Sanitize(data)
}

func matchesFilter(r rune, filterMask uint64) bool {
	for _, flag := range filterOrder {
		if filterMask&flag != 0 && filterCheckers[flag](r) {
			return true
		}
	}
	return false
}

func applyTransform(buf []byte, r rune, transformMask uint64) []byte {
	switch {
	case transformMask&TransformStrip != 0:
		// Dropped

	case transformMask&TransformHexEncode != 0:
		var runeBytes [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBytes[:], r)
		buf = append(buf, '<')
		buf = append(buf, hex.EncodeToString(runeBytes[:n])...)
		buf = append(buf, '>')

	case transformMask&TransformJSONEscape != 0:
		switch r {
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		default:
			if r < 0x20 || r == 0x7f {
				buf = append(buf, fmt.Sprintf("\\u%04x", r)...)
			} else {
				buf = utf8.AppendRune(buf, r)
			}
		}
	}
	return buf
}
