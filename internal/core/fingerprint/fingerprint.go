// Package fingerprint computes the change-detection digest of a tag's
// semantic content.
//
// The digest is a 31-multiplier rolling hash over the UTF-16 code units of
// "Trim(name)|Trim(description)", folded into a signed 32-bit integer with
// two's-complement wraparound at every step and rendered in base 10. Go's
// int32 arithmetic wraps by definition, so the value is identical on every
// platform and matches implementations that hash UTF-16 strings the same way.
// It is not a security primitive.
package fingerprint

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

const separator = "|"

func Fingerprint(name, description string) string {
	content := Trim(name) + separator + Trim(description)

	var hash int32
	for _, unit := range utf16.Encode([]rune(content)) {
		hash = hash*31 + int32(unit)
	}
	return strconv.FormatInt(int64(hash), 10)
}

// Trim removes leading and trailing ECMAScript whitespace and line
// terminators. That set is unicode.IsSpace without U+0085 (NEL) and with
// U+FEFF (BOM); strings.TrimSpace differs on exactly those two.
func Trim(s string) string {
	return strings.TrimFunc(s, isTrimmable)
}

func isTrimmable(r rune) bool {
	switch r {
	case '\u0085':
		return false
	case '\uFEFF':
		return true
	default:
		return unicode.IsSpace(r)
	}
}
