// pkg/domain/text/text.go

// Package text provides range validation and zero-copy views over text.
//
// Offsets are byte offsets into a UTF-8 string, as with Go slicing.
// Lengths that describe characters count runes; an invalid UTF-8 byte counts
// as one character, the same way a range loop over a string sees it.
package text

import (
	"unicode/utf8"

	domainerr "github.com/damianoneill/go-obfuscate/pkg/domain/errors"
)

// CheckRange validates that 0 <= start <= end <= len(s).
func CheckRange(s string, start, end int) error {
	if start < 0 || start > end || end > len(s) {
		return domainerr.OutOfRange(start, end, len(s))
	}
	return nil
}

// RuneCount returns the number of characters in s.
func RuneCount(s string) int {
	return utf8.RuneCountInString(s)
}

// Prefix returns the first n characters of s, or s if it is shorter.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// Suffix returns the last n characters of s, or s if it is shorter.
// Characters are counted front to back, as in Prefix.
func Suffix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	skip := RuneCount(s) - n
	if skip <= 0 {
		return s
	}
	return s[len(Prefix(s, skip)):]
}
