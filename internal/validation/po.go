// Package validation checks extracted document text for a known purchase order number.
//
// The check is a line heuristic, not a parser: the first line that starts with
// "po" (any case) and contains a colon decides the outcome, and only the text
// between the first and second colon is compared against the allow-list.
package validation

import (
	"slices"
	"strings"
	"unicode/utf8"
)

var validPONumbers = []string{"12345", "98765"}

// ValidPONumbers returns a copy of the fixed allow-list of purchase order numbers.
func ValidPONumbers() []string {
	return slices.Clone(validPONumbers)
}

const poMarker = "po"

// Verifier matches purchase order lines against an allow-list.
// It is read-only after construction and safe for concurrent use.
type Verifier struct {
	valid map[string]struct{}
}

// NewVerifier returns a Verifier accepting exactly the given numbers.
func NewVerifier(numbers ...string) *Verifier {
	valid := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		valid[n] = struct{}{}
	}
	return &Verifier{valid: valid}
}

var defaultVerifier = NewVerifier(validPONumbers...)

// DefaultVerifier returns the Verifier backed by the fixed allow-list.
func DefaultVerifier() *Verifier {
	return defaultVerifier
}

// ExtractPO returns the value of the first "po" line that has a colon.
// Lines starting with "po" but lacking a colon are skipped.
func ExtractPO(text string) (string, bool) {
	for _, line := range splitLines(text) {
		if !strings.HasPrefix(strings.ToLower(line), poMarker) {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) > 1 {
			return strings.TrimSpace(parts[1]), true
		}
	}
	return "", false
}

// Verify reports whether text carries a purchase order line whose value is allow-listed.
func (v *Verifier) Verify(text string) bool {
	po, ok := ExtractPO(text)
	if !ok {
		return false
	}
	_, valid := v.valid[po]
	return valid
}

// VerifyPO runs the default allow-list check on text.
func VerifyPO(text string) bool {
	return defaultVerifier.Verify(text)
}

// splitLines breaks text on the same separators as Python's str.splitlines:
// \n, \r, \r\n, \v, \f, \x1c-\x1e, U+0085, U+2028 and U+2029. A trailing
// separator does not produce an empty final line.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
