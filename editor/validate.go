// ABOUTME: Syntactic validation for email and phone values
// ABOUTME: Pure predicates plus phone digit normalization and display formatting
package editor

import (
	"regexp"
	"strings"
)

// Phone digit bounds after stripping separators.
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// PhoneDigits strips every non-digit rune from s.
func PhoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// ValidPhone reports whether s contains 7-15 digits once separators are stripped.
func ValidPhone(s string) bool {
	n := len(PhoneDigits(s))
	return n >= minPhoneDigits && n <= maxPhoneDigits
}

// FormatPhone renders a digits-only number for display. Ten-digit numbers get
// the (AAA) BBB-CCCC treatment; anything else is returned as typed.
func FormatPhone(s string) string {
	digits := PhoneDigits(s)
	if len(digits) == 10 {
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	}
	return s
}
