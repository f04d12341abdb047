// ABOUTME: Tests for email and phone syntactic validation
// ABOUTME: Covers shape checks, digit stripping, and display formatting
package editor

import "testing"

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"a@x.com", true},
		{"first.last@sub.domain.co", true},
		{"  padded@x.com  ", true},
		{"not-an-email", false},
		{"missing@tld", false},
		{"@x.com", false},
		{"two@at@x.com", false},
		{"spaces in@x.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidEmail(tt.email); got != tt.valid {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.valid)
		}
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"5512345678", true},
		{"(551) 234-5678", true},
		{"+1 551 234 5678", true},
		{"1234567", true},              // 7 digits, the floor
		{"123456", false},              // 6 digits
		{"123456789012345", true},      // 15 digits, the ceiling
		{"1234567890123456", false},    // 16 digits
		{"no digits here", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidPhone(tt.phone); got != tt.valid {
			t.Errorf("ValidPhone(%q) = %v, want %v", tt.phone, got, tt.valid)
		}
	}
}

func TestPhoneDigits(t *testing.T) {
	if got := PhoneDigits("+1 (551) 234-5678"); got != "15512345678" {
		t.Errorf("PhoneDigits = %q, want 15512345678", got)
	}
	if got := PhoneDigits("abc"); got != "" {
		t.Errorf("PhoneDigits(abc) = %q, want empty", got)
	}
}

func TestFormatPhone(t *testing.T) {
	if got := FormatPhone("5512345678"); got != "(551) 234-5678" {
		t.Errorf("FormatPhone = %q", got)
	}
	// Non-ten-digit numbers pass through as typed.
	if got := FormatPhone("+44 20 7946 0958"); got != "+44 20 7946 0958" {
		t.Errorf("FormatPhone = %q", got)
	}
}
