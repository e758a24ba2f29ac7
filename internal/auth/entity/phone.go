package entity

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidPhone is returned when a raw value cannot be normalized.
var ErrInvalidPhone = errors.New("auth: invalid phone number")

var reE164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// Phone is a phone number in canonical E.164 form, e.g. +919876543210.
type Phone string

// NormalizePhone maps a raw Indian mobile number to its canonical form.
//
// Accepted digit shapes after stripping every non-digit:
//   - 10 digits starting with 6, 7, 8 or 9
//   - 12 digits starting with 91
//   - 13 digits starting with 091
func NormalizePhone(raw string) (Phone, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	var canonical string
	switch {
	case len(digits) == 10 && strings.ContainsRune("6789", rune(digits[0])):
		canonical = "+91" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		canonical = "+" + digits
	case len(digits) == 13 && strings.HasPrefix(digits, "091"):
		canonical = "+" + digits[1:]
	default:
		return "", ErrInvalidPhone
	}

	if !IsE164(canonical) {
		return "", ErrInvalidPhone
	}

	return Phone(canonical), nil
}

// IsE164 reports whether s has the shape +<1-9><up to 14 digits>.
func IsE164(s string) bool {
	return reE164.MatchString(s)
}

func (p Phone) String() string {
	return string(p)
}

// Last4 returns the last four digits, or all digits for shorter values.
func (p Phone) Last4() string {
	s := strings.TrimPrefix(string(p), "+")
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}

// IsZero reports whether p is empty.
func (p Phone) IsZero() bool {
	return p == ""
}
