// internal/validation/formats.go
package validation

import (
	"regexp"
	"strings"
)

// Format checks are syntactic only: dates are not checked against the
// calendar, so 2024-02-30 is accepted.
var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2})?`)
	timePattern     = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
)

const minPhoneDigits = 7

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidURL reports whether s starts with an http or https scheme.
func IsValidURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsValidPhone reports whether s uses only digits, spaces and -()+ and
// has at least seven digits.
func IsValidPhone(s string) bool {
	if !phonePattern.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits
}

// IsValidDate reports whether s is YYYY-MM-DD.
func IsValidDate(s string) bool {
	return datePattern.MatchString(s)
}

// IsValidDateTime reports whether s starts with YYYY-MM-DD, a T or space,
// and HH:MM with optional seconds. Trailing zone or fraction is allowed.
func IsValidDateTime(s string) bool {
	return dateTimePattern.MatchString(s)
}

// IsValidTime reports whether s is HH:MM or HH:MM:SS.
func IsValidTime(s string) bool {
	return timePattern.MatchString(s)
}
