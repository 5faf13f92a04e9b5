package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateEmail validates an email address. Surrounding whitespace is ignored.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(strings.TrimSpace(email)) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateAmount validates a donation amount
func ValidateAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative: %.2f", amount)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
