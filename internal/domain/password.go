package domain

import (
	"fmt"
	"strings"
)

const minPasswordLength = 8

// ValidatePassword enforces the baseline password policy applied at signup
// set-password and password-reset completion.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	return nil
}

// ValidateEmail performs the syntactic check used at signup: exactly one '@',
// non-empty local and domain parts, and at least one '.' in the domain.
// Deliverability is proven by the OTP round-trip, not by parsing.
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	domainPart := email[at+1:]
	if domainPart == "" || !strings.Contains(domainPart, ".") {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	return nil
}
