package domain

import "errors"

var (
	// ErrNotFound is returned when no account matches the lookup, or a token
	// references an account that has since been deleted. Adapters map it
	// consistently to 404.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput covers malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict signals state already satisfied: duplicate signup, email
	// already verified, password already set.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials hides whether the email or the password failed.
	// The single message prevents account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned for missing, malformed, expired or
	// bad-signature tokens. All token failures collapse to this one outcome.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden signals insufficient activation state, role or plan.
	ErrForbidden = errors.New("forbidden")
	// ErrAccountLocked signals an active temporary lockout window. It is
	// returned before the password is checked so the outcome reveals nothing
	// about credential correctness.
	ErrAccountLocked = errors.New("account temporarily locked")
	// ErrOTPInvalid is returned when a submitted code does not match the
	// stored one, or no code is pending.
	ErrOTPInvalid = errors.New("verification code invalid")
	// ErrOTPExpired is returned when the stored code's expiry has passed.
	ErrOTPExpired = errors.New("verification code expired")
	// ErrRateLimited signals an exhausted request window or quota.
	ErrRateLimited = errors.New("rate limited")
	// ErrUpstream wraps mail-dispatcher or hasher failures. The underlying
	// cause is logged, never echoed to the client.
	ErrUpstream = errors.New("upstream dependency failure")
)
