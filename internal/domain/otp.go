package domain

import (
	"crypto/rand"
	"math/big"
	"time"
)

const otpSpan = 900000 // codes are drawn from [100000, 999999]

// GenerateOTP returns a uniformly random six-digit code as a string.
// The range starts at 100000 so the code is always six characters and never
// loses leading zeros in transit.
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		// crypto/rand only fails when the platform entropy source is broken;
		// there is no meaningful recovery for credential generation.
		panic(err)
	}
	return big.NewInt(0).Add(n, big.NewInt(100000)).String()
}

// ValidateOTP checks a submitted code against the stored code and its expiry.
// It is a pure function: no normalization, exact string match, and an absent
// code or absent/past expiry is never accepted.
func ValidateOTP(submitted, stored string, expiry *time.Time, now time.Time) error {
	if stored == "" || submitted != stored {
		return ErrOTPInvalid
	}
	if expiry == nil || !now.Before(*expiry) {
		return ErrOTPExpired
	}
	return nil
}
