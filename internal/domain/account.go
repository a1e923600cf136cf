package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the coarse authorization tier carried in session tokens.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// Plan is the subscription tier. Plans form an ordered hierarchy used for
// feature gating; compare with Rank, never with string comparison.
type Plan string

const (
	PlanFree         Plan = "free"
	PlanDeveloper    Plan = "developer"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// Rank returns the hierarchy position of p. Unknown plans rank below free so
// a corrupted claim never grants access.
func (p Plan) Rank() int {
	switch p {
	case PlanFree:
		return 0
	case PlanDeveloper:
		return 1
	case PlanProfessional:
		return 2
	case PlanEnterprise:
		return 3
	}
	return -1
}

// Account is the canonical identity aggregate. All multi-step flow state
// (pending OTPs, lockout counters) lives on the record itself so the
// orchestrator stays stateless between steps.
type Account struct {
	ID          uuid.UUID
	Email       string
	DisplayName string

	// PasswordHash stays empty until signup step 3 completes.
	PasswordHash    string
	IsEmailVerified bool
	IsActive        bool

	Role Role
	Plan Plan

	// Pending one-time codes. Each code is paired 1:1 with its expiry;
	// a code without an expiry is never valid.
	EmailVerificationOTP       string
	EmailVerificationOTPExpiry *time.Time
	LoginOTP                   string
	LoginOTPExpiry             *time.Time
	PasswordResetOTP           string
	PasswordResetOTPExpiry     *time.Time

	FailedLoginAttempts int
	LastFailedLoginAt   *time.Time
	LockedUntil         *time.Time

	APIRequestsCount int64
	APIRequestsLimit int64

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanLogin reports whether the account has completed signup and may attempt
// password login. Lockout is checked separately.
func (a Account) CanLogin() bool {
	return a.IsActive && a.IsEmailVerified && a.PasswordHash != ""
}

// LockedAt reports whether a lockout window is active at the given instant.
func (a Account) LockedAt(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// PublicSummary is the client-safe projection returned after a completed
// login and by identity endpoints.
type PublicSummary struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        Role      `json:"role"`
	Plan        Plan      `json:"plan"`
}

// Summary builds the public projection of a.
func (a Account) Summary() PublicSummary {
	return PublicSummary{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        a.Role,
		Plan:        a.Plan,
	}
}

// LoginAttempt records authentication outcomes for audit purposes.
// Inserts are best-effort and never change a flow outcome.
type LoginAttempt struct {
	ID            int64
	AccountID     *uuid.UUID
	AttemptAt     time.Time
	Status        string
	FailureReason string
	IPAddress     string
	UserAgent     string
}
