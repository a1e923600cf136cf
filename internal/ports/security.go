package ports

import (
	"time"

	"github.com/google/uuid"

	"github.com/forgecloud/identity-service/internal/domain"
)

// PasswordHasher wraps the adaptive hash primitive.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Purpose names the single operation a purpose token is scoped to.
type Purpose string

const (
	PurposeSignup        Purpose = "signup"
	PurposeLogin         Purpose = "login"
	PurposePasswordReset Purpose = "password-reset"
)

// SessionClaims is the identity payload of a long-lived session token.
type SessionClaims struct {
	AccountID uuid.UUID
	Email     string
	Role      domain.Role
	Plan      domain.Plan
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PurposeClaims is the payload of a short-lived purpose token bridging two
// otherwise-stateless flow steps.
type PurposeClaims struct {
	Email     string
	Purpose   Purpose
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer creates and verifies signed, time-bounded bearer tokens.
// Parse methods collapse every failure mode (malformed input, bad signature,
// past expiry) into a single error so callers treat the request as
// unauthenticated; they never panic. Callers of ParsePurpose must also check
// the claims' Purpose against the flow step they gate.
type TokenIssuer interface {
	IssueSession(accountID uuid.UUID, email string, role domain.Role, plan domain.Plan) (string, error)
	IssuePurpose(email string, purpose Purpose) (string, error)
	ParseSession(raw string) (SessionClaims, error)
	ParsePurpose(raw string) (PurposeClaims, error)
	// IsExpired inspects the expiry claim without requiring a valid
	// signature. Never used as an authorization check.
	IsExpired(raw string, now time.Time) bool
}
