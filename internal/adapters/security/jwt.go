package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/forgecloud/identity-service/internal/domain"
	"github.com/forgecloud/identity-service/internal/ports"
)

// TokenIssuer implements HS256 signing over one process-wide secret.
// Rotating the secret invalidates every outstanding token; that is the
// accepted trade-off for keeping the service stateless.
type TokenIssuer struct {
	secret     []byte
	sessionTTL time.Duration
	purposeTTL time.Duration
	nowFn      func() time.Time
}

// NewTokenIssuer builds an issuer from the configured secret and lifetimes.
func NewTokenIssuer(secret string, sessionTTL, purposeTTL time.Duration) (*TokenIssuer, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	if purposeTTL <= 0 {
		purposeTTL = 10 * time.Minute
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		purposeTTL: purposeTTL,
		nowFn:      func() time.Time { return time.Now().UTC() },
	}, nil
}

type sessionJWTClaims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Plan      string `json:"plan"`
	jwt.RegisteredClaims
}

type purposeJWTClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (t *TokenIssuer) IssueSession(accountID uuid.UUID, email string, role domain.Role, plan domain.Plan) (string, error) {
	now := t.nowFn()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionJWTClaims{
		AccountID: accountID.String(),
		Email:     email,
		Role:      string(role),
		Plan:      string(plan),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.sessionTTL)),
		},
	})
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) IssuePurpose(email string, purpose ports.Purpose) (string, error) {
	now := t.nowFn()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, purposeJWTClaims{
		Email:   email,
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.purposeTTL)),
		},
	})
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) ParseSession(raw string) (ports.SessionClaims, error) {
	claims := &sessionJWTClaims{}
	if err := t.parseInto(raw, claims); err != nil {
		return ports.SessionClaims{}, err
	}
	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return ports.SessionClaims{}, fmt.Errorf("parse account_id: %w", err)
	}
	if claims.ExpiresAt == nil {
		return ports.SessionClaims{}, errors.New("missing expiry claim")
	}
	return ports.SessionClaims{
		AccountID: accountID,
		Email:     claims.Email,
		Role:      domain.Role(claims.Role),
		Plan:      domain.Plan(claims.Plan),
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

func (t *TokenIssuer) ParsePurpose(raw string) (ports.PurposeClaims, error) {
	claims := &purposeJWTClaims{}
	if err := t.parseInto(raw, claims); err != nil {
		return ports.PurposeClaims{}, err
	}
	if claims.ExpiresAt == nil {
		return ports.PurposeClaims{}, errors.New("missing expiry claim")
	}
	return ports.PurposeClaims{
		Email:     claims.Email,
		Purpose:   ports.Purpose(claims.Purpose),
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

// IsExpired inspects the expiry claim without validating the signature.
// Unparseable input counts as expired.
func (t *TokenIssuer) IsExpired(raw string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(raw, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	return !now.Before(claims.ExpiresAt.Time)
}

func (t *TokenIssuer) parseInto(raw string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid token claims")
	}
	return nil
}
