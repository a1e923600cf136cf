package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/forgecloud/identity-service/internal/domain"
)

// Identity is the per-request authenticated principal resolved by the
// session middleware.
type Identity struct {
	AccountID uuid.UUID
	Email     string
	Role      domain.Role
	Plan      domain.Plan
}

// Authenticate resolves a bearer token into an Identity. Token failures
// collapse to ErrUnauthenticated; a valid token whose account is gone maps
// to ErrNotFound and an inactive account to ErrForbidden.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (Identity, error) {
	claims, err := s.tokens.ParseSession(rawToken)
	if err != nil {
		return Identity{}, domain.ErrUnauthenticated
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		return Identity{}, err
	}
	if !account.IsActive {
		return Identity{}, fmt.Errorf("%w: account is not active", domain.ErrForbidden)
	}

	// Role and plan come from the record, not the token, so a privilege
	// change takes effect on the next request rather than at token expiry.
	return Identity{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		Plan:      account.Plan,
	}, nil
}

// Refresh issues a fresh session token carrying the account's current role
// and plan. Claim changes propagate here without forcing a re-login.
func (s *Service) Refresh(ctx context.Context, accountID uuid.UUID) (RefreshResponse, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return RefreshResponse{}, err
	}
	if !account.IsActive {
		return RefreshResponse{}, fmt.Errorf("%w: account is not active", domain.ErrForbidden)
	}

	token, err := s.tokens.IssueSession(account.ID, account.Email, account.Role, account.Plan)
	if err != nil {
		return RefreshResponse{}, fmt.Errorf("%w: sign session token: %v", domain.ErrUpstream, err)
	}
	return RefreshResponse{
		Message: "token refreshed",
		Token:   token,
	}, nil
}

// ConsumeQuota enforces the per-account API request cap and charges one
// request against it. The increment is atomic at the store.
func (s *Service) ConsumeQuota(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.APIRequestsLimit > 0 && account.APIRequestsCount >= account.APIRequestsLimit {
		return fmt.Errorf("%w: api request quota exhausted", domain.ErrRateLimited)
	}
	return s.accounts.IncrementAPIRequests(ctx, accountID)
}

// Account returns the full record for an authenticated principal; it backs
// the /me endpoint.
func (s *Service) Account(ctx context.Context, accountID uuid.UUID) (domain.Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// LoginHistory lists recent login attempts for an account, newest first.
func (s *Service) LoginHistory(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.LoginAttempt, error) {
	if s.attempts == nil {
		return nil, nil
	}
	return s.attempts.ListByAccount(ctx, accountID, limit, offset, nil)
}

// SessionTTLSeconds exposes the configured session lifetime for response
// metadata.
func (s *Service) SessionTTLSeconds() int64 {
	return int64(s.cfg.SessionTTL.Seconds())
}
