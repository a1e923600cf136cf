package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/forgecloud/identity-service/internal/domain"
	"github.com/forgecloud/identity-service/internal/ports"
)

// Login is step one of the two-step login: credential check under lockout
// policy, then issuance of a fresh login code. No token is returned here.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		s.recordAttempt(ctx, nil, req, "FAILED", "ACCOUNT_NOT_FOUND")
		return LoginResponse{}, err
	}
	if !account.CanLogin() {
		s.recordAttempt(ctx, &account.ID, req, "FAILED", "ACCOUNT_NOT_USABLE")
		return LoginResponse{}, fmt.Errorf("%w: account is not active", domain.ErrForbidden)
	}

	now := s.nowFn()
	// Lockout is checked before the password so a locked outcome reveals
	// nothing about credential correctness.
	if account.LockedAt(now) {
		s.recordAttempt(ctx, &account.ID, req, "BLOCKED", "ACCOUNT_LOCKED")
		slog.Default().WarnContext(ctx, "account lockout active",
			"module", "application",
			"operation", "login",
			"outcome", "blocked",
			"account_id", account.ID,
			"locked_until", account.LockedUntil,
		)
		return LoginResponse{}, domain.ErrAccountLocked
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		s.recordAttempt(ctx, &account.ID, req, "FAILED", "INVALID_PASSWORD")
		if bookErr := s.bookFailedLogin(ctx, account, now); bookErr != nil {
			appLogger().ErrorContext(ctx, "failed to persist lockout state",
				"operation", "login",
				"outcome", "failure",
				"account_id", account.ID,
				"error", bookErr,
			)
		}
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	code := s.otpFn()
	expiry := now.Add(s.cfg.OTPTTL)
	fields := map[string]any{
		"login_otp":        code,
		"login_otp_expiry": expiry,
		"updated_at":       now,
	}
	// A successful credential check clears the lockout bookkeeping in the
	// same write that stores the new code.
	if account.FailedLoginAttempts > 0 || account.LockedUntil != nil {
		fields["failed_login_attempts"] = 0
		fields["last_failed_login_at"] = nil
		fields["locked_until"] = nil
	}
	if err := s.accounts.UpdateFields(ctx, account.ID, fields); err != nil {
		return LoginResponse{}, err
	}

	if err := s.sendCode(ctx, account, ports.MailLoginCode, code); err != nil {
		return LoginResponse{}, err
	}

	s.recordAttempt(ctx, &account.ID, req, "PENDING_OTP", "")
	return LoginResponse{
		Message:     "verification code sent",
		UserID:      account.ID,
		Email:       account.Email,
		RequiresOTP: true,
	}, nil
}

// bookFailedLogin increments the failure counter and, once the threshold is
// reached, arms the lockout window, both in a single update. The counter is
// not reset by the lock itself; only a later successful credential check
// does that.
func (s *Service) bookFailedLogin(ctx context.Context, account domain.Account, now time.Time) error {
	failed := account.FailedLoginAttempts + 1
	fields := map[string]any{
		"failed_login_attempts": failed,
		"last_failed_login_at":  now,
		"updated_at":            now,
	}
	if failed >= s.cfg.LockoutThreshold {
		lockedUntil := now.Add(s.cfg.LockoutDuration)
		fields["locked_until"] = lockedUntil
		slog.Default().WarnContext(ctx, "account lockout triggered",
			"module", "application",
			"operation", "login",
			"outcome", "blocked",
			"account_id", account.ID,
			"failed_attempts", failed,
			"locked_until", lockedUntil,
		)
	}
	return s.accounts.UpdateFields(ctx, account.ID, fields)
}

// VerifyLoginOTP is step two of login: it consumes the stored login code and
// is the only path outside refresh that yields a session token.
func (s *Service) VerifyLoginOTP(ctx context.Context, req VerifyLoginOTPRequest) (VerifyLoginOTPResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return VerifyLoginOTPResponse{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return VerifyLoginOTPResponse{}, err
	}
	if !account.IsActive {
		return VerifyLoginOTPResponse{}, fmt.Errorf("%w: account is not active", domain.ErrForbidden)
	}

	now := s.nowFn()
	if err := domain.ValidateOTP(req.OTP, account.LoginOTP, account.LoginOTPExpiry, now); err != nil {
		return VerifyLoginOTPResponse{}, err
	}

	err = s.accounts.UpdateFields(ctx, account.ID, map[string]any{
		"login_otp":        "",
		"login_otp_expiry": nil,
		"last_login_at":    now,
		"updated_at":       now,
	})
	if err != nil {
		return VerifyLoginOTPResponse{}, err
	}

	token, err := s.tokens.IssueSession(account.ID, account.Email, account.Role, account.Plan)
	if err != nil {
		return VerifyLoginOTPResponse{}, fmt.Errorf("%w: sign session token: %v", domain.ErrUpstream, err)
	}

	s.recordAttempt(ctx, &account.ID, LoginRequest{Email: req.Email, IPAddress: req.IPAddress, UserAgent: req.UserAgent}, "SUCCESS", "")
	slog.Default().InfoContext(ctx, "login completed",
		"module", "application",
		"operation", "verify_login_otp",
		"outcome", "success",
		"account_id", account.ID,
	)
	return VerifyLoginOTPResponse{
		Message: "login successful",
		Token:   token,
		User:    account.Summary(),
	}, nil
}
