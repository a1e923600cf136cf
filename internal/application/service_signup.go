package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/forgecloud/identity-service/internal/domain"
	"github.com/forgecloud/identity-service/internal/ports"
)

// Signup creates a pending account and mails its verification code.
// If the mail cannot be delivered the account is deleted again, so from the
// caller's perspective the step is atomic: either a verifiable pending
// account exists and the user holds the code, or nothing exists.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (SignupResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return SignupResponse{}, err
	}

	if ip := req.IPAddress; ip != "" {
		if err := s.enforceRateLimit(ctx, "signup:ip:"+ip, s.cfg.SignupRateLimitPerIP); err != nil {
			return SignupResponse{}, err
		}
	}
	if err := s.enforceRateLimit(ctx, "signup:email:"+email, s.cfg.SignupRateLimitPerEmail); err != nil {
		return SignupResponse{}, err
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return SignupResponse{}, fmt.Errorf("%w: account already exists", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return SignupResponse{}, err
	}

	now := s.nowFn()
	code := s.otpFn()
	expiry := now.Add(s.cfg.OTPTTL)
	account := domain.Account{
		Email:                      email,
		DisplayName:                req.DisplayName,
		IsEmailVerified:            false,
		IsActive:                   false,
		Role:                       domain.RoleUser,
		Plan:                       domain.PlanFree,
		EmailVerificationOTP:       code,
		EmailVerificationOTPExpiry: &expiry,
		APIRequestsLimit:           s.cfg.DefaultAPIRequestLimit,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	if err := s.accounts.Create(ctx, &account); err != nil {
		return SignupResponse{}, err
	}

	if err := s.sendCode(ctx, account, ports.MailVerificationCode, code); err != nil {
		// Compensating rollback: the half-created account must not linger,
		// otherwise the email can never be signed up again.
		if delErr := s.accounts.Delete(ctx, account.ID); delErr != nil {
			appLogger().ErrorContext(ctx, "rollback of pending account failed",
				"operation", "signup",
				"outcome", "failure",
				"account_id", account.ID,
				"error", delErr,
			)
		}
		return SignupResponse{}, err
	}

	slog.Default().InfoContext(ctx, "signup initiated",
		"module", "application",
		"operation", "signup",
		"outcome", "success",
		"account_id", account.ID,
	)
	return SignupResponse{
		Message: "verification code sent",
		UserID:  account.ID,
		Email:   account.Email,
	}, nil
}

// VerifyEmail consumes the signup verification code and marks the address
// as proven. The stored code is cleared in the same update.
func (s *Service) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (SignupResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return SignupResponse{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return SignupResponse{}, err
	}
	if account.IsEmailVerified {
		return SignupResponse{}, fmt.Errorf("%w: email already verified", domain.ErrConflict)
	}
	if err := domain.ValidateOTP(req.OTP, account.EmailVerificationOTP, account.EmailVerificationOTPExpiry, s.nowFn()); err != nil {
		return SignupResponse{}, err
	}

	err = s.accounts.UpdateFields(ctx, account.ID, map[string]any{
		"is_email_verified":             true,
		"email_verification_otp":        "",
		"email_verification_otp_expiry": nil,
		"updated_at":                    s.nowFn(),
	})
	if err != nil {
		return SignupResponse{}, err
	}

	s.sendConfirmation(ctx, account, ports.MailEmailVerified)

	return SignupResponse{
		Message: "email verified",
		UserID:  account.ID,
		Email:   account.Email,
	}, nil
}

// SetPassword completes signup: it stores the first password and activates
// the account. The path is one-time; a set password can only be replaced via
// the reset flow.
func (s *Service) SetPassword(ctx context.Context, req SetPasswordRequest) (SignupResponse, error) {
	if err := domain.ValidatePassword(req.Password); err != nil {
		return SignupResponse{}, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return SignupResponse{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return SignupResponse{}, err
	}
	if !account.IsEmailVerified {
		return SignupResponse{}, fmt.Errorf("%w: email not verified", domain.ErrForbidden)
	}
	if account.PasswordHash != "" {
		return SignupResponse{}, fmt.Errorf("%w: password already set", domain.ErrConflict)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return SignupResponse{}, fmt.Errorf("%w: hash password: %v", domain.ErrUpstream, err)
	}

	err = s.accounts.UpdateFields(ctx, account.ID, map[string]any{
		"password_hash": hash,
		"is_active":     true,
		"updated_at":    s.nowFn(),
	})
	if err != nil {
		return SignupResponse{}, err
	}

	return SignupResponse{
		Message: "account activated",
		UserID:  account.ID,
		Email:   account.Email,
	}, nil
}
