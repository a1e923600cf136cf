package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgecloud/identity-service/internal/domain"
	"github.com/forgecloud/identity-service/internal/ports"
)

const genericResetMessage = "if an account exists for this address, a reset code has been sent"

// ForgotPassword starts the reset flow. For unknown addresses it answers
// with the same generic message and performs no further action, so the
// response never reveals whether an account exists.
func (s *Service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (ForgotPasswordResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return ForgotPasswordResponse{}, err
	}

	if ip := req.IPAddress; ip != "" {
		if err := s.enforceRateLimit(ctx, "reset:ip:"+ip, s.cfg.ResetRateLimitPerIP); err != nil {
			return ForgotPasswordResponse{}, err
		}
	}
	if err := s.enforceRateLimit(ctx, "reset:email:"+email, s.cfg.ResetRateLimitPerEmail); err != nil {
		return ForgotPasswordResponse{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ForgotPasswordResponse{Message: genericResetMessage}, nil
		}
		return ForgotPasswordResponse{}, err
	}
	if !account.IsActive {
		return ForgotPasswordResponse{}, fmt.Errorf("%w: account is not active", domain.ErrForbidden)
	}

	now := s.nowFn()
	code := s.otpFn()
	expiry := now.Add(s.cfg.OTPTTL)
	err = s.accounts.UpdateFields(ctx, account.ID, map[string]any{
		"password_reset_otp":        code,
		"password_reset_otp_expiry": expiry,
		"updated_at":                now,
	})
	if err != nil {
		return ForgotPasswordResponse{}, err
	}

	if err := s.sendCode(ctx, account, ports.MailPasswordResetCode, code); err != nil {
		return ForgotPasswordResponse{}, err
	}

	return ForgotPasswordResponse{Message: genericResetMessage}, nil
}

// VerifyResetOTP exchanges a valid reset code for a short-lived purpose
// token that gates the final step. The stored code is cleared here; from
// this point only the token authorizes the password change.
func (s *Service) VerifyResetOTP(ctx context.Context, req VerifyResetOTPRequest) (VerifyResetOTPResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return VerifyResetOTPResponse{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return VerifyResetOTPResponse{}, err
	}
	if !account.IsActive {
		return VerifyResetOTPResponse{}, fmt.Errorf("%w: account is not active", domain.ErrForbidden)
	}

	now := s.nowFn()
	if err := domain.ValidateOTP(req.OTP, account.PasswordResetOTP, account.PasswordResetOTPExpiry, now); err != nil {
		return VerifyResetOTPResponse{}, err
	}

	err = s.accounts.UpdateFields(ctx, account.ID, map[string]any{
		"password_reset_otp":        "",
		"password_reset_otp_expiry": nil,
		"updated_at":                now,
	})
	if err != nil {
		return VerifyResetOTPResponse{}, err
	}

	token, err := s.tokens.IssuePurpose(account.Email, ports.PurposePasswordReset)
	if err != nil {
		return VerifyResetOTPResponse{}, fmt.Errorf("%w: sign reset token: %v", domain.ErrUpstream, err)
	}

	return VerifyResetOTPResponse{
		Message:    "code verified",
		ResetToken: token,
	}, nil
}

// SetNewPassword completes the reset flow. Only a purpose token scoped to
// password-reset is accepted; tokens issued for any other purpose are
// rejected even when otherwise well-formed.
func (s *Service) SetNewPassword(ctx context.Context, req SetNewPasswordRequest) (SetNewPasswordResponse, error) {
	claims, err := s.tokens.ParsePurpose(req.ResetToken)
	if err != nil {
		return SetNewPasswordResponse{}, domain.ErrUnauthenticated
	}
	if claims.Purpose != ports.PurposePasswordReset {
		return SetNewPasswordResponse{}, domain.ErrUnauthenticated
	}
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return SetNewPasswordResponse{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, claims.Email)
	if err != nil {
		return SetNewPasswordResponse{}, err
	}
	if !account.IsActive {
		return SetNewPasswordResponse{}, fmt.Errorf("%w: account is not active", domain.ErrForbidden)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return SetNewPasswordResponse{}, fmt.Errorf("%w: hash password: %v", domain.ErrUpstream, err)
	}

	err = s.accounts.UpdateFields(ctx, account.ID, map[string]any{
		"password_hash":             hash,
		"password_reset_otp":        "",
		"password_reset_otp_expiry": nil,
		"updated_at":                s.nowFn(),
	})
	if err != nil {
		return SetNewPasswordResponse{}, err
	}

	s.sendConfirmation(ctx, account, ports.MailPasswordChanged)

	return SetNewPasswordResponse{Message: "password updated"}, nil
}
