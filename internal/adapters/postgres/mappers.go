package postgres

import (
	"github.com/forgecloud/identity-service/internal/domain"
)

func toDomainAccount(m accountModel) domain.Account {
	return domain.Account{
		ID:          m.ID,
		Email:       m.Email,
		DisplayName: m.DisplayName,

		PasswordHash:    m.PasswordHash,
		IsEmailVerified: m.IsEmailVerified,
		IsActive:        m.IsActive,

		Role: domain.Role(m.Role),
		Plan: domain.Plan(m.Plan),

		EmailVerificationOTP:       m.EmailVerificationOTP,
		EmailVerificationOTPExpiry: m.EmailVerificationOTPExpiry,
		LoginOTP:                   m.LoginOTP,
		LoginOTPExpiry:             m.LoginOTPExpiry,
		PasswordResetOTP:           m.PasswordResetOTP,
		PasswordResetOTPExpiry:     m.PasswordResetOTPExpiry,

		FailedLoginAttempts: m.FailedLoginAttempts,
		LastFailedLoginAt:   m.LastFailedLoginAt,
		LockedUntil:         m.LockedUntil,

		APIRequestsCount: m.APIRequestsCount,
		APIRequestsLimit: m.APIRequestsLimit,

		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toAccountModel(a domain.Account) accountModel {
	return accountModel{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,

		PasswordHash:    a.PasswordHash,
		IsEmailVerified: a.IsEmailVerified,
		IsActive:        a.IsActive,

		Role: string(a.Role),
		Plan: string(a.Plan),

		EmailVerificationOTP:       a.EmailVerificationOTP,
		EmailVerificationOTPExpiry: a.EmailVerificationOTPExpiry,
		LoginOTP:                   a.LoginOTP,
		LoginOTPExpiry:             a.LoginOTPExpiry,
		PasswordResetOTP:           a.PasswordResetOTP,
		PasswordResetOTPExpiry:     a.PasswordResetOTPExpiry,

		FailedLoginAttempts: a.FailedLoginAttempts,
		LastFailedLoginAt:   a.LastFailedLoginAt,
		LockedUntil:         a.LockedUntil,

		APIRequestsCount: a.APIRequestsCount,
		APIRequestsLimit: a.APIRequestsLimit,

		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toDomainAttempt(m loginAttemptModel) domain.LoginAttempt {
	attempt := domain.LoginAttempt{
		ID:            m.ID,
		AccountID:     m.AccountID,
		AttemptAt:     m.AttemptAt,
		Status:        m.Status,
		FailureReason: m.FailureReason,
		UserAgent:     m.UserAgent,
	}
	if m.IPAddress != nil {
		attempt.IPAddress = *m.IPAddress
	}
	return attempt
}
