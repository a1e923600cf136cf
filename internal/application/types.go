package application

import (
	"github.com/google/uuid"

	"github.com/forgecloud/identity-service/internal/domain"
)

type SignupRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IPAddress   string `json:"-"`
}

type SignupResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"userId"`
	Email   string    `json:"email"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type SetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type LoginResponse struct {
	Message     string    `json:"message"`
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	RequiresOTP bool      `json:"requiresOTP"`
}

type VerifyLoginOTPRequest struct {
	Email     string `json:"email"`
	OTP       string `json:"otp"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type VerifyLoginOTPResponse struct {
	Message string               `json:"message"`
	Token   string               `json:"token"`
	User    domain.PublicSummary `json:"user"`
}

type ForgotPasswordRequest struct {
	Email     string `json:"email"`
	IPAddress string `json:"-"`
}

type ForgotPasswordResponse struct {
	Message string `json:"message"`
}

type VerifyResetOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type VerifyResetOTPResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

type SetNewPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

type SetNewPasswordResponse struct {
	Message string `json:"message"`
}

type RefreshResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}
