package postgres

import (
	"time"

	"github.com/google/uuid"
)

type accountModel struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string    `gorm:"column:email;uniqueIndex"`
	DisplayName string    `gorm:"column:display_name"`

	PasswordHash    string `gorm:"column:password_hash"`
	IsEmailVerified bool   `gorm:"column:is_email_verified"`
	IsActive        bool   `gorm:"column:is_active"`

	Role string `gorm:"column:role"`
	Plan string `gorm:"column:plan"`

	EmailVerificationOTP       string     `gorm:"column:email_verification_otp"`
	EmailVerificationOTPExpiry *time.Time `gorm:"column:email_verification_otp_expiry"`
	LoginOTP                   string     `gorm:"column:login_otp"`
	LoginOTPExpiry             *time.Time `gorm:"column:login_otp_expiry"`
	PasswordResetOTP           string     `gorm:"column:password_reset_otp"`
	PasswordResetOTPExpiry     *time.Time `gorm:"column:password_reset_otp_expiry"`

	FailedLoginAttempts int        `gorm:"column:failed_login_attempts"`
	LastFailedLoginAt   *time.Time `gorm:"column:last_failed_login_at"`
	LockedUntil         *time.Time `gorm:"column:locked_until"`

	APIRequestsCount int64 `gorm:"column:api_requests_count"`
	APIRequestsLimit int64 `gorm:"column:api_requests_limit"`

	LastLoginAt *time.Time `gorm:"column:last_login_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "accounts" }

type loginAttemptModel struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	AccountID     *uuid.UUID `gorm:"column:account_id"`
	AttemptAt     time.Time  `gorm:"column:attempt_at"`
	Status        string     `gorm:"column:status"`
	FailureReason string     `gorm:"column:failure_reason"`
	IPAddress     *string    `gorm:"column:ip_address"`
	UserAgent     string     `gorm:"column:user_agent"`
}

func (loginAttemptModel) TableName() string { return "login_attempts" }
