package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgecloud/identity-service/internal/domain"
	"github.com/forgecloud/identity-service/internal/ports"
)

func appLogger() *slog.Logger {
	return slog.Default().With(
		"module", "application",
		"layer", "application",
	)
}

// sendCode delivers an OTP email and blocks the calling step until the
// dispatcher answers. A failure here fails the step.
func (s *Service) sendCode(ctx context.Context, account domain.Account, template ports.MailTemplate, code string) error {
	err := s.mailer.Send(ctx, account.Email, template, ports.MailData{
		DisplayName: account.DisplayName,
		Code:        code,
	})
	if err != nil {
		appLogger().ErrorContext(ctx, "otp mail dispatch failed",
			"operation", "send_code",
			"outcome", "failure",
			"template", string(template),
			"error", err,
		)
		return fmt.Errorf("%w: mail dispatch: %v", domain.ErrUpstream, err)
	}
	return nil
}

// sendConfirmation delivers a post-success notification. The step's outcome
// is already decided, so failures are only logged.
func (s *Service) sendConfirmation(ctx context.Context, account domain.Account, template ports.MailTemplate) {
	err := s.mailer.Send(ctx, account.Email, template, ports.MailData{
		DisplayName: account.DisplayName,
	})
	if err != nil {
		appLogger().WarnContext(ctx, "confirmation mail dispatch failed",
			"operation", "send_confirmation",
			"outcome", "warning",
			"template", string(template),
			"error", err,
		)
	}
}

// recordAttempt stores a login outcome for audit. Best-effort.
func (s *Service) recordAttempt(ctx context.Context, accountID *uuid.UUID, req LoginRequest, status, reason string) {
	if s.attempts == nil {
		return
	}
	err := s.attempts.Insert(ctx, domain.LoginAttempt{
		AccountID:     accountID,
		AttemptAt:     s.nowFn(),
		Status:        status,
		FailureReason: reason,
		IPAddress:     req.IPAddress,
		UserAgent:     req.UserAgent,
	})
	if err != nil {
		appLogger().WarnContext(ctx, "failed to persist login attempt",
			"operation", "record_login_attempt",
			"outcome", "warning",
			"reason", reason,
			"error", err,
		)
	}
}

// enforceRateLimit applies a fixed-window cap to an abuse-prone endpoint.
// An unavailable limiter degrades open with a warning so the auth flows stay
// usable during a cache outage.
func (s *Service) enforceRateLimit(ctx context.Context, key string, threshold int64) error {
	if s.limiter == nil || threshold <= 0 || strings.TrimSpace(key) == "" {
		return nil
	}
	window := s.cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	count, err := s.limiter.Hit(ctx, key, window)
	if err != nil {
		appLogger().WarnContext(ctx, "rate-limit state unavailable",
			"operation", "rate_limit",
			"outcome", "warning",
			"key", key,
			"error", err,
		)
		return nil
	}
	if count > threshold {
		return domain.ErrRateLimited
	}
	return nil
}

// normalizeEmail trims surrounding whitespace and validates syntax. Stored
// emails keep their case and lookups are case-sensitive.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidateEmail(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
