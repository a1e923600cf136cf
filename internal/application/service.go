package application

import (
	"time"

	"github.com/forgecloud/identity-service/internal/domain"
	"github.com/forgecloud/identity-service/internal/ports"
)

// Service orchestrates the signup, login and password-reset state machines.
// All flow state lives on the account record; the service itself holds only
// immutable dependencies and is safe for concurrent use.
type Service struct {
	cfg      Config
	accounts ports.AccountRepository
	attempts ports.LoginAttemptRepository
	limiter  ports.RateLimitStore
	mailer   ports.MailDispatcher
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	nowFn    func() time.Time
	otpFn    func() string
}

// Config carries the tunable flow parameters. It is resolved once at startup
// and passed in explicitly; business logic never reads ambient process state.
type Config struct {
	OTPTTL           time.Duration
	SessionTTL       time.Duration
	PurposeTokenTTL  time.Duration
	LockoutThreshold int
	LockoutDuration  time.Duration

	DefaultAPIRequestLimit int64

	SignupRateLimitPerIP    int64
	SignupRateLimitPerEmail int64
	ResetRateLimitPerIP     int64
	ResetRateLimitPerEmail  int64
	RateLimitWindow         time.Duration
}

// Dependencies bundles the collaborators Service needs.
type Dependencies struct {
	Config   Config
	Accounts ports.AccountRepository
	Attempts ports.LoginAttemptRepository
	Limiter  ports.RateLimitStore
	Mailer   ports.MailDispatcher
	Hasher   ports.PasswordHasher
	Tokens   ports.TokenIssuer
}

// NewService wires a Service from its dependencies.
func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 10 * time.Minute
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.PurposeTokenTTL <= 0 {
		cfg.PurposeTokenTTL = 10 * time.Minute
	}
	if cfg.LockoutThreshold <= 0 {
		cfg.LockoutThreshold = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	if cfg.DefaultAPIRequestLimit <= 0 {
		cfg.DefaultAPIRequestLimit = 1000
	}
	return &Service{
		cfg:      cfg,
		accounts: deps.Accounts,
		attempts: deps.Attempts,
		limiter:  deps.Limiter,
		mailer:   deps.Mailer,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		nowFn:    func() time.Time { return time.Now().UTC() },
		otpFn:    domain.GenerateOTP,
	}
}
