package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration. It merges file defaults and
// environment overrides so local and deployed runs share one code path.
type Config struct {
	ServiceID string
	HTTPPort  int

	DatabaseURL string
	RedisURL    string

	JWTSecret string

	BcryptCost int

	SessionTTL      time.Duration
	PurposeTokenTTL time.Duration
	OTPTTL          time.Duration

	LockoutThreshold int
	LockoutDuration  time.Duration

	DefaultAPIRequestLimit int64

	SignupRateLimitPerIP    int64
	SignupRateLimitPerEmail int64
	ResetRateLimitPerIP     int64
	ResetRateLimitPerEmail  int64
	RateLimitWindow         time.Duration

	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

// configFile mirrors the YAML schema used by configs/default.yaml. It is
// separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Mail struct {
		SMTPAddr string `yaml:"smtp_addr"`
		From     string `yaml:"from"`
	} `yaml:"mail"`
}

// LoadConfig resolves configuration in priority order: defaults -> file ->
// env. The file is optional; secrets only ever come from the environment.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:               "identity-service",
		HTTPPort:                8080,
		BcryptCost:              12,
		SessionTTL:              7 * 24 * time.Hour,
		PurposeTokenTTL:         10 * time.Minute,
		OTPTTL:                  10 * time.Minute,
		LockoutThreshold:        5,
		LockoutDuration:         30 * time.Minute,
		DefaultAPIRequestLimit:  1000,
		SignupRateLimitPerIP:    20,
		SignupRateLimitPerEmail: 6,
		ResetRateLimitPerIP:     20,
		ResetRateLimitPerEmail:  6,
		RateLimitWindow:         time.Minute,
		MailFrom:                "no-reply@localhost",
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			raw = nil
		} else if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		var file configFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		if file.Service.ID != "" {
			cfg.ServiceID = file.Service.ID
		}
		if file.Service.HTTPPort > 0 {
			cfg.HTTPPort = file.Service.HTTPPort
		}
		if file.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = file.Dependencies.PostgresURL
		}
		if file.Dependencies.RedisURL != "" {
			cfg.RedisURL = file.Dependencies.RedisURL
		}
		if file.Mail.SMTPAddr != "" {
			cfg.SMTPAddr = file.Mail.SMTPAddr
		}
		if file.Mail.From != "" {
			cfg.MailFrom = file.Mail.From
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url is required (DATABASE_URL)")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTPPort = n
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BcryptCost = n
		}
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionTTL = d
		}
	}
	if v := os.Getenv("OTP_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.OTPTTL = d
		}
	}
	if v := os.Getenv("LOCKOUT_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LockoutDuration = d
		}
	}
	if v := os.Getenv("LOCKOUT_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LockoutThreshold = n
		}
	}
	if v := os.Getenv("SMTP_ADDR"); v != "" {
		cfg.SMTPAddr = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.SMTPUsername = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTPPassword = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.MailFrom = v
	}
}
