package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaultsAndRequiredFields(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error without database url")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/identity")
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error without jwt secret")
	}

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.HTTPPort != 8080 || cfg.LockoutThreshold != 5 || cfg.LockoutDuration != 30*time.Minute {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 7*24*time.Hour || cfg.OTPTTL != 10*time.Minute {
		t.Fatalf("unexpected token defaults: %+v", cfg)
	}
}

func TestLoadConfigFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
service:
  id: identity-test
  http_port: 9000
dependencies:
  postgres_url: postgres://filehost/identity
mail:
  smtp_addr: smtp.file.test:25
  from: file@example.com
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("HTTP_PORT", "")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.ServiceID != "identity-test" || cfg.HTTPPort != 9000 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://filehost/identity" || cfg.SMTPAddr != "smtp.file.test:25" {
		t.Fatalf("file values not applied: %+v", cfg)
	}

	// Environment wins over the file.
	t.Setenv("DATABASE_URL", "postgres://envhost/identity")
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("LOCKOUT_DURATION", "45m")
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.DatabaseURL != "postgres://envhost/identity" || cfg.HTTPPort != 9100 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.LockoutDuration != 45*time.Minute {
		t.Fatalf("duration override not applied: %+v", cfg)
	}
}

func TestLoadConfigMissingFileIsTolerated(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/identity")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("missing default config should not fail: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}
