package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
auth:
  jwt_access_ttl: 30m
  login_per_minute: 5
smtp:
  mode: smtp
  host: mail.internal
  port: 587
admin:
  management_page_size: 25
reminders:
  pending_age: 96h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Auth.JWTAccessTTL != 30*time.Minute {
		t.Fatalf("unexpected jwt access ttl: %s", cfg.Auth.JWTAccessTTL)
	}
	if cfg.Auth.LoginPerMinute != 5 {
		t.Fatalf("unexpected login_per_minute: %d", cfg.Auth.LoginPerMinute)
	}
	if cfg.SMTP.Mode != "smtp" || cfg.SMTP.Host != "mail.internal" || cfg.SMTP.Port != 587 {
		t.Fatalf("unexpected smtp overrides: %+v", cfg.SMTP)
	}
	if cfg.Admin.ManagementPageSize != 25 {
		t.Fatalf("unexpected management page size: %d", cfg.Admin.ManagementPageSize)
	}
	if cfg.Reminders.PendingAge != 96*time.Hour {
		t.Fatalf("unexpected reminders pending_age: %s", cfg.Reminders.PendingAge)
	}

	if cfg.Admin.DashboardPageSize != 10 {
		t.Fatalf("dashboard page size default should stay 10, got %d", cfg.Admin.DashboardPageSize)
	}
	if cfg.Admin.MaxPageSize != 100 {
		t.Fatalf("max page size default should stay 100, got %d", cfg.Admin.MaxPageSize)
	}
	if cfg.Reminders.Interval != 6*time.Hour {
		t.Fatalf("reminders interval default should stay 6h, got %s", cfg.Reminders.Interval)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.SMTP.Mode != "log" {
		t.Fatalf("unexpected default smtp mode: %s", cfg.SMTP.Mode)
	}
	if cfg.Admin.ManagementPageSize != 20 {
		t.Fatalf("unexpected default management page size: %d", cfg.Admin.ManagementPageSize)
	}
	if cfg.Auth.LoginPer10Sec != 3 {
		t.Fatalf("unexpected default login_per_10sec: %d", cfg.Auth.LoginPer10Sec)
	}
	if cfg.Reminders.ResendCooldown != 48*time.Hour {
		t.Fatalf("unexpected default resend cooldown: %s", cfg.Reminders.ResendCooldown)
	}
}

func TestEnvOverridesWinOverYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("SMTP_MODE", "smtp")
	t.Setenv("LOGIN_PER_MINUTE", "2")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte("http:\n  addr: \":9090\"\n"), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("env override should win: %s", cfg.HTTP.Addr)
	}
	if cfg.SMTP.Mode != "smtp" {
		t.Fatalf("unexpected smtp mode: %s", cfg.SMTP.Mode)
	}
	if cfg.Auth.LoginPerMinute != 2 {
		t.Fatalf("unexpected login_per_minute: %d", cfg.Auth.LoginPerMinute)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"REFRESH_TTL",
		"LOGIN_PER_MINUTE",
		"LOGIN_PER_10SEC",
		"SMTP_MODE",
		"SMTP_HOST",
		"SMTP_PORT",
		"SMTP_FROM",
		"REMINDERS_INTERVAL",
		"REMINDERS_PENDING_AGE",
		"REMINDERS_RESEND_COOLDOWN",
	} {
		t.Setenv(key, "")
	}
}
