package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/paydesk",
		DBMaxConns:         10,
		TokenTTL:           time.Hour,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
		OTPTTL:             5 * time.Minute,
		IdempotencyTTL:     24 * time.Hour,
		MaintenanceCron:    "@hourly",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database url", mutate: func(c *Config) { c.DatabaseURL = " " }, wantErr: true},
		{name: "production without jwt secret", mutate: func(c *Config) {
			c.Environment = "production"
			c.DataEncryptionKey = "k"
		}, wantErr: true},
		{name: "production with otp echo", mutate: func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "secret"
			c.DataEncryptionKey = "k"
			c.OTPEcho = true
		}, wantErr: true},
		{name: "small body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }, wantErr: true},
		{name: "zero pool", mutate: func(c *Config) { c.DBMaxConns = 0 }, wantErr: true},
		{name: "short otp ttl", mutate: func(c *Config) { c.OTPTTL = time.Second }, wantErr: true},
		{name: "email without host", mutate: func(c *Config) { c.EmailEnabled = true }, wantErr: true},
		{name: "valid cron", mutate: func(c *Config) { c.SalaryCron = "0 6 28 * *" }},
		{name: "invalid cron", mutate: func(c *Config) { c.SalaryCron = "every day" }, wantErr: true},
		{name: "invalid maintenance cron", mutate: func(c *Config) { c.MaintenanceCron = "hourly" }, wantErr: true},
		{name: "maintenance disabled", mutate: func(c *Config) { c.MaintenanceCron = "" }},
		{name: "short idempotency ttl", mutate: func(c *Config) { c.IdempotencyTTL = time.Second }, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("PAYDESK_TEST_INT", "not-a-number")
	if got := getEnvInt("PAYDESK_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
	t.Setenv("PAYDESK_TEST_DURATION", "90s")
	if got := getEnvDuration("PAYDESK_TEST_DURATION", time.Second); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
	t.Setenv("PAYDESK_TEST_BOOL", "true")
	if !getEnvBool("PAYDESK_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
}

func TestLoadServerTimeouts(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "")
	t.Setenv("HTTP_WRITE_TIMEOUT", "90s")
	t.Setenv("HTTP_IDLE_TIMEOUT", "")
	cfg := Load()

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{name: "read default", got: cfg.HTTPReadTimeout, want: 30 * time.Second},
		{name: "write override", got: cfg.HTTPWriteTimeout, want: 90 * time.Second},
		{name: "idle default", got: cfg.HTTPIdleTimeout, want: 120 * time.Second},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}
