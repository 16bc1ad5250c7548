package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("TOKEN_TTL", "")
	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.TokenTTL != 8*time.Hour {
		t.Fatalf("unexpected token ttl %v", cfg.TokenTTL)
	}
}

func TestLoadClientFromEnv(t *testing.T) {
	t.Setenv("HRMSYNC_STORE", "leveldb")
	t.Setenv("HRMSYNC_WORKERS", "4")
	t.Setenv("HRMSYNC_RATE_PER_SECOND", "2.5")
	t.Setenv("HRMSYNC_PRESERVED_KEYS", "token, user ,theme")
	t.Setenv("HRMSYNC_QUOTA_BYTES", "not-a-number")

	cfg := LoadClient()
	if cfg.StoreKind != "leveldb" || cfg.Workers != 4 || cfg.RatePerSecond != 2.5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.PreservedKeys) != 3 || cfg.PreservedKeys[1] != "user" {
		t.Fatalf("unexpected preserved keys %q", cfg.PreservedKeys)
	}
	if cfg.QuotaBytes != 5*1024*1024 {
		t.Fatalf("expected fallback quota, got %d", cfg.QuotaBytes)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		DatabaseURL:        "postgres://localhost/hrm",
		JWTSecret:          "dev-secret",
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 10,
		TokenTTL:           time.Hour,
		Environment:        "development",
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = " " }, wantErr: true},
		{name: "small body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }, wantErr: true},
		{name: "production short secret", mutate: func(c *Config) { c.Environment = "production" }, wantErr: true},
		{
			name: "production complete",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.JWTSecret = "0123456789abcdef0123456789abcdef"
				c.DataEncryptionKey = "key"
				c.RunSeed = false
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestClientValidate(t *testing.T) {
	cfg := ClientConfig{StoreKind: "postgres", MaxFileBytes: 1, Workers: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown store to be rejected")
	}
	cfg = ClientConfig{StoreKind: "sqlite", MaxFileBytes: 1, Workers: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing path to be rejected")
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	if err := os.WriteFile(file, []byte("HRMSYNC_SERVER_URL=http://from-file\nHRMSYNC_TOKEN=file-token\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("HRMSYNC_SERVER_URL", "http://from-env")
	t.Setenv("HRMSYNC_TOKEN", "")
	os.Unsetenv("HRMSYNC_TOKEN")

	LoadDotEnv(file, filepath.Join(dir, "missing.env"))
	t.Cleanup(func() { os.Unsetenv("HRMSYNC_TOKEN") })

	cfg := LoadClient()
	if cfg.ServerURL != "http://from-env" {
		t.Fatalf("expected environment to win, got %q", cfg.ServerURL)
	}
	if cfg.Token != "file-token" {
		t.Fatalf("expected token from file, got %q", cfg.Token)
	}
}
