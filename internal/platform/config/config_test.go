package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
jwt:
  access_token_ttl: 30m
rate_limit:
  auth_per_minute: 5
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Run("Env Overrides And Defaults", func(t *testing.T) {
		t.Setenv("ASKLY_JWT_SECRET", "s3cret")
		t.Setenv("ASKLY_DATABASE_URL", "file:/tmp/other.db")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != 9090 {
			t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
		}
		if cfg.JWT.AccessTokenTTL != 30*time.Minute {
			t.Errorf("Expected ttl 30m, got %v", cfg.JWT.AccessTokenTTL)
		}
		if cfg.JWT.Secret != "s3cret" {
			t.Errorf("Expected secret from env, got %q", cfg.JWT.Secret)
		}
		if cfg.Database.URL != "file:/tmp/other.db" {
			t.Errorf("Expected database url from env, got %q", cfg.Database.URL)
		}
		if cfg.JWT.Header != "x-auth-token" {
			t.Errorf("Expected default header x-auth-token, got %q", cfg.JWT.Header)
		}
		if cfg.RateLimit.AuthPerMinute != 5 {
			t.Errorf("Expected auth_per_minute 5, got %d", cfg.RateLimit.AuthPerMinute)
		}
	})

	t.Run("Missing File Uses Defaults", func(t *testing.T) {
		t.Setenv("ASKLY_JWT_SECRET", "s3cret")

		cfg, err := Load(filepath.Join(dir, "absent.yaml"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != 8880 {
			t.Errorf("Expected default port 8880, got %d", cfg.Server.Port)
		}
	})

	t.Run("Missing Secret", func(t *testing.T) {
		t.Setenv("ASKLY_JWT_SECRET", "")

		if _, err := Load(path); err == nil {
			t.Error("Expected error for missing jwt secret, got nil")
		}
	})
}
