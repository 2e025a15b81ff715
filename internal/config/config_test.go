package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SESSION_JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DraftTTL != 30*time.Minute {
		t.Errorf("expected draft ttl 30m, got %v", cfg.DraftTTL)
	}
	if cfg.BackendAPITimeout != 5*time.Second {
		t.Errorf("expected backend timeout 5s, got %v", cfg.BackendAPITimeout)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Asia/Ho_Chi_Minh" {
		t.Errorf("unexpected location %v, err %v", loc, err)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SESSION_JWT_SECRET", "test-secret")
	t.Setenv("DRAFT_TTL", "45m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.vn, https://book.example.vn,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DraftTTL != 45*time.Minute {
		t.Errorf("expected draft ttl 45m, got %v", cfg.DraftTTL)
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 || origins[1] != "https://book.example.vn" {
		t.Errorf("unexpected origins %v", origins)
	}
}

func TestLoadConfig_FailsWithoutSecret(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SESSION_JWT_SECRET", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected missing secret error")
	}
	if !strings.Contains(err.Error(), "SESSION_JWT_SECRET") {
		t.Fatalf("expected error to mention SESSION_JWT_SECRET, got %v", err)
	}
}

func TestLoadConfig_BadTimezone(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SESSION_JWT_SECRET", "test-secret")
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected timezone error")
	}
}
