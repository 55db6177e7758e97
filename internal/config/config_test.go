package config

import (
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/focusflow_test")
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.FrontendURL != "http://localhost:3000" {
		t.Errorf("FrontendURL = %q", cfg.FrontendURL)
	}
	if cfg.AIProvider != "openai" {
		t.Errorf("AIProvider = %q, want openai", cfg.AIProvider)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.RateLimit != "20-S" {
		t.Errorf("RateLimit = %q, want 20-S", cfg.RateLimit)
	}
	if cfg.EnableHSTS || cfg.ServerDebugMode || cfg.OTELEnabled {
		t.Error("boolean flags should default to false")
	}
}

func TestLoadGoogleRedirectDefault(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BASE_URL", "https://focusflow.example.com")
	t.Setenv("GOOGLE_REDIRECT_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := "https://focusflow.example.com/api/google/auth/callback"
	if cfg.GoogleRedirectURL != want {
		t.Errorf("GoogleRedirectURL = %q, want %q", cfg.GoogleRedirectURL, want)
	}
}

func TestLoadExplicitGoogleRedirectKept(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_REDIRECT_URL", "https://proxy.example.com/oauth/callback")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GoogleRedirectURL != "https://proxy.example.com/oauth/callback" {
		t.Errorf("GoogleRedirectURL = %q", cfg.GoogleRedirectURL)
	}
}

func TestGoogleConfigured(t *testing.T) {
	tests := []struct {
		name         string
		clientID     string
		clientSecret string
		want         bool
	}{
		{"both set", "id", "secret", true},
		{"missing secret", "id", "", false},
		{"missing id", "", "secret", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{GoogleClientID: tt.clientID, GoogleClientSecret: tt.clientSecret}
			if got := cfg.GoogleConfigured(); got != tt.want {
				t.Errorf("GoogleConfigured() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"banana", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VALUE", tt.value)
			if got := getEnvBool("TEST_BOOL_VALUE", false); got != tt.want {
				t.Errorf("getEnvBool(%q) = %t, want %t", tt.value, got, tt.want)
			}
		})
	}
}
