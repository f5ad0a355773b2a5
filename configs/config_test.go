package configs

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "GO_ENV", "POSITIONS_API_URL", "POSITIONS_API_TIMEOUT", "SESSION_MAX_AGE", "LOG_ENCODING", "VIEW_STATE_TTL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Gateway.URL != "http://127.0.0.1:5000/api/options_positions" {
		t.Errorf("Gateway.URL = %q", cfg.Gateway.URL)
	}
	if cfg.Gateway.Timeout != 10*time.Second {
		t.Errorf("Gateway.Timeout = %v, want 10s", cfg.Gateway.Timeout)
	}
	if cfg.Log.Encoding != "console" {
		t.Errorf("Log.Encoding = %q, want console", cfg.Log.Encoding)
	}
	if cfg.Redis.ViewStateTTL != cfg.Session.MaxAge {
		t.Errorf("ViewStateTTL = %v, want session max age %v", cfg.Redis.ViewStateTTL, cfg.Session.MaxAge)
	}
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("LOG_ENCODING", "")
	t.Setenv("SESSION_MAX_AGE", "3600")

	cfg := Load()
	if !cfg.Server.IsProduction() {
		t.Error("IsProduction() = false")
	}
	if cfg.Log.Encoding != "json" {
		t.Errorf("Log.Encoding = %q, want json", cfg.Log.Encoding)
	}
	if cfg.Session.MaxAge != time.Hour {
		t.Errorf("Session.MaxAge = %v, want 1h", cfg.Session.MaxAge)
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", time.Minute},
		{"90s", 90 * time.Second},
		{"2h", 2 * time.Hour},
		{"30", 30 * time.Second},
		{"soon", time.Minute},
	}
	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.value)
		if got := getEnvDuration("TEST_DURATION", time.Minute); got != tt.want {
			t.Errorf("getEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
