package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("ROLE_POLICY", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.APIBaseURL != "http://localhost:8000/api/v1" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.SessionBackend != "sql" {
		t.Errorf("SessionBackend = %q, want sql", cfg.SessionBackend)
	}
	if cfg.RolePolicy != "email" {
		t.Errorf("RolePolicy = %q, want email", cfg.RolePolicy)
	}
	if cfg.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.PageSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://parking.example.com/api/v1/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("PAGE_SIZE", "not-a-number")
	t.Setenv("DEBUG", "true")

	cfg := Load()

	if cfg.APIBaseURL != "https://parking.example.com/api/v1" {
		t.Errorf("APIBaseURL should drop trailing slash, got %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Errorf("APITimeout = %s, want 3s", cfg.APITimeout)
	}
	if cfg.SessionBackend != "redis" {
		t.Errorf("SessionBackend = %q, want redis", cfg.SessionBackend)
	}
	if cfg.PageSize != 10 {
		t.Errorf("invalid PAGE_SIZE should fall back to 10, got %d", cfg.PageSize)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestCSRFSecret(t *testing.T) {
	t.Setenv("CSRF_SECRET", "")
	first, second := Load().CSRFSecret, Load().CSRFSecret
	if len(first) != 64 || first == second {
		t.Errorf("expected distinct random secrets, got %q and %q", first, second)
	}
	if first == "change-me-in-production" {
		t.Error("a fixed default secret must never be used")
	}

	t.Setenv("CSRF_SECRET", "from-env")
	if got := Load().CSRFSecret; got != "from-env" {
		t.Errorf("CSRFSecret = %q, want from-env", got)
	}
}

func TestTrustProxy(t *testing.T) {
	t.Setenv("TRUST_PROXY", "")
	if Load().TrustProxy {
		t.Error("proxy headers must not be trusted by default")
	}
	t.Setenv("TRUST_PROXY", "true")
	if !Load().TrustProxy {
		t.Error("TRUST_PROXY=true should be honoured")
	}
}
