package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
	if cfg.SessionName != "skald_session" {
		t.Errorf("session name = %q", cfg.SessionName)
	}
}

func TestAuthConfig_OAuthModeValid(t *testing.T) {
	cfg := AuthConfig{
		Mode:          "oauth",
		SessionSecret: "secret",
		Google: GoogleConfig{
			ClientID:     "id",
			ClientSecret: "cs",
			RedirectURL:  "https://blog.example.com/api/auth/callback",
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("oauth mode should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("oauth mode should be enabled")
	}
}

func TestAuthConfig_OAuthModeMissingSecret(t *testing.T) {
	cfg := AuthConfig{
		Mode:   "oauth",
		Google: GoogleConfig{ClientID: "id", ClientSecret: "cs", RedirectURL: "u"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("oauth mode without session secret should fail")
	}
	if !strings.Contains(err.Error(), "session_secret") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_OAuthModeMissingClient(t *testing.T) {
	cfg := AuthConfig{Mode: "oauth", SessionSecret: "secret"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("oauth mode without google client should fail")
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestBuildConfigRequiresCommand(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Build.Command = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty build command should fail validation")
	}
}

func TestHTTPConfigPortRange(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("out-of-range port should fail validation")
	}
}

func TestRateLimitDisabledAtZero(t *testing.T) {
	cfg := RateLimitConfig{Requests: 0}
	if cfg.Enabled() {
		t.Error("zero requests should disable the limiter")
	}
}
