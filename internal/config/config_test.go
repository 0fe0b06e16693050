package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "BACKEND_URL", "LOG_DIR", "LOG_LEVEL", "DEBUG_MODE", "SESSION_TTL", "GENERATE_TIMEOUT", "SEED_FILE", "PUBLIC_ORIGIN", "MAX_SESSIONS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.BackendURL != "" {
		t.Errorf("expected empty backend url, got %q", cfg.BackendURL)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m ttl, got %v", cfg.SessionTTL)
	}
	if cfg.GenerateTimeout != 0 {
		t.Errorf("expected no timeout, got %v", cfg.GenerateTimeout)
	}
	if !cfg.DebugMode {
		t.Errorf("expected debug mode on by default")
	}
	if cfg.PublicOrigin != "" || cfg.GenerationConfigured() {
		t.Errorf("expected generation target unset by default, got %+v", cfg)
	}
	if cfg.MaxSessions != 1000 {
		t.Errorf("expected 1000 max sessions, got %d", cfg.MaxSessions)
	}
}

func TestLoadPublicOrigin(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("PUBLIC_ORIGIN", "https://video.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PublicOrigin != "https://video.example.com" || !cfg.GenerationConfigured() {
		t.Fatalf("unexpected public origin %q", cfg.PublicOrigin)
	}

	for _, bad := range []string{"video.example.com", "ftp://video.example.com", "https://video.example.com/app", "https://"} {
		t.Setenv("PUBLIC_ORIGIN", bad)
		if _, err := Load(); err == nil {
			t.Errorf("expected error for PUBLIC_ORIGIN %q", bad)
		}
	}
}

func TestLoadRejectsBadMaxSessions(t *testing.T) {
	t.Setenv("MAX_SESSIONS", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative MAX_SESSIONS")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BACKEND_URL", "http://render.local/")
	t.Setenv("SESSION_TTL", "90")
	t.Setenv("GENERATE_TIMEOUT", "2m")
	t.Setenv("DEBUG_MODE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "9000" || cfg.BackendURL != "http://render.local" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.SessionTTL != 90*time.Second {
		t.Errorf("expected 90s ttl, got %v", cfg.SessionTTL)
	}
	if cfg.GenerateTimeout != 2*time.Minute {
		t.Errorf("expected 2m timeout, got %v", cfg.GenerateTimeout)
	}
	if cfg.DebugMode {
		t.Errorf("expected debug mode off")
	}
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad SESSION_TTL")
	}

	t.Setenv("SESSION_TTL", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero SESSION_TTL")
	}

	t.Setenv("SESSION_TTL", "")
	t.Setenv("GENERATE_TIMEOUT", "-5s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative GENERATE_TIMEOUT")
	}
}
