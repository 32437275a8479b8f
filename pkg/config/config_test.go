package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "DB_HOST", "DB_NAME", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"JWT_SECRET_KEY",
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "GEMINI_TIMEOUT_SECONDS",
		"LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want localhost", cfg.Database.Host)
	}
	if cfg.Database.DBName != "expensero" {
		t.Errorf("Database.DBName = %q, want expensero", cfg.Database.DBName)
	}
	if cfg.Database.MaxConns != 10 || cfg.Database.MinConns != 2 {
		t.Errorf("pool bounds = %d/%d, want 10/2", cfg.Database.MaxConns, cfg.Database.MinConns)
	}
	if cfg.JWT.Expiration != 24*time.Hour {
		t.Errorf("JWT.Expiration = %v, want 24h", cfg.JWT.Expiration)
	}
	if cfg.Gemini.APIKey != "" {
		t.Errorf("Gemini.APIKey = %q, want empty", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash-exp" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
	if cfg.Gemini.BaseURL != "https://generativelanguage.googleapis.com/v1beta" {
		t.Errorf("Gemini.BaseURL = %q", cfg.Gemini.BaseURL)
	}
	if cfg.Gemini.Timeout != 45*time.Second {
		t.Errorf("Gemini.Timeout = %v, want 45s", cfg.Gemini.Timeout)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q, want info", cfg.Logger.Level)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "90")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("Database.MaxConns = %d, want 25", cfg.Database.MaxConns)
	}
	if cfg.JWT.Expiration != 2*time.Hour {
		t.Errorf("JWT.Expiration = %v, want 2h", cfg.JWT.Expiration)
	}
	if cfg.Gemini.APIKey != "key-123" {
		t.Errorf("Gemini.APIKey = %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
	if cfg.Gemini.Timeout != 90*time.Second {
		t.Errorf("Gemini.Timeout = %v, want 90s", cfg.Gemini.Timeout)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want debug", cfg.Logger.Level)
	}
}
