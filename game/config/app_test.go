package config

import (
	"testing"
	"time"
)

func TestLoadAppConfig_Defaults(t *testing.T) {
	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.ConfigDir != "configs" || cfg.DefaultRoster != "classic" {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("Expected 24h session TTL, got %v", cfg.SessionTTL)
	}
}

func TestLoadAppConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("DEBUG", "true")

	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("Expected 0.0.0.0:9090, got %s", cfg.Addr())
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Expected 30m, got %v", cfg.SessionTTL)
	}
	if cfg.EffectiveLogLevel() != "debug" {
		t.Errorf("Expected debug mode to force debug logging, got %s", cfg.EffectiveLogLevel())
	}
}

func TestLoadAppConfig_InvalidValue(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	if _, err := LoadAppConfig(); err == nil {
		t.Error("Expected invalid PORT to fail")
	}
}
