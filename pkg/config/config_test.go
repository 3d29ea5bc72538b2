package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8000" {
		t.Errorf("Expected Port to be 8000, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.LLM.DefaultModel != "gpt-4o" {
		t.Errorf("Expected default model gpt-4o, got %s", cfg.LLM.DefaultModel)
	}

	if !cfg.AlphaVantage.Enabled {
		t.Error("Expected Alpha Vantage to be enabled by default")
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("LLM_DEFAULT_MODEL", "gpt-4o-mini")
	os.Setenv("POLYGON_ENABLED", "false")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("LLM_DEFAULT_MODEL")
		os.Unsetenv("POLYGON_ENABLED")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.LLM.DefaultModel != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s", cfg.LLM.DefaultModel)
	}

	if cfg.Polygon.Enabled {
		t.Error("Expected Polygon to be disabled")
	}
}

func TestLoadRejectsUnknownEnv(t *testing.T) {
	os.Setenv("ENV", "sandbox")
	defer os.Unsetenv("ENV")

	if _, err := Load(); err == nil {
		t.Error("Expected validation error for unknown ENV")
	}
}
