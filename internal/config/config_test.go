package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.PongTimeout != 60*time.Second {
		t.Errorf("Expected default pong timeout 60s, got %v", cfg.Server.PongTimeout)
	}
	if cfg.Engine.IterationCeiling != 1000 {
		t.Errorf("Expected default iteration ceiling 1000, got %d", cfg.Engine.IterationCeiling)
	}
	if cfg.Engine.ClassicStartingLife != 20 || cfg.Engine.BlitzStartingLife != 30 {
		t.Errorf("Expected default lives 20/30, got %d/%d",
			cfg.Engine.ClassicStartingLife, cfg.Engine.BlitzStartingLife)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Expected default logging info/json, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 9090\nengine:\n  blitz_crystal_cap: 12\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Engine.BlitzCrystalCap != 12 {
		t.Errorf("Expected crystal cap 12, got %d", cfg.Engine.BlitzCrystalCap)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level debug, got %s", cfg.Logging.Level)
	}
	// Unset keys keep their defaults.
	if cfg.Engine.StartingHandSize != 7 {
		t.Errorf("Expected default hand size 7, got %d", cfg.Engine.StartingHandSize)
	}
}

func TestLoadRejectsBadCeiling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("engine:\n  iteration_ceiling: 0\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a non-positive iteration ceiling")
	}
}
