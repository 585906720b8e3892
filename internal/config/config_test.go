package config

import (
	"os"
	"testing"
)

func TestLoadWithNoFileUsesDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("INPUTSHARE_PORT", "5555")
	t.Setenv("INPUTSHARE_DWELL_TIME_MS", "250")

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != 5555 {
		t.Fatalf("Port = %d, want 5555 from env override", cfg.Port)
	}
	if cfg.DwellTimeMs != 250 {
		t.Fatalf("DwellTimeMs = %d, want 250 from env override", cfg.DwellTimeMs)
	}
	// Untouched defaults should still be present.
	if cfg.EnterThresholdPx != 2 {
		t.Fatalf("EnterThresholdPx = %d, want default 2", cfg.EnterThresholdPx)
	}
	if !cfg.DiscoveryEnabled {
		t.Fatal("DiscoveryEnabled should default to true")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("INPUTSHARE_PORT", "0")

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(""); err == nil {
		t.Fatal("expected Load to reject an out-of-range port")
	}
}
