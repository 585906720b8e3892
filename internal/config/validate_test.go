package config

import "testing"

func TestValidateDefaultIsClean(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("default config should validate cleanly, got %v", errs)
	}
}

func TestValidatePortRange(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Fatal("expected error for port 0")
	}
	cfg.Port = 70000
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Fatal("expected error for port out of range")
	}
}

func TestValidateExitThresholdMustExceedEnter(t *testing.T) {
	cfg := Default()
	cfg.EnterThresholdPx = 10
	cfg.ExitThresholdPx = 10
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Fatal("expected error when exit threshold does not exceed enter threshold")
	}
	cfg.ExitThresholdPx = 5
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Fatal("expected error when exit threshold is below enter threshold")
	}
}

func TestValidateDwellAndTimeouts(t *testing.T) {
	cfg := Default()
	cfg.DwellTimeMs = 0
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Fatal("expected error for zero dwell time")
	}

	cfg = Default()
	cfg.ActivationTimeoutMs = -1
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Fatal("expected error for negative activation timeout")
	}

	cfg = Default()
	cfg.CoalesceIntervalMs = 0
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Fatal("expected error for zero coalesce interval")
	}
}

func TestValidateLogLevelAndFormat(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Fatal("expected error for unknown log level")
	}

	cfg = Default()
	cfg.LogFormat = "xml"
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Fatal("expected error for unknown log format")
	}
}
