package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the config for combinations that would misbehave or
// panic downstream (§7's ConfigError: "malformed arguments ... fatal at
// startup"). It does not check file existence for IdentityP12Path — that
// is surfaced as the more specific error from mtls.LoadIdentity.
func (c *Config) Validate() []error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1-65535", c.Port))
	}

	if c.EnterThresholdPx < 0 {
		errs = append(errs, fmt.Errorf("enter_threshold_px must be >= 0, got %d", c.EnterThresholdPx))
	}
	if c.ExitThresholdPx <= c.EnterThresholdPx {
		errs = append(errs, fmt.Errorf("exit_threshold_px (%d) must be strictly greater than enter_threshold_px (%d)", c.ExitThresholdPx, c.EnterThresholdPx))
	}
	if c.DwellTimeMs <= 0 {
		errs = append(errs, fmt.Errorf("dwell_time_ms must be > 0, got %d", c.DwellTimeMs))
	}

	if c.ActivationTimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("activation_timeout_ms must be > 0, got %d", c.ActivationTimeoutMs))
	}

	if c.CoalesceIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("coalesce_interval_ms must be > 0, got %d", c.CoalesceIntervalMs))
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}
	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	return errs
}
