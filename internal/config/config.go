// Package config loads an inputshare peer's settings the way the teacher
// agent does (optional YAML file plus environment overrides via viper),
// adapted from the server-enrollment fields the teacher's agent.yaml
// carries to the handoff-tuning fields this tool needs: TLS identity
// material, the edge zone geometry, and the timing constants of §5/§7.
// CLI flags (bound by cmd/inputshare via cobra/pflag) take precedence over
// anything loaded here; Load only supplies defaults and file/env values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config is one peer's full runtime configuration: the port and TLS identity
// settings plus the tuning constants of §4.6/§4.7/§4.8/§5 that the CLI does
// not expose directly but an operator may still want to override via a
// config file. cmd/inputshare takes the TLS identity, passphrase and pin from
// its own flags and does not read IdentityP12Path, IdentityPass or PinSHA256.
type Config struct {
	DeviceID   string `mapstructure:"device_id"`
	DeviceName string `mapstructure:"device_name"`

	Port int `mapstructure:"port"`

	IdentityP12Path string `mapstructure:"identity_p12"`
	IdentityPass    string `mapstructure:"identity_pass"`
	PinSHA256       string `mapstructure:"pin_sha256"`

	// Edge detector tuning (§4.6).
	EnterThresholdPx int `mapstructure:"enter_threshold_px"`
	ExitThresholdPx  int `mapstructure:"exit_threshold_px"`
	DwellTimeMs      int `mapstructure:"dwell_time_ms"`

	// Forwarding state machine tuning (§4.7/§5).
	ActivationTimeoutMs int `mapstructure:"activation_timeout_ms"`

	// Coalescer tuning (§4.8).
	CoalesceIntervalMs int `mapstructure:"coalesce_interval_ms"`

	// Discovery (§6): advertise/browse "_inputshare._tcp" on the LAN.
	DiscoveryEnabled bool `mapstructure:"discovery_enabled"`

	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
}

// Default returns the configuration with every tuning constant at its
// spec-recommended value.
func Default() *Config {
	hostname, _ := os.Hostname()
	return &Config{
		DeviceName: hostname,
		Port:       4242,

		EnterThresholdPx: 2,
		ExitThresholdPx:  8,
		DwellTimeMs:      100,

		ActivationTimeoutMs: 2000,

		CoalesceIntervalMs: 4,

		DiscoveryEnabled: true,

		LogLevel:      "info",
		LogFormat:     "text",
		LogMaxSizeMB:  50,
		LogMaxBackups: 3,
	}
}

// Load reads an optional YAML config file (explicit path, or the platform
// config directory's inputshare.yaml) and layers INPUTSHARE_*-prefixed
// environment variables on top, the same precedence order the teacher's
// agent.yaml loader uses.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("inputshare")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	// viper's AutomaticEnv only overrides keys it already knows about, so
	// every field's default is registered explicitly rather than relying on
	// Unmarshal to merge in a struct it has never seen.
	v.SetDefault("device_id", cfg.DeviceID)
	v.SetDefault("device_name", cfg.DeviceName)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("identity_p12", cfg.IdentityP12Path)
	v.SetDefault("identity_pass", cfg.IdentityPass)
	v.SetDefault("pin_sha256", cfg.PinSHA256)
	v.SetDefault("enter_threshold_px", cfg.EnterThresholdPx)
	v.SetDefault("exit_threshold_px", cfg.ExitThresholdPx)
	v.SetDefault("dwell_time_ms", cfg.DwellTimeMs)
	v.SetDefault("activation_timeout_ms", cfg.ActivationTimeoutMs)
	v.SetDefault("coalesce_interval_ms", cfg.CoalesceIntervalMs)
	v.SetDefault("discovery_enabled", cfg.DiscoveryEnabled)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_max_size_mb", cfg.LogMaxSizeMB)
	v.SetDefault("log_max_backups", cfg.LogMaxBackups)

	v.AutomaticEnv()
	v.SetEnvPrefix("INPUTSHARE")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read %s: %w", cfgFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("config: %v", errs[0])
	}

	return cfg, nil
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "inputshare")
	case "darwin":
		return "/Library/Application Support/inputshare"
	default:
		return "/etc/inputshare"
	}
}
