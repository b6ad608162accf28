// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"firestige.xyz/pktcraft/internal/core"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

// Config represents the top-level configuration.
// Maps to the `pktcraft:` root key in YAML.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Output   OutputConfig   `mapstructure:"output"`
	Ident    IdentConfig    `mapstructure:"ident"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`  // debug / info / warn / error
	Format  string           `mapstructure:"format"` // json / text
	Outputs LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains structured log output destinations.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// ─── Output ───

// OutputConfig controls how finished datagrams are written.
type OutputConfig struct {
	SnapLen uint32 `mapstructure:"snap_len"`
}

// ─── Identification ───

// IdentConfig seeds the IPv4 identification counter. Start is the first
// identification stamped; nil means DefaultIdentStart. 0 is a valid start.
type IdentConfig struct {
	Start *uint16 `mapstructure:"start"`
}

// DefaultIdentStart is the first identification when ident.start is unset.
const DefaultIdentStart uint16 = 1

// First returns the configured start, or DefaultIdentStart when unset.
func (c IdentConfig) First() uint16 {
	if c.Start == nil {
		return DefaultIdentStart
	}
	return *c.Start
}

// ─── Plan defaults ───

// DefaultsConfig holds values applied to plan entries that omit them.
type DefaultsConfig struct {
	Source tcpip.IPv4EndPoint `mapstructure:"source"`
}

// ─── Loading ───

// MinSnapLen is the smallest snap length that still captures a full IPv4 header.
const MinSnapLen = tcpip.IPHeaderLen

// configRoot is the top-level wrapper matching the YAML structure `pktcraft: ...`.
type configRoot struct {
	Pktcraft Config `mapstructure:"pktcraft"`
}

// Load loads configuration from file. An empty path loads defaults and
// environment overrides only. Env vars use the PKTCRAFT_ prefix
// (e.g., PKTCRAFT_LOG_LEVEL).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// key "pktcraft.log.level" → env "PKTCRAFT_LOG_LEVEL"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&root, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Pktcraft

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use the "pktcraft." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("pktcraft.log.level", "info")
	v.SetDefault("pktcraft.log.format", "text")
	v.SetDefault("pktcraft.log.outputs.file.enabled", false)
	v.SetDefault("pktcraft.log.outputs.file.path", "pktcraft.log")
	v.SetDefault("pktcraft.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("pktcraft.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("pktcraft.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("pktcraft.log.outputs.file.rotation.compress", true)

	// Output defaults
	v.SetDefault("pktcraft.output.snap_len", 65535)

	// Identification defaults
	v.SetDefault("pktcraft.ident.start", DefaultIdentStart)

	// Plan defaults
	v.SetDefault("pktcraft.defaults.source", "0.0.0.0:0")
}

// Default returns the configuration Load produces with no file and no
// environment overrides.
func Default() *Config {
	cfg := &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Outputs: LogOutputsConfig{File: FileOutputConfig{
				Path: "pktcraft.log",
				Rotation: RotationConfig{
					MaxSizeMB:  100,
					MaxAgeDays: 30,
					MaxBackups: 5,
					Compress:   true,
				},
			}},
		},
		Output: OutputConfig{SnapLen: 65535},
		Ident:  IdentConfig{Start: uint16Ptr(DefaultIdentStart)},
	}
	return cfg
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *Config) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug/info/warn/error): %w", cfg.Log.Level, core.ErrConfigInvalid)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json/text): %w", cfg.Log.Format, core.ErrConfigInvalid)
	}
	if cfg.Log.Outputs.File.Enabled && cfg.Log.Outputs.File.Path == "" {
		return fmt.Errorf("log.outputs.file.path is required when file output is enabled: %w", core.ErrConfigInvalid)
	}

	// ── Output ──
	if cfg.Output.SnapLen == 0 {
		cfg.Output.SnapLen = 65535
	}
	if cfg.Output.SnapLen < MinSnapLen {
		return fmt.Errorf("invalid output.snap_len: %d (must be at least %d): %w", cfg.Output.SnapLen, MinSnapLen, core.ErrConfigInvalid)
	}

	// ── Identification ──
	if cfg.Ident.Start == nil {
		cfg.Ident.Start = uint16Ptr(DefaultIdentStart)
	}

	return nil
}

func uint16Ptr(v uint16) *uint16 { return &v }
