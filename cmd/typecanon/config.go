package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/errors"
)

// Config is the optional typecanon.toml file.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Canon  CanonConfig  `toml:"canon"`
	Output OutputConfig `toml:"output"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// CanonConfig configures the canonicalizer.
type CanonConfig struct {
	MaxTypes uint32 `toml:"max-types"`
}

// OutputConfig configures table output.
type OutputConfig struct {
	// Color is "auto", "always" or "never".
	Color string `toml:"color"`
}

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

func defaultConfig() Config {
	return Config{
		Log:    LogConfig{Level: "warn"},
		Canon:  CanonConfig{MaxTypes: canon.MaxCanonicalTypes},
		Output: OutputConfig{Color: ColorAuto},
	}
}

// LoadConfig reads path over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML over the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := defaultConfig()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(undecoded[0].String()).
			Detail("unknown key").
			Build()
	}
	return cfg, cfg.Validate()
}

// Validate checks field values.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("log", "level").
			Value(c.Log.Level).
			Cause(err).
			Build()
	}
	if c.Canon.MaxTypes < 3 || c.Canon.MaxTypes > canon.MaxCanonicalTypes {
		return errors.Overflow(errors.PhaseConfig, []string{"canon", "max-types"},
			c.Canon.MaxTypes, fmt.Sprintf("3..%d", canon.MaxCanonicalTypes))
	}
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("output", "color").
			Value(c.Output.Color).
			Detail("want auto, always or never").
			Build()
	}
	return nil
}

// Level returns the parsed log level. Call Validate first.
func (c Config) Level() zapcore.Level {
	l, _ := zapcore.ParseLevel(c.Log.Level)
	return l
}
