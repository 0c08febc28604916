package main

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/errors"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[log]
level = "debug"

[canon]
max-types = 5000

[output]
color = "never"
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Level() != zapcore.DebugLevel {
		t.Errorf("level = %s, want debug", cfg.Level())
	}
	if cfg.Canon.MaxTypes != 5000 {
		t.Errorf("max-types = %d, want 5000", cfg.Canon.MaxTypes)
	}
	if cfg.Output.Color != ColorNever {
		t.Errorf("color = %q, want never", cfg.Output.Color)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`[log]
level = "error"
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Canon.MaxTypes != canon.MaxCanonicalTypes || cfg.Output.Color != ColorAuto {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		kind errors.Kind
	}{
		{"syntax", `[log`, errors.KindInvalidData},
		{"unknown key", "[log]\nformat = \"json\"\n", errors.KindInvalidInput},
		{"bad level", "[log]\nlevel = \"loud\"\n", errors.KindInvalidInput},
		{"limit too small", "[canon]\nmax-types = 1\n", errors.KindOverflow},
		{"limit too large", "[canon]\nmax-types = 2000000\n", errors.KindOverflow},
		{"bad color", "[output]\ncolor = \"sometimes\"\n", errors.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.toml))
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConfig, Kind: tt.kind}) {
				t.Errorf("ParseConfig error = %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\"): %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("empty path = %+v, want defaults", cfg)
	}

	path := filepath.Join(t.TempDir(), "typecanon.toml")
	if err := os.WriteFile(path, []byte("[output]\ncolor = \"always\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Output.Color != ColorAlways {
		t.Errorf("color = %q, want always", cfg.Output.Color)
	}

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindNotFound}) {
		t.Errorf("missing file error = %v", err)
	}
}
