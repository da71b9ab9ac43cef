package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Magnitude != 12 || cfg.Precision != 6 || cfg.Polar {
		t.Errorf("unexpected display defaults: %+v", cfg)
	}
	if cfg.Addr() != "0.0.0.0:8787" || cfg.GRPCAddr() != "0.0.0.0:8788" {
		t.Errorf("unexpected addresses %s %s", cfg.Addr(), cfg.GRPCAddr())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestApplyYAML(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyYAML([]byte("precision: 3\npolar: true\ngrpc_port: 9000\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Precision != 3 || !cfg.Polar || cfg.GRPCPort != 9000 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Magnitude != 12 || cfg.Port != 8787 {
		t.Errorf("absent keys should keep defaults: %+v", cfg)
	}

	if err := cfg.ApplyYAML(nil); err != nil {
		t.Errorf("empty file should be accepted: %v", err)
	}
	if err := cfg.ApplyYAML([]byte("colour: red\n")); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvPort:      "9090",
		EnvHost:      "127.0.0.1",
		EnvPrecision: "2",
		EnvPolar:     "true",
		EnvHistory:   "",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" || cfg.Precision != 2 || !cfg.Polar || cfg.History != 100 {
		t.Errorf("env values not applied: %+v", cfg)
	}

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{EnvPort: "http"}},
		{"bad polar", map[string]string{EnvPolar: "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.ApplyEnv(envMap(tt.env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterDisplayFlags(fs)
	RegisterServerFlags(fs)
	if err := fs.Parse([]string{"--port", "7000", "--polar", "--precision", "0"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := Default()
	cfg.Host = "from-env"
	if err := cfg.ApplyFlags(fs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 7000 || !cfg.Polar || cfg.Precision != 0 {
		t.Errorf("flag values not applied: %+v", cfg)
	}
	if cfg.Host != "from-env" || cfg.GRPCPort != 8788 {
		t.Errorf("unset flags must not override: %+v", cfg)
	}
}

func TestApplyFlagsWithoutServerFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterDisplayFlags(fs)
	if fs.Lookup("port") != nil {
		t.Fatal("server flags should not be registered")
	}
	if err := fs.Parse([]string{"--magnitude", "20"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := Default()
	if err := cfg.ApplyFlags(fs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Magnitude != 20 {
		t.Errorf("expected magnitude 20, got %d", cfg.Magnitude)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "complexshell.yaml")
	if err := os.WriteFile(path, []byte("port: 1111\nprecision: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPort, "2222")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 2222 {
		t.Errorf("env should override file, got port %d", cfg.Port)
	}
	if cfg.Precision != 4 {
		t.Errorf("file should override default, got precision %d", cfg.Precision)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"negative precision", func(c *Config) { c.Precision = -1 }, "precision"},
		{"huge magnitude", func(c *Config) { c.Magnitude = 1000 }, "magnitude"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "port"},
		{"bad grpc port", func(c *Config) { c.GRPCPort = -1 }, "grpc_port"},
		{"no history", func(c *Config) { c.History = 0 }, "history"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCalculator(t *testing.T) {
	cfg := Default()
	cfg.Precision = 2
	cfg.Polar = true
	calc := cfg.Calculator(nil)
	if calc.Precision != 2 || !calc.Polar || calc.Magnitude != 12 {
		t.Errorf("settings not carried over: %+v", calc)
	}
}
