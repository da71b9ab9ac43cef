// Package config loads server and display settings from a YAML file,
// environment variables and command-line flags. Later sources win: flags
// override the environment, which overrides the file, which overrides the
// defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/complex-shell/pkg/expr"
	"github.com/lemonberrylabs/complex-shell/pkg/format"
	"github.com/lemonberrylabs/complex-shell/pkg/store"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfig    = "COMPLEXSHELL_CONFIG"
	EnvHost      = "HOST"
	EnvPort      = "PORT"
	EnvGRPCPort  = "GRPC_PORT"
	EnvMagnitude = "COMPLEXSHELL_MAGNITUDE"
	EnvPrecision = "COMPLEXSHELL_PRECISION"
	EnvPolar     = "COMPLEXSHELL_POLAR"
	EnvHistory   = "COMPLEXSHELL_HISTORY"
)

// Config holds every setting of the shell and the servers.
type Config struct {
	Magnitude int    `yaml:"magnitude"`
	Precision int    `yaml:"precision"`
	Polar     bool   `yaml:"polar"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	GRPCPort  int    `yaml:"grpc_port"`
	History   int    `yaml:"history"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Magnitude: format.DefaultMagnitude,
		Precision: format.DefaultPrecision,
		Host:      "0.0.0.0",
		Port:      8787,
		GRPCPort:  8788,
		History:   store.DefaultCapacity,
	}
}

// Load returns the defaults overlaid with the file at path (skipped when
// path is empty) and then the process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.ApplyYAML(data); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyYAML overlays the keys present in data. Unknown keys are rejected.
func (c *Config) ApplyYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return nil
}

// ApplyEnv overlays the environment variables that are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHost); ok && v != "" {
		c.Host = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvPort, &c.Port},
		{EnvGRPCPort, &c.GRPCPort},
		{EnvMagnitude, &c.Magnitude},
		{EnvPrecision, &c.Precision},
		{EnvHistory, &c.History},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", e.key, v)
		}
		*e.dst = n
	}

	if v, ok := lookup(EnvPolar); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", EnvPolar, v)
		}
		c.Polar = b
	}
	return nil
}

// RegisterDisplayFlags defines the display flags understood by ApplyFlags.
func RegisterDisplayFlags(fs *pflag.FlagSet) {
	fs.Int("magnitude", 0, fmt.Sprintf("Largest digit magnitude shown in fixed notation (default %d, env %s)", format.DefaultMagnitude, EnvMagnitude))
	fs.Int("precision", 0, fmt.Sprintf("Maximum fractional digits (default %d, env %s)", format.DefaultPrecision, EnvPrecision))
	fs.Bool("polar", false, "Print results as @{modulus, angle} (env "+EnvPolar+")")
}

// RegisterServerFlags defines the server flags understood by ApplyFlags.
func RegisterServerFlags(fs *pflag.FlagSet) {
	fs.String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	fs.Int("port", 0, "HTTP server port (default 8787, env PORT)")
	fs.Int("grpc-port", 0, "gRPC server port (default 8788, env GRPC_PORT)")
	fs.Int("history", 0, fmt.Sprintf("Evaluations kept in history (default %d, env %s)", store.DefaultCapacity, EnvHistory))
}

// ApplyFlags overlays the flags that were set explicitly. Flags missing
// from fs are ignored.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	setInt := func(name string, dst *int) {
		if err == nil && fs.Lookup(name) != nil && fs.Changed(name) {
			*dst, err = fs.GetInt(name)
		}
	}
	setInt("magnitude", &c.Magnitude)
	setInt("precision", &c.Precision)
	setInt("port", &c.Port)
	setInt("grpc-port", &c.GRPCPort)
	setInt("history", &c.History)
	if err != nil {
		return err
	}

	if fs.Lookup("polar") != nil && fs.Changed("polar") {
		if c.Polar, err = fs.GetBool("polar"); err != nil {
			return err
		}
	}
	if fs.Lookup("host") != nil && fs.Changed("host") {
		if c.Host, err = fs.GetString("host"); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that every setting is in range.
func (c *Config) Validate() error {
	if err := expr.CheckBudget("magnitude", c.Magnitude); err != nil {
		return err
	}
	if err := expr.CheckBudget("precision", c.Precision); err != nil {
		return err
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("grpc_port %d out of range", c.GRPCPort)
	}
	if c.History <= 0 {
		return fmt.Errorf("history must be positive, got %d", c.History)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GRPCAddr returns the gRPC listen address.
func (c *Config) GRPCAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.GRPCPort))
}

// Calculator builds a calculator with these display settings.
func (c *Config) Calculator(funcs expr.FunctionRegistry) *expr.Calculator {
	calc := expr.NewCalculator(funcs)
	calc.Magnitude = c.Magnitude
	calc.Precision = c.Precision
	calc.Polar = c.Polar
	return calc
}
