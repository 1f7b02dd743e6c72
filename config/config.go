// Package config holds the run configuration of the APEX simulator.
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"
)

// Engine names accepted by Config.Engine.
const (
	// EngineDirect ticks the core in a plain loop.
	EngineDirect = "direct"
	// EngineAkita drives the core as a ticking component of an akita
	// serial engine.
	EngineAkita = "akita"
)

// Config controls how a program is simulated and what is reported.
type Config struct {
	// LogLevel is a logrus level name. Default: "warning".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Trace prints the contents of every stage after every cycle.
	Trace bool `yaml:"trace" json:"trace"`

	// Engine selects the cycle driver: "direct" or "akita". Default: "direct".
	Engine string `yaml:"engine" json:"engine"`

	// FrequencyMHz is the core clock used by the akita engine. Default: 1000.
	FrequencyMHz uint64 `yaml:"frequency_mhz" json:"frequency_mhz"`

	// Functional runs the program on the functional emulator instead of
	// the pipeline.
	Functional bool `yaml:"functional" json:"functional"`

	// DumpRegisters prints the register file when the run ends. Default: true.
	DumpRegisters bool `yaml:"dump_registers" json:"dump_registers"`

	// DumpMemory is the number of data memory cells, starting at address 0,
	// printed when the run ends. Zero prints only non-zero cells.
	DumpMemory int `yaml:"dump_memory" json:"dump_memory"`

	// MaxCycles stops the pipeline after this many cycles. Zero means no
	// limit.
	MaxCycles uint64 `yaml:"max_cycles" json:"max_cycles"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      logrus.WarnLevel.String(),
		Engine:        EngineDirect,
		FrequencyMHz:  1000,
		DumpRegisters: true,
	}
}

// LoadConfig loads a Config from a YAML file. JSON files are accepted too.
// Fields missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig writes a Config to a YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Engine != EngineDirect && c.Engine != EngineAkita {
		return fmt.Errorf("engine must be %q or %q, got %q", EngineDirect, EngineAkita, c.Engine)
	}
	if c.Engine == EngineAkita && c.FrequencyMHz == 0 {
		return fmt.Errorf("frequency_mhz must be > 0")
	}
	if c.DumpMemory < 0 {
		return fmt.Errorf("dump_memory must be >= 0")
	}
	if c.Functional && c.Trace {
		return fmt.Errorf("trace is not available in functional mode")
	}
	return nil
}

// Level returns the parsed log level. Invalid names fall back to warning.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}

// NewLogger creates a logger writing to stderr at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(c.Level())
	return logger
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
