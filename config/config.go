// Package config reads simulation setups from YAML files.
//
// A file looks like:
//
//	simulation:
//	  freq_hz: 1000
//	  duration: 10
//	  monitor: false
//	  output: health_run
//	attributes:
//	  - name: Health
//	    value: 100
//	    update_type: set
//	    update_speed: 1
//	    update_value: 100
//	    limit: 100
//
// Environment variables, optionally loaded from a .env file, override the
// output and monitoring settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/attrsim/attribute"
	"github.com/sarchlab/attrsim/sim/timing"
)

// ErrInvalidConfig is wrapped by every validation error of this package.
var ErrInvalidConfig = errors.New("config: invalid")

// Recorder backends.
const (
	RecorderSQLite     = "sqlite"
	RecorderClickHouse = "clickhouse"
	RecorderNone       = "none"
)

// Environment variables read by ApplyEnv.
const (
	EnvMonitorPort        = "ATTRSIM_MONITOR_PORT"
	EnvOutput             = "ATTRSIM_OUTPUT"
	EnvRecorder           = "ATTRSIM_RECORDER"
	EnvClickHouseAddr     = "ATTRSIM_CLICKHOUSE_ADDR"
	EnvClickHouseUser     = "ATTRSIM_CLICKHOUSE_USER"
	EnvClickHousePassword = "ATTRSIM_CLICKHOUSE_PASSWORD"
)

// Default values applied to missing settings.
const (
	DefaultFreqHz   = 1000
	DefaultDuration = 10
)

// Config is the content of a setup file.
type Config struct {
	Simulation SimulationConfig  `yaml:"simulation"`
	Attributes []AttributeConfig `yaml:"attributes"`
}

// SimulationConfig holds the settings shared by all attributes.
type SimulationConfig struct {
	FreqHz      float64          `yaml:"freq_hz"`
	Duration    float64          `yaml:"duration"`
	Monitor     bool             `yaml:"monitor"`
	MonitorPort int              `yaml:"monitor_port"`
	Output      string           `yaml:"output"`
	Recorder    string           `yaml:"recorder"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
}

// ClickHouseConfig tells where to record when the recorder is clickhouse.
type ClickHouseConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// AttributeConfig describes one attribute.
type AttributeConfig struct {
	Name        string               `yaml:"name"`
	Value       any                  `yaml:"value"`
	UpdateType  attribute.UpdateType `yaml:"update_type"`
	UpdateSpeed float64              `yaml:"update_speed"`
	UpdateValue any                  `yaml:"update_value"`

	// Limit, if set, only lets the attribute recharge while its value is
	// below the limit.
	Limit *float64 `yaml:"limit"`
}

// Load reads and validates a setup file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes and validates a setup. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	cfg := &Config{}

	err := dec.Decode(cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg.applyDefaults()

	for i := range cfg.Attributes {
		a := &cfg.Attributes[i]
		a.Value = normalize(a.Value)
		a.UpdateValue = normalize(a.UpdateValue)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseBytes is Parse on an in-memory document.
func ParseBytes(data []byte) (*Config, error) {
	return Parse(bytes.NewReader(data))
}

func (c *Config) applyDefaults() {
	if c.Simulation.FreqHz == 0 {
		c.Simulation.FreqHz = DefaultFreqHz
	}

	if c.Simulation.Duration == 0 {
		c.Simulation.Duration = DefaultDuration
	}

	if c.Simulation.Recorder == "" {
		c.Simulation.Recorder = RecorderSQLite
	}
}

// Validate checks the settings that the attribute builder cannot check.
// Attribute values themselves are validated when the attributes are built.
func (c *Config) Validate() error {
	s := c.Simulation

	if s.FreqHz <= 0 {
		return fmt.Errorf("%w: freq_hz must be positive, got %v",
			ErrInvalidConfig, s.FreqHz)
	}

	if s.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v",
			ErrInvalidConfig, s.Duration)
	}

	switch s.Recorder {
	case RecorderSQLite, RecorderNone:
	case RecorderClickHouse:
		if s.ClickHouse.Addr == "" {
			return fmt.Errorf("%w: clickhouse recorder needs an addr",
				ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown recorder %q", ErrInvalidConfig, s.Recorder)
	}

	seen := make(map[string]bool)
	for i, a := range c.Attributes {
		if seen[a.Name] {
			return fmt.Errorf("%w: attribute %d: duplicated name %q",
				ErrInvalidConfig, i, a.Name)
		}

		seen[a.Name] = true
	}

	return nil
}

// ApplyEnv loads the given .env files, skipping the ones that do not exist,
// and lets the environment override the file settings.
func (c *Config) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}

		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	if v, ok := os.LookupEnv(EnvMonitorPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a port number",
				ErrInvalidConfig, EnvMonitorPort, v)
		}

		c.Simulation.MonitorPort = port
	}

	if v, ok := os.LookupEnv(EnvOutput); ok {
		c.Simulation.Output = v
	}

	if v, ok := os.LookupEnv(EnvRecorder); ok {
		c.Simulation.Recorder = v
	}

	if v, ok := os.LookupEnv(EnvClickHouseAddr); ok {
		c.Simulation.ClickHouse.Addr = v
	}

	if v, ok := os.LookupEnv(EnvClickHouseUser); ok {
		c.Simulation.ClickHouse.Username = v
	}

	if v, ok := os.LookupEnv(EnvClickHousePassword); ok {
		c.Simulation.ClickHouse.Password = v
	}

	return c.Validate()
}

// Freq returns the tick frequency of the recharge schedulers.
func (s SimulationConfig) Freq() timing.Freq {
	return timing.Freq(s.FreqHz) * timing.Hz
}

// Builder turns the description into an attribute builder bound to engine.
func (a AttributeConfig) Builder(
	engine timing.EventScheduler,
	freq timing.Freq,
) attribute.Builder {
	b := attribute.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithValue(a.Value).
		WithUpdateType(a.UpdateType).
		WithUpdateSpeed(timing.VTimeInSec(a.UpdateSpeed)).
		WithUpdateValue(a.UpdateValue)

	if a.Limit != nil {
		b = b.WithUpdateGuard(attribute.BelowLimit(*a.Limit))
	}

	return b
}

// Build creates the attribute.
func (a AttributeConfig) Build(
	engine timing.EventScheduler,
	freq timing.Freq,
) (*attribute.Attribute, error) {
	return a.Builder(engine, freq).Build(a.Name)
}
