package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/qubesim/internal/control"
	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/qube"
)

const (
	DefaultController = "flip"
	DefaultRender     = "tui"
	DefaultFPS        = 30
	DefaultDuration   = 10.0
	DefaultDataDir    = ".qubesim"
	DefaultLogLevel   = "info"
)

// Render surfaces selectable by name.
var RenderSurfaces = []string{"tui", "term", "window", "none"}

var (
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrUnknownRender = errors.New("config: unknown render surface")
)

type Config struct {
	Backend    string  `yaml:"backend"`
	BeginDown  bool    `yaml:"begin_down"`
	Controller string  `yaml:"controller"`
	Frequency  float64 `yaml:"frequency"`
	Seed       uint64  `yaml:"seed"`
	MaxVoltage float64 `yaml:"max_voltage"`
	ResetNoise float64 `yaml:"reset_noise"`

	Render     string `yaml:"render"`
	FPS        int    `yaml:"fps"`
	Realtime   bool   `yaml:"realtime"`
	ResetClock bool   `yaml:"reset_clock"`

	// Duration bounds headless runs, in seconds of simulated time.
	Duration float64 `yaml:"duration"`
	DataDir  string  `yaml:"data_dir"`
	LogLevel string  `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend:    qube.Primary.String(),
		Controller: DefaultController,
		Frequency:  qube.DefaultFrequency,
		MaxVoltage: qube.DefaultMaxVoltage,
		ResetNoise: qube.DefaultResetNoise,
		Render:     DefaultRender,
		FPS:        DefaultFPS,
		Realtime:   true,
		Duration:   DefaultDuration,
		DataDir:    DefaultDataDir,
		LogLevel:   DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func LoadInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Steps is the number of loop iterations Duration covers.
func (c *Config) Steps() int {
	return int(c.Duration * c.Frequency)
}

func (c *Config) Validate() error {
	if err := dynamo.ValidateFrequency(c.Frequency); err != nil {
		return err
	}
	if _, err := qube.ParseBackend(c.Backend); err != nil {
		return err
	}
	if _, err := control.ParseKind(c.Controller); err != nil {
		return err
	}
	if !validRender(c.Render) {
		return fmt.Errorf("%w: %s (valid: %s)", ErrUnknownRender, c.Render, strings.Join(RenderSurfaces, ", "))
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.MaxVoltage <= 0 {
		return fmt.Errorf("max_voltage must be positive, got %v", c.MaxVoltage)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %v", c.Duration)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.LogLevel != "" && !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace)", c.LogLevel)
	}
	return nil
}

func validRender(name string) bool {
	for _, r := range RenderSurfaces {
		if r == name {
			return true
		}
	}
	return false
}

// Getenv looks up environment variables; tests swap it out.
var Getenv = os.Getenv

// ApplyEnv overrides fields from QUBESIM_* environment variables. Values
// that fail to parse are ignored.
func (c *Config) ApplyEnv() {
	if v := Getenv("QUBESIM_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := Getenv("QUBESIM_BEGIN_DOWN"); v != "" {
		c.BeginDown = v == "true" || v == "1"
	}
	if v := Getenv("QUBESIM_CONTROLLER"); v != "" {
		c.Controller = v
	}
	if v := Getenv("QUBESIM_FREQUENCY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Frequency = f
		}
	}
	if v := Getenv("QUBESIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Seed = n
		}
	}
	if v := Getenv("QUBESIM_RENDER"); v != "" {
		c.Render = v
	}
	if v := Getenv("QUBESIM_FPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FPS = n
		}
	}
	if v := Getenv("QUBESIM_REALTIME"); v != "" {
		c.Realtime = v == "true" || v == "1"
	}
	if v := Getenv("QUBESIM_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := Getenv("QUBESIM_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
