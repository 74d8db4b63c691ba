package config

import (
	"fmt"
	"sort"
)

// Preset is a named starting point layered over the defaults.
type Preset struct {
	Description string
	apply       func(*Config)
}

var Presets = map[string]Preset{
	"swingup": {
		Description: "start hanging and swing up with the energy controller",
		apply: func(c *Config) {
			c.BeginDown = true
			c.Controller = "flip"
		},
	},
	"balance": {
		Description: "start upright and hold it there",
		apply: func(c *Config) {
			c.Controller = "hold"
		},
	},
	"freefall": {
		Description: "start upright with no control and watch it fall",
		apply: func(c *Config) {
			c.Controller = "none"
			c.ResetNoise = 0.2
		},
	},
	"noise": {
		Description: "random voltages on the alternate backend",
		apply: func(c *Config) {
			c.Backend = "alternate"
			c.BeginDown = true
			c.Controller = "rand"
		},
	},
	"slowmo": {
		Description: "swing-up with the loop stepped at 100 Hz",
		apply: func(c *Config) {
			c.BeginDown = true
			c.Controller = "flip"
			c.Frequency = 100
		},
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

// ApplyPreset layers the named preset onto cfg.
func ApplyPreset(cfg *Config, name string) error {
	p, ok := Presets[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	p.apply(cfg)
	return nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
