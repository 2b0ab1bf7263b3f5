package config

import "sort"

// Presets are named starting points for the CLI. Fields not set here take
// their DefaultConfig values through GetPreset.
var Presets = map[string]func(c *Config){
	"symmetric": func(c *Config) {
		c.Mode = ModeConfig{Kind: "symmetric", Amplitude: 1}
	},
	"antisymmetric": func(c *Config) {
		c.Mode = ModeConfig{Kind: "antisymmetric", Amplitude: 1}
	},
	"beats": func(c *Config) {
		// Weak coupling: energy moves slowly back and forth between the masses.
		c.Params.K2 = 0.5
		c.Duration = 60
		c.Init = InitConfig{X1: c.Params.X1Ref + 1, X2: c.Params.X2Ref}
	},
	"decoupled": func(c *Config) {
		c.Params.K2 = 0
		c.Params.Mass2 = 2
		c.Mode = ModeConfig{Kind: "symmetric", Amplitude: 1}
	},
	"heavy": func(c *Config) {
		c.Params.Mass2 = 5
		c.Walls.SizeByMass = true
		c.Duration = 30
		c.Init = InitConfig{X1: c.Params.X1Ref + 0.5, X2: c.Params.X2Ref - 0.5}
	},
	"euler-drift": func(c *Config) {
		c.Integrator = "euler"
		c.Duration = 30
		c.Mode = ModeConfig{Kind: "antisymmetric", Amplitude: 1}
	},
}

// GetPreset returns a fresh copy of the named preset, or nil if there is none.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
