package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/coupled/internal/dynamo"
	"github.com/san-kum/coupled/internal/integrators"
	"github.com/san-kum/coupled/internal/metrics"
	"github.com/san-kum/coupled/internal/physics"
	"github.com/san-kum/coupled/internal/sim"
)

const (
	DefaultDuration  = 10.0
	DefaultAmplitude = 1.0
)

type Config struct {
	Integrator      string  `yaml:"integrator"`
	SubSteps        int     `yaml:"substeps"`
	FrameDt         float64 `yaml:"frame_dt"`
	Duration        float64 `yaml:"duration"`
	SampleEvery     int     `yaml:"sample_every,omitempty"`
	EnergyTolerance float64 `yaml:"energy_tolerance"`
	PauseOnChange   bool    `yaml:"pause_on_change"`
	ReplayMode      bool    `yaml:"replay_mode"`

	Params ParamsConfig     `yaml:"params"`
	Walls  physics.Geometry `yaml:"walls"`
	Init   InitConfig       `yaml:"init"`
	Mode   ModeConfig       `yaml:"mode"`
}

type ParamsConfig struct {
	Mass1 float64 `yaml:"mass1"`
	Mass2 float64 `yaml:"mass2"`
	K1    float64 `yaml:"k1"`
	K2    float64 `yaml:"k2"`
	K3    float64 `yaml:"k3"`
	X1Ref float64 `yaml:"x1_ref"`
	X2Ref float64 `yaml:"x2_ref"`
}

// InitConfig is the starting state in absolute coordinates.
type InitConfig struct {
	X1 float64 `yaml:"x1"`
	X2 float64 `yaml:"x2"`
	V1 float64 `yaml:"v1,omitempty"`
	V2 float64 `yaml:"v2,omitempty"`
}

// ModeConfig optionally starts the run in a normal mode, overriding Init.
type ModeConfig struct {
	Kind      string  `yaml:"kind"`
	Amplitude float64 `yaml:"amplitude"`
}

func DefaultConfig() *Config {
	p := physics.DefaultParams()
	return &Config{
		Integrator:      integrators.Default,
		SubSteps:        integrators.DefaultSubSteps,
		FrameDt:         sim.DefaultFrameDt,
		Duration:        DefaultDuration,
		EnergyTolerance: metrics.DefaultTolerance,
		ReplayMode:      true,
		Params: ParamsConfig{
			Mass1: p.Mass1,
			Mass2: p.Mass2,
			K1:    p.K1,
			K2:    p.K2,
			K3:    p.K3,
			X1Ref: p.X1Ref,
			X2Ref: p.X2Ref,
		},
		Walls: p.Geometry,
		Init:  InitConfig{X1: p.X1Ref + 1, X2: p.X2Ref - 1},
		Mode:  ModeConfig{Amplitude: DefaultAmplitude},
	}
}

// Load reads a YAML file over DefaultConfig, so omitted keys keep their
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", dynamo.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field. Errors wrap dynamo.ErrInvalidConfig; invalid
// physical parameters additionally wrap dynamo.ErrInvalidParameter.
func (c *Config) Validate() error {
	if _, err := integrators.New(c.Integrator); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidConfig, err)
	}
	if c.SubSteps < 1 {
		return fmt.Errorf("%w: substeps must be at least 1, got %d", dynamo.ErrInvalidConfig, c.SubSteps)
	}
	if err := c.RunConfig().Validate(); err != nil {
		return err
	}
	if !(c.EnergyTolerance > 0) || math.IsInf(c.EnergyTolerance, 0) {
		return fmt.Errorf("%w: energy_tolerance must be positive, got %g", dynamo.ErrInvalidConfig, c.EnergyTolerance)
	}
	if err := c.PhysicsParams().Validate(); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidConfig, err)
	}
	if !c.initialState().IsValid() {
		return fmt.Errorf("%w: init must be finite, got %+v", dynamo.ErrInvalidConfig, c.Init)
	}
	mode, err := dynamo.ParseMode(c.Mode.Kind)
	if err != nil {
		return err
	}
	if mode != dynamo.ModeNone {
		if _, err := physics.ModeState(mode, c.Mode.Amplitude); err != nil {
			return fmt.Errorf("%w: %w", dynamo.ErrInvalidConfig, err)
		}
	}
	return nil
}

func (c *Config) PhysicsParams() physics.Params {
	return physics.Params{
		Mass1:    c.Params.Mass1,
		Mass2:    c.Params.Mass2,
		K1:       c.Params.K1,
		K2:       c.Params.K2,
		K3:       c.Params.K3,
		X1Ref:    c.Params.X1Ref,
		X2Ref:    c.Params.X2Ref,
		Geometry: c.Walls,
	}
}

func (c *Config) RunConfig() sim.RunConfig {
	return sim.RunConfig{
		Duration:    c.Duration,
		FrameDt:     c.FrameDt,
		SampleEvery: c.SampleEvery,
	}
}

// initialState converts Init to displacements from the reference positions.
func (c *Config) initialState() dynamo.State {
	return dynamo.State{
		X1: c.Init.X1 - c.Params.X1Ref,
		X2: c.Init.X2 - c.Params.X2Ref,
		V1: c.Init.V1,
		V2: c.Init.V2,
	}
}

// Controller builds a paused controller for the configuration, already placed
// in the configured normal mode if one is set.
func (c *Config) Controller(logger *slog.Logger) (*sim.Controller, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	stepper, err := integrators.New(c.Integrator)
	if err != nil {
		return nil, err
	}

	ctrl, err := sim.New(c.PhysicsParams(), c.initialState(), sim.Options{
		Stepper:         stepper,
		SubSteps:        c.SubSteps,
		PauseOnChange:   c.PauseOnChange,
		ReplayMode:      c.ReplayMode,
		EnergyTolerance: c.EnergyTolerance,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	mode, _ := dynamo.ParseMode(c.Mode.Kind)
	if mode != dynamo.ModeNone {
		if err := ctrl.EnterNormalMode(mode, c.Mode.Amplitude); err != nil {
			return nil, err
		}
	}
	return ctrl, nil
}
