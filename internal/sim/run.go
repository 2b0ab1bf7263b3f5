package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/coupled/internal/dynamo"
)

// DefaultFrameDt is the host tick the engine is tuned for.
const DefaultFrameDt = 1.0 / 60

// MaxPreallocSamples bounds the capacity reserved up front for recorded
// samples. Longer runs grow the slices as they go.
const MaxPreallocSamples = 1 << 16

type RunConfig struct {
	Duration float64
	FrameDt  float64
	// SampleEvery records one sample per this many frames. Zero means every frame.
	SampleEvery int
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		Duration:    10.0,
		FrameDt:     DefaultFrameDt,
		SampleEvery: 1,
	}
}

func (cfg RunConfig) Validate() error {
	if !(cfg.FrameDt > 0) || math.IsInf(cfg.FrameDt, 0) {
		return fmt.Errorf("%w: frame dt must be positive, got %f", dynamo.ErrInvalidConfig, cfg.FrameDt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrInvalidConfig, cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample interval must be non-negative, got %d", dynamo.ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}

// Frames is the number of host ticks that cover Duration.
func (cfg RunConfig) Frames() int {
	return int(math.Round(cfg.Duration / cfg.FrameDt))
}

type Result struct {
	Times        []float64
	States       []dynamo.State
	EnergyRatios []float64
	Metrics      map[string]float64

	Integrator    string
	SubSteps      int
	FrameDt       float64
	FramesTaken   int
	MaxDrift      float64
	DriftExceeded bool
	Errors        []error
}

// Final returns the last recorded state.
func (r *Result) Final() dynamo.State {
	if len(r.States) == 0 {
		return dynamo.State{}
	}
	return r.States[len(r.States)-1]
}

// Series extracts one component of the recorded states.
func (r *Result) Series(component func(dynamo.State) float64) []float64 {
	out := make([]float64, len(r.States))
	for i, s := range r.States {
		out[i] = component(s)
	}
	return out
}

// Run resumes c and drives it the way a host loop would, one Step per frame,
// recording the trajectory. The controller continues from its current state
// and is left running. Cancelling ctx stops the run between frames; the
// partial result is returned with the error.
func Run(ctx context.Context, c *Controller, cfg RunConfig, ms ...dynamo.Metric) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	every := cfg.SampleEvery
	if every == 0 {
		every = 1
	}

	frames := cfg.Frames()
	samples := min(frames/every+1, MaxPreallocSamples)
	result := &Result{
		Times:        make([]float64, 0, samples),
		States:       make([]dynamo.State, 0, samples),
		EnergyRatios: make([]float64, 0, samples),
		Metrics:      make(map[string]float64),
		Integrator:   c.StepperName(),
		SubSteps:     c.SubSteps(),
		FrameDt:      cfg.FrameDt,
		Errors:       make([]error, 0),
	}

	for _, m := range ms {
		m.Reset()
	}

	record := func() {
		result.Times = append(result.Times, c.Elapsed())
		result.States = append(result.States, c.State())
		result.EnergyRatios = append(result.EnergyRatios, c.EnergyRatio())
	}

	record()
	c.Resume()
	diverged := false

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			result.finish(c, ms)
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		c.Step(cfg.FrameDt)
		result.FramesTaken++

		x := c.State()
		for _, m := range ms {
			m.Observe(x, c.Elapsed())
		}

		if !diverged && !x.IsValid() {
			diverged = true
			result.Errors = append(result.Errors, &dynamo.SimulationError{
				Frame:   i,
				Time:    c.Elapsed(),
				State:   x,
				Wrapped: fmt.Errorf("state diverged"),
			})
		}

		if (i+1)%every == 0 {
			record()
		}
	}

	result.finish(c, ms)
	return result, nil
}

func (r *Result) finish(c *Controller, ms []dynamo.Metric) {
	r.MaxDrift = c.MaxEnergyDrift()
	r.DriftExceeded = c.DriftExceeded()
	for _, m := range ms {
		r.Metrics[m.Name()] = m.Value()
	}
}
