package sim

import (
	"log/slog"

	"github.com/san-kum/coupled/internal/dynamo"
	"github.com/san-kum/coupled/internal/integrators"
	"github.com/san-kum/coupled/internal/metrics"
)

// Options configure a Controller. Nil and zero numeric fields fall back to
// their defaults.
type Options struct {
	// Stepper integrates each sub-step. Defaults to leapfrog.
	Stepper dynamo.Stepper
	// SubSteps per Step call. Defaults to integrators.DefaultSubSteps.
	SubSteps int
	// PauseOnChange pauses the simulation whenever a parameter is changed.
	PauseOnChange bool
	// ReplayMode re-enters the active normal mode after a parameter change so
	// the motion reflects the new parameters immediately.
	ReplayMode bool
	// EnergyTolerance is the drift at which the energy monitor flags a run.
	// Zero selects metrics.DefaultTolerance.
	EnergyTolerance float64
	Logger          *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Stepper:         integrators.NewLeapfrog(),
		SubSteps:        integrators.DefaultSubSteps,
		ReplayMode:      true,
		EnergyTolerance: metrics.DefaultTolerance,
	}
}

func (o Options) withDefaults() Options {
	if o.Stepper == nil {
		o.Stepper = integrators.NewLeapfrog()
	}
	if o.SubSteps == 0 {
		o.SubSteps = integrators.DefaultSubSteps
	}
	if o.EnergyTolerance == 0 {
		o.EnergyTolerance = metrics.DefaultTolerance
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
