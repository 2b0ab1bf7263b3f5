package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/coupled/internal/analysis"
	"github.com/san-kum/coupled/internal/dynamo"
	"github.com/san-kum/coupled/internal/physics"
	"github.com/san-kum/coupled/internal/sim"
)

// TargetBeatPeriod scores parameters by how far their analytic beat period is
// from target seconds.
func TargetBeatPeriod(target float64) Objective {
	return func(_ context.Context, p physics.Params) (float64, error) {
		modes, err := analysis.NormalModes(p)
		if err != nil {
			return 0, err
		}
		beat := analysis.BeatPeriod(modes)
		if math.IsInf(beat, 1) {
			return math.Inf(1), nil
		}
		return math.Abs(beat - target), nil
	}
}

// TargetFrequency scores parameters by how far the given mode's frequency in
// Hz is from target.
func TargetFrequency(mode dynamo.Mode, target float64) Objective {
	return func(_ context.Context, p physics.Params) (float64, error) {
		modes, err := analysis.NormalModes(p)
		if err != nil {
			return 0, err
		}
		for _, m := range modes {
			if m.Kind == mode {
				return math.Abs(m.Frequency - target), nil
			}
		}
		return 0, fmt.Errorf("no %s mode for %+v", mode, p)
	}
}

// EnergyDrift simulates each parameter set from x0 and scores it by the
// largest energy drift seen. newOptions must return fresh options, since
// steppers are not shared between runs.
func EnergyDrift(x0 dynamo.State, rc sim.RunConfig, newOptions func() sim.Options) Objective {
	return func(ctx context.Context, p physics.Params) (float64, error) {
		c, err := sim.New(p, x0, newOptions())
		if err != nil {
			return 0, err
		}
		res, err := sim.Run(ctx, c, rc)
		if err != nil {
			return 0, err
		}
		if len(res.Errors) > 0 {
			return math.Inf(1), nil
		}
		return res.MaxDrift, nil
	}
}
