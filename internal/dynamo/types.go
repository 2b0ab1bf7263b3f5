package dynamo

import (
	"fmt"
	"math"
)

// State is the dynamical state of the two-mass system. X1 and X2 are
// displacements from each mass's reference position.
type State struct {
	X1, X2 float64
	V1, V2 float64
}

func (s State) IsValid() bool {
	for _, v := range [4]float64{s.X1, s.X2, s.V1, s.V2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Positions returns the two displacements.
func (s State) Positions() (float64, float64) { return s.X1, s.X2 }

// Velocities returns the two velocities.
func (s State) Velocities() (float64, float64) { return s.V1, s.V2 }

// Vector flattens the state as [x1, x2, v1, v2] for export and analysis.
func (s State) Vector() []float64 {
	return []float64{s.X1, s.X2, s.V1, s.V2}
}

func (s State) String() string {
	return fmt.Sprintf("x=(%.6f, %.6f) v=(%.6f, %.6f)", s.X1, s.X2, s.V1, s.V2)
}

// Accel holds the accelerations of both masses.
type Accel struct {
	A1, A2 float64
}

// Field computes accelerations from positions. Velocities are ignored by the
// undamped linear system but implementations receive the whole State.
type Field interface {
	Accelerations(x State) Accel
}

// Stepper advances x by dt. a must be the acceleration at x, and the returned
// Accel is the acceleration at the returned State, so callers can carry it to
// the next step without recomputing.
type Stepper interface {
	Name() string
	Step(f Field, x State, a Accel, dt float64) (State, Accel)
}

// Mode selects one of the two eigenmode initial conditions.
type Mode int

const (
	ModeNone Mode = iota
	ModeSymmetric
	ModeAntisymmetric
)

func (m Mode) String() string {
	switch m {
	case ModeSymmetric:
		return "symmetric"
	case ModeAntisymmetric:
		return "antisymmetric"
	default:
		return "none"
	}
}

// ParseMode maps a mode name to a Mode. The empty string and "none" map to ModeNone.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "none":
		return ModeNone, nil
	case "symmetric", "sym", "1":
		return ModeSymmetric, nil
	case "antisymmetric", "anti", "2":
		return ModeAntisymmetric, nil
	}
	return ModeNone, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, name)
}

// Configurable is implemented by parameter sets that can be adjusted by name.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Metric accumulates a scalar diagnostic over the samples of a run.
type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}
