package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/coupled/internal/dynamo"
)

const (
	SpringLeft   = 1
	SpringCenter = 2
	SpringRight  = 3
)

// Segment is the pair of absolute x coordinates a spring is attached to.
type Segment struct {
	Left, Right float64
}

func (s Segment) Length() float64 { return s.Right - s.Left }

// MassHalfSize returns half the drawn width of a mass. Heavier masses are
// drawn larger, growing with the log of the cube root of the mass.
func MassHalfSize(m float64) float64 {
	return 0.5 * (1 + math.Log10(math.Max(0.1, math.Pow(m, 0.33))))
}

// AbsolutePositions converts displacements to absolute coordinates.
func AbsolutePositions(x dynamo.State, p Params) (float64, float64) {
	return p.X1Ref + x.X1, p.X2Ref + x.X2
}

// Endpoints returns the attachment points of spring i (1 left, 2 center,
// 3 right) for state x.
func Endpoints(x dynamo.State, p Params, i int) (Segment, error) {
	x1, x2 := AbsolutePositions(x, p)
	g := p.Geometry

	var h1, h2 float64
	if g.SizeByMass {
		h1, h2 = MassHalfSize(p.Mass1), MassHalfSize(p.Mass2)
	}

	switch i {
	case SpringLeft:
		return Segment{Left: g.WallLeft + g.WallHalfWidth, Right: x1 - h1}, nil
	case SpringCenter:
		return Segment{Left: x1 + h1, Right: x2 - h2}, nil
	case SpringRight:
		return Segment{Left: x2 + h2, Right: g.WallRight - g.WallHalfWidth}, nil
	}
	return Segment{}, fmt.Errorf("%w: %d", dynamo.ErrUnknownSpring, i)
}

// Forces splits the net force on each mass by the spring that exerts it.
type Forces struct {
	Spring1OnMass1 float64
	Spring2OnMass1 float64
	Spring2OnMass2 float64
	Spring3OnMass2 float64
}

// SpringForces returns Hooke's-law forces for displacement x. Each spring is
// at its rest length when both masses sit at their reference positions.
func SpringForces(x dynamo.State, p Params) Forces {
	stretch := x.X2 - x.X1
	return Forces{
		Spring1OnMass1: -p.K1 * x.X1,
		Spring2OnMass1: p.K2 * stretch,
		Spring2OnMass2: -p.K2 * stretch,
		Spring3OnMass2: -p.K3 * x.X2,
	}
}

// Net returns the total force on each mass.
func (f Forces) Net() (float64, float64) {
	return f.Spring1OnMass1 + f.Spring2OnMass1, f.Spring2OnMass2 + f.Spring3OnMass2
}

// NormalCoordinates returns the center-of-mass displacement (x1+x2)/2 and the
// half separation (x2-x1)/2. For equal masses and outer springs these evolve
// independently, at the symmetric and antisymmetric frequencies.
func NormalCoordinates(x dynamo.State) (center, relative float64) {
	return 0.5 * (x.X1 + x.X2), 0.5 * (x.X2 - x.X1)
}

// ModeState returns the eigenmode initial condition at rest: symmetric
// (-A, -A) or antisymmetric (-A, +A).
func ModeState(mode dynamo.Mode, amplitude float64) (dynamo.State, error) {
	if !finite(amplitude) || amplitude < 0 {
		return dynamo.State{}, &dynamo.ParamError{Name: "amplitude", Value: amplitude, Reason: "must be non-negative"}
	}
	switch mode {
	case dynamo.ModeSymmetric:
		return dynamo.State{X1: -amplitude, X2: -amplitude}, nil
	case dynamo.ModeAntisymmetric:
		return dynamo.State{X1: -amplitude, X2: amplitude}, nil
	}
	return dynamo.State{}, fmt.Errorf("%w: mode %s has no initial condition", dynamo.ErrInvalidParameter, mode)
}
