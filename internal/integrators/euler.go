package integrators

import "github.com/san-kum/coupled/internal/dynamo"

// Euler is the explicit forward Euler scheme. Both position and velocity are
// advanced with the derivative at the start of the step, which makes the
// energy of an oscillator grow every step. It is kept as a visibly worse
// baseline for comparison.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(f dynamo.Field, x dynamo.State, a dynamo.Accel, dt float64) (dynamo.State, dynamo.Accel) {
	next := dynamo.State{
		X1: x.X1 + x.V1*dt,
		X2: x.X2 + x.V2*dt,
		V1: x.V1 + a.A1*dt,
		V2: x.V2 + a.A2*dt,
	}
	return next, f.Accelerations(next)
}
