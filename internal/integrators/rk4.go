package integrators

import "github.com/san-kum/coupled/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta scheme. It is far more
// accurate per step than Euler but not symplectic, so energy slowly decays.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

// derivative is d/dt of the state: velocities and accelerations.
type derivative struct {
	dx1, dx2, dv1, dv2 float64
}

func deriv(x dynamo.State, a dynamo.Accel) derivative {
	return derivative{dx1: x.V1, dx2: x.V2, dv1: a.A1, dv2: a.A2}
}

func advance(x dynamo.State, k derivative, h float64) dynamo.State {
	return dynamo.State{
		X1: x.X1 + h*k.dx1,
		X2: x.X2 + h*k.dx2,
		V1: x.V1 + h*k.dv1,
		V2: x.V2 + h*k.dv2,
	}
}

func (r *RK4) Step(f dynamo.Field, x dynamo.State, a dynamo.Accel, dt float64) (dynamo.State, dynamo.Accel) {
	k1 := deriv(x, a)

	s := advance(x, k1, dt*0.5)
	k2 := deriv(s, f.Accelerations(s))

	s = advance(x, k2, dt*0.5)
	k3 := deriv(s, f.Accelerations(s))

	s = advance(x, k3, dt)
	k4 := deriv(s, f.Accelerations(s))

	dt6 := dt / 6.0
	next := dynamo.State{
		X1: x.X1 + dt6*(k1.dx1+2*k2.dx1+2*k3.dx1+k4.dx1),
		X2: x.X2 + dt6*(k1.dx2+2*k2.dx2+2*k3.dx2+k4.dx2),
		V1: x.V1 + dt6*(k1.dv1+2*k2.dv1+2*k3.dv1+k4.dv1),
		V2: x.V2 + dt6*(k1.dv2+2*k2.dv2+2*k3.dv2+k4.dv2),
	}
	return next, f.Accelerations(next)
}
