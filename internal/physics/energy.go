package physics

import "github.com/san-kum/coupled/internal/dynamo"

// Kinetic returns the kinetic energy of both masses.
func Kinetic(x dynamo.State, p Params) float64 {
	return 0.5 * (p.Mass1*x.V1*x.V1 + p.Mass2*x.V2*x.V2)
}

// Potential returns the energy stored in the three springs.
func Potential(x dynamo.State, p Params) float64 {
	stretch := x.X2 - x.X1
	return 0.5 * (p.K1*x.X1*x.X1 + p.K3*x.X2*x.X2 + p.K2*stretch*stretch)
}

// Energy returns the total mechanical energy.
func Energy(x dynamo.State, p Params) float64 {
	return Kinetic(x, p) + Potential(x, p)
}
