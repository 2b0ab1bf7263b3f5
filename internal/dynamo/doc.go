// Package dynamo provides the core primitives for the coupled oscillator engine.
//
// The package defines the types shared by every layer of the simulation:
//
//   - [State]: positions (relative to equilibrium) and velocities of both masses
//   - [Accel]: accelerations of both masses at a given State
//   - [Field]: anything that maps a State to its accelerations
//   - [Stepper]: numerical integration scheme advancing a State by one step
//
// # Example
//
//	c, _ := physics.NewCoupling(physics.DefaultParams())
//	x := dynamo.State{X1: -1, X2: 1}
//	a := c.Accelerations(x)
//	x, a = integrators.NewLeapfrog().Step(c, x, a, 1.0/600)
//
// # Thread Safety
//
// None of the values here carry locks. A State is a plain value and is safe to
// copy; the controller in package sim owns the live one.
package dynamo
