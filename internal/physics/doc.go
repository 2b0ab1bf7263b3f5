// Package physics models two masses between two walls joined by three springs.
//
//	wall |--K1--[M1]--K2--[M2]--K3--| wall
//
// [Params] carries the masses, spring constants and reference positions.
// [Coupling] is the linear acceleration field derived from Params and
// implements [dynamo.Field]; it is rebuilt from scratch whenever a parameter
// changes and never edited in place.
//
// # Energy Conservation
//
// The system is undamped, so [Energy] is conserved by the exact dynamics and
// its drift measures the quality of an integrator:
//
//	c, _ := physics.NewCoupling(p)
//	e0 := physics.Energy(x, p)
//	// ... integrate ...
//	ratio := e0 / physics.Energy(x, p)
package physics
