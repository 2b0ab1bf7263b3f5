// Package sim owns a running coupled oscillator session.
//
// [Controller] is the single gateway through which a host mutates the
// simulation: Pause and Resume, drag overrides, normal-mode entry and
// parameter changes. The host loop calls [Controller.Step] once per tick.
//
// # Protocol
//
// A Controller is not safe for concurrent use and needs no lock; instead the
// host follows a protocol. It calls Pause before a drag begins, feeds
// ApplyExternalOverride while the user drags, and calls Resume on release.
// Overrides while running are rejected with [dynamo.ErrNotPaused].
//
//	c, _ := sim.New(physics.DefaultParams(), dynamo.State{X1: 1, X2: -1}, sim.DefaultOptions())
//	c.EnterNormalMode(dynamo.ModeAntisymmetric, 1)
//	c.Resume()
//	for range ticks {
//	    c.Step(1.0 / 60)
//	}
//
// [Run] and [Sweep] drive controllers in batch for reports and comparisons.
package sim
