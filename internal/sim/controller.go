package sim

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/coupled/internal/dynamo"
	"github.com/san-kum/coupled/internal/integrators"
	"github.com/san-kum/coupled/internal/metrics"
	"github.com/san-kum/coupled/internal/physics"
)

// Controller owns the state of one simulation session. It starts paused.
type Controller struct {
	params   physics.Params
	coupling physics.Coupling
	stepper  *integrators.SubStepper
	opts     Options
	logger   *slog.Logger

	initial dynamo.State
	state   dynamo.State
	accel   dynamo.Accel
	// stale is set by an override; accel no longer matches state.
	stale   bool
	running bool

	mode      dynamo.Mode
	amplitude float64

	elapsed float64
	frames  int
	energy  *metrics.EnergyMonitor
}

// New creates a paused controller at state x0, expressed as displacements
// from the reference positions in p.
func New(p physics.Params, x0 dynamo.State, opts Options) (*Controller, error) {
	opts = opts.withDefaults()

	coupling, err := physics.NewCoupling(p)
	if err != nil {
		return nil, err
	}
	if !x0.IsValid() {
		return nil, fmt.Errorf("%w: initial state %v", dynamo.ErrInvalidParameter, x0)
	}
	stepper, err := integrators.NewSubStepper(opts.Stepper, opts.SubSteps)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		params:   p,
		coupling: coupling,
		stepper:  stepper,
		opts:     opts,
		logger:   opts.Logger,
		initial:  x0,
		energy:   metrics.NewEnergyMonitor(opts.EnergyTolerance),
	}
	c.Reset()
	return c, nil
}

// Reset restores the initial state, pauses and captures a new energy baseline.
func (c *Controller) Reset() {
	c.running = false
	c.state = c.initial
	c.mode = dynamo.ModeNone
	c.amplitude = 0
	c.elapsed = 0
	c.frames = 0
	c.refresh()
	c.rebase()
}

func (c *Controller) Pause() {
	c.running = false
}

// Resume starts the simulation. Accelerations invalidated by an override are
// recomputed from the current positions first, so the next step does not use
// a derivative carried across the paused interval.
func (c *Controller) Resume() {
	if c.stale {
		c.refresh()
	}
	c.running = true
}

func (c *Controller) Running() bool { return c.running }

// Step advances the simulation by dtFrame using the configured number of
// sub-steps. It does nothing while paused or for a non-positive or
// non-finite dtFrame. Step never fails: an unstable configuration produces
// a divergent state, not an error.
func (c *Controller) Step(dtFrame float64) {
	if !c.running || !(dtFrame > 0) || math.IsInf(dtFrame, 1) {
		return
	}
	if c.stale {
		c.refresh()
	}

	c.state, c.accel = c.stepper.Advance(c.coupling, c.state, c.accel, dtFrame)
	c.elapsed += dtFrame
	c.frames++
	c.energy.Record(physics.Energy(c.state, c.params))
}

// ApplyExternalOverride sets both displacements directly, as a drag does.
// Velocities are zeroed since a drag defines a position, not a velocity. The
// cached accelerations stay invalid until Resume. The simulation must be
// paused.
func (c *Controller) ApplyExternalOverride(x1, x2 float64) error {
	if c.running {
		return dynamo.ErrNotPaused
	}
	if math.IsNaN(x1) || math.IsInf(x1, 0) || math.IsNaN(x2) || math.IsInf(x2, 0) {
		return fmt.Errorf("%w: override position (%g, %g)", dynamo.ErrInvalidParameter, x1, x2)
	}

	c.state = dynamo.State{X1: x1, X2: x2}
	c.stale = true
	c.mode = dynamo.ModeNone
	c.rebase()
	return nil
}

// DragTo is ApplyExternalOverride in absolute coordinates.
func (c *Controller) DragTo(abs1, abs2 float64) error {
	return c.ApplyExternalOverride(abs1-c.params.X1Ref, abs2-c.params.X2Ref)
}

// EnterNormalMode puts the system at rest in one of its eigenmode initial
// conditions. It may be called paused or running.
func (c *Controller) EnterNormalMode(mode dynamo.Mode, amplitude float64) error {
	x, err := physics.ModeState(mode, amplitude)
	if err != nil {
		return err
	}

	c.state = x
	c.mode = mode
	c.amplitude = amplitude
	c.refresh()
	c.rebase()
	c.logger.Debug("entered normal mode", "mode", mode, "amplitude", amplitude)
	return nil
}

// ActiveMode returns the normal mode last entered and its amplitude. Any
// override clears it.
func (c *Controller) ActiveMode() (dynamo.Mode, float64) {
	return c.mode, c.amplitude
}

// SetMass sets both masses.
func (c *Controller) SetMass(m float64) error {
	return c.apply("mass", m, func(p *physics.Params) error { return p.SetParam("mass", m) })
}

// SetMasses sets the two masses independently.
func (c *Controller) SetMasses(m1, m2 float64) error {
	return c.apply("mass1,mass2", m1, func(p *physics.Params) error {
		if err := p.SetParam("mass1", m1); err != nil {
			return err
		}
		return p.SetParam("mass2", m2)
	})
}

// SetK1 sets both outer (wall) springs.
func (c *Controller) SetK1(k float64) error {
	return c.apply("k1", k, func(p *physics.Params) error { return p.SetParam("k1", k) })
}

// SetK2 sets the inner coupling spring.
func (c *Controller) SetK2(k float64) error {
	return c.apply("k2", k, func(p *physics.Params) error { return p.SetParam("k2", k) })
}

// SetK3 sets the right wall spring alone.
func (c *Controller) SetK3(k float64) error {
	return c.apply("k3", k, func(p *physics.Params) error { return p.SetParam("k3", k) })
}

// SetParam implements dynamo.Configurable.
func (c *Controller) SetParam(name string, value float64) error {
	return c.apply(name, value, func(p *physics.Params) error { return p.SetParam(name, value) })
}

// GetParams implements dynamo.Configurable.
func (c *Controller) GetParams() map[string]float64 {
	p := c.params
	return p.GetParams()
}

// apply runs change on a copy of the parameters. On failure nothing is
// modified. On success the coupling constants are rebuilt before anything
// reads them.
func (c *Controller) apply(name string, value float64, change func(p *physics.Params) error) error {
	next := c.params
	if err := change(&next); err != nil {
		c.logger.Debug("parameter rejected", "param", name, "value", value, "err", err)
		return err
	}
	coupling, err := physics.NewCoupling(next)
	if err != nil {
		return err
	}

	c.params = next
	c.coupling = coupling
	c.refresh()

	if c.opts.PauseOnChange && c.running {
		c.Pause()
		c.logger.Debug("paused on parameter change", "param", name)
	}
	if c.opts.ReplayMode && c.mode != dynamo.ModeNone {
		return c.EnterNormalMode(c.mode, c.amplitude)
	}
	c.rebase()
	return nil
}

func (c *Controller) refresh() {
	c.accel = c.coupling.Accelerations(c.state)
	c.stale = false
}

func (c *Controller) rebase() {
	c.energy.Rebase(physics.Energy(c.state, c.params))
}

// Positions returns the current displacements of both masses.
func (c *Controller) Positions() (float64, float64) {
	return c.state.X1, c.state.X2
}

// AbsolutePositions returns the positions in world coordinates.
func (c *Controller) AbsolutePositions() (float64, float64) {
	return physics.AbsolutePositions(c.state, c.params)
}

func (c *Controller) State() dynamo.State        { return c.state }
func (c *Controller) Params() physics.Params     { return c.params }
func (c *Controller) Coupling() physics.Coupling { return c.coupling }
func (c *Controller) Elapsed() float64           { return c.elapsed }
func (c *Controller) Frames() int                { return c.frames }
func (c *Controller) StepperName() string        { return c.stepper.Stepper().Name() }
func (c *Controller) SubSteps() int              { return c.stepper.SubSteps() }

// Energy returns the current total mechanical energy.
func (c *Controller) Energy() float64 {
	return physics.Energy(c.state, c.params)
}

// EnergyRatio returns E0/E for the current state, where E0 was captured at the
// last (re)initialization. It is NaN or Inf when E is zero.
//
// Reset, EnterNormalMode, ApplyExternalOverride, DragTo and every accepted
// parameter change recapture E0, so the ratio restarts at 1.0 after any of them.
func (c *Controller) EnergyRatio() float64 {
	return c.energy.Baseline() / c.Energy()
}

// MaxEnergyDrift is the largest |E0/E - 1| seen since the last baseline.
func (c *Controller) MaxEnergyDrift() float64 { return c.energy.MaxDrift() }

// DriftExceeded reports whether the drift passed the configured tolerance.
func (c *Controller) DriftExceeded() bool { return c.energy.Exceeded() }

// SpringEndpoints returns the absolute attachment points of spring i (1..3).
func (c *Controller) SpringEndpoints(i int) (physics.Segment, error) {
	return physics.Endpoints(c.state, c.params, i)
}

// SpringForces returns the force each spring exerts on its masses.
func (c *Controller) SpringForces() physics.Forces {
	return physics.SpringForces(c.state, c.params)
}

// NormalCoordinates returns the center-of-mass and half-separation
// displacements.
func (c *Controller) NormalCoordinates() (center, relative float64) {
	return physics.NormalCoordinates(c.state)
}
