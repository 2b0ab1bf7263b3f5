package metrics

import (
	"math"

	"github.com/san-kum/coupled/internal/dynamo"
)

// DefaultTolerance is the energy drift, |E0/E - 1|, beyond which a run is
// flagged.
const DefaultTolerance = 0.01

// EnergyMonitor tracks E0/E against a baseline captured at the last
// (re)initialization. A ratio far from 1.0 is reported, never corrected: a
// zero energy yields NaN or Inf and that is what callers see.
type EnergyMonitor struct {
	tolerance float64
	baseline  float64
	current   float64
	maxDrift  float64
	samples   int
	exceeded  bool
}

func NewEnergyMonitor(tolerance float64) *EnergyMonitor {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &EnergyMonitor{tolerance: tolerance}
}

// Rebase captures e0 as the new baseline and clears the drift history.
func (m *EnergyMonitor) Rebase(e0 float64) {
	m.baseline = e0
	m.current = e0
	m.maxDrift = 0
	m.samples = 0
	m.exceeded = false
}

// Record observes the current energy.
func (m *EnergyMonitor) Record(e float64) {
	m.current = e
	m.samples++

	drift := math.Abs(m.baseline/e - 1)
	if math.IsNaN(drift) {
		return
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
	if m.maxDrift > m.tolerance {
		m.exceeded = true
	}
}

func (m *EnergyMonitor) Ratio() float64     { return m.baseline / m.current }
func (m *EnergyMonitor) Baseline() float64  { return m.baseline }
func (m *EnergyMonitor) MaxDrift() float64  { return m.maxDrift }
func (m *EnergyMonitor) Samples() int       { return m.samples }
func (m *EnergyMonitor) Tolerance() float64 { return m.tolerance }

// Exceeded reports whether the drift has passed the tolerance since the last
// Rebase.
func (m *EnergyMonitor) Exceeded() bool { return m.exceeded }

// EnergyDrift adapts an EnergyMonitor to dynamo.Metric. The first observed
// sample becomes the baseline.
type EnergyDrift struct {
	name    string
	energy  func(dynamo.State) float64
	monitor *EnergyMonitor
	started bool
}

func NewEnergyDrift(energy func(dynamo.State) float64, tolerance float64) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		energy:  energy,
		monitor: NewEnergyMonitor(tolerance),
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	energy := e.energy(x)
	if !e.started {
		e.monitor.Rebase(energy)
		e.started = true
	}
	e.monitor.Record(energy)
}

func (e *EnergyDrift) Value() float64 {
	return e.monitor.MaxDrift()
}

func (e *EnergyDrift) Reset() {
	e.monitor.Rebase(0)
	e.started = false
}
