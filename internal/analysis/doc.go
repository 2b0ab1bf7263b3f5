// Package analysis derives frequency-domain views of the coupled system.
//
//   - [NormalModes]: eigenfrequencies and mode shapes of the spring system
//   - [BeatPeriod]: envelope period when both modes are excited
//   - [DominantFrequency]: strongest oscillation in a sampled series
//   - [NewPhasePortrait]: 2D trajectories such as x1 against x2
//   - [NewPoincareSection]: stroboscopic section on a zero crossing
//
// # Checking an integrator
//
// The measured frequency of a recorded mode should agree with the analytic
// one to within a bin of the spectrum:
//
//	modes, _ := analysis.NormalModes(p)
//	f, _ := analysis.DominantFrequency(res.Series(x1), res.FrameDt)
//	// f ≈ modes[0].Frequency
package analysis
