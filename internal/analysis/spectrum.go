package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// ErrShortSeries is returned when a series has too few samples to resolve a
// frequency.
var ErrShortSeries = errors.New("analysis: series too short")

const minSamples = 8

// Spectrum returns the one-sided magnitude spectrum of a Hann-windowed,
// mean-removed series sampled every dt seconds. freqs[i] is the frequency in
// Hz of mags[i].
func Spectrum(samples []float64, dt float64) (freqs, mags []float64, err error) {
	n := len(samples)
	if n < minSamples {
		return nil, nil, fmt.Errorf("%w: %d samples", ErrShortSeries, n)
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, nil, fmt.Errorf("analysis: sample interval must be positive, got %g", dt)
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)

	bins := n/2 + 1
	freqs = make([]float64, bins)
	mags = make([]float64, bins)
	df := 1 / (float64(n) * dt)
	for i := 0; i < bins; i++ {
		freqs[i] = float64(i) * df
		mags[i] = cmplx.Abs(spectrum[i])
	}
	return freqs, mags, nil
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// component. The peak is refined by fitting a parabola through the peak bin
// and its neighbours.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	freqs, mags, err := Spectrum(samples, dt)
	if err != nil {
		return 0, err
	}

	peak := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	if mags[peak] == 0 {
		return 0, nil
	}

	offset := 0.0
	if peak > 0 && peak < len(mags)-1 {
		a, b, c := mags[peak-1], mags[peak], mags[peak+1]
		if den := a - 2*b + c; den != 0 {
			offset = 0.5 * (a - c) / den
		}
	}
	df := freqs[1] - freqs[0]
	return freqs[peak] + offset*df, nil
}
