package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/coupled/internal/dynamo"
	"github.com/san-kum/coupled/internal/physics"
)

// NormalMode is one eigenmode of the undamped system.
type NormalMode struct {
	Kind      dynamo.Mode
	Omega     float64 // rad/s
	Frequency float64 // Hz
	Period    float64 // s, +Inf for a zero-frequency mode
	// Shape is the displacement pattern scaled so its largest component has
	// magnitude 1 and the first non-zero component is negative, matching the
	// sign convention of physics.ModeState.
	Shape [2]float64
}

// NormalModes solves K v = ω² M v for the two-mass chain. The generalized
// problem is reduced to the symmetric matrix M^-1/2 K M^-1/2, so the modes
// come back in ascending frequency.
func NormalModes(p physics.Params) ([]NormalMode, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s1, s2 := 1/math.Sqrt(p.Mass1), 1/math.Sqrt(p.Mass2)
	d := mat.NewSymDense(2, []float64{
		(p.K1 + p.K2) * s1 * s1, -p.K2 * s1 * s2,
		-p.K2 * s1 * s2, (p.K2 + p.K3) * s2 * s2,
	})

	var eig mat.EigenSym
	if ok := eig.Factorize(d, true); !ok {
		return nil, fmt.Errorf("analysis: eigendecomposition did not converge for %+v", p)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	modes := make([]NormalMode, len(values))
	for i, lambda := range values {
		// Tiny negative eigenvalues are rounding noise on a free mode.
		omega := math.Sqrt(math.Max(lambda, 0))
		shape := normalizeShape([2]float64{
			vectors.At(0, i) * s1,
			vectors.At(1, i) * s2,
		})

		kind := dynamo.ModeSymmetric
		if shape[0]*shape[1] < 0 {
			kind = dynamo.ModeAntisymmetric
		}

		period := math.Inf(1)
		if omega > 0 {
			period = 2 * math.Pi / omega
		}
		modes[i] = NormalMode{
			Kind:      kind,
			Omega:     omega,
			Frequency: omega / (2 * math.Pi),
			Period:    period,
			Shape:     shape,
		}
	}
	return modes, nil
}

func normalizeShape(v [2]float64) [2]float64 {
	scale := math.Max(math.Abs(v[0]), math.Abs(v[1]))
	if scale == 0 {
		return v
	}
	lead := v[0]
	if math.Abs(lead) < 1e-12*scale {
		lead = v[1]
	}
	if lead > 0 {
		scale = -scale
	}
	return [2]float64{v[0] / scale, v[1] / scale}
}

// BeatPeriod is the period of the amplitude envelope produced by exciting both
// modes at once, 2π/|ω2 - ω1|. It is +Inf when the modes are degenerate.
func BeatPeriod(modes []NormalMode) float64 {
	if len(modes) < 2 {
		return math.Inf(1)
	}
	dw := math.Abs(modes[1].Omega - modes[0].Omega)
	if dw == 0 {
		return math.Inf(1)
	}
	return 2 * math.Pi / dw
}
