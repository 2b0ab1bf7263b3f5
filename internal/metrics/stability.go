package metrics

import (
	"math"

	"github.com/san-kum/coupled/internal/dynamo"
)

// Stability is the fraction of samples in which both displacements stayed
// within threshold and the state was finite. A diverging Euler run drops
// below 1.0 once its amplitude has grown past the threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, t float64) {
	s.samples++
	if !x.IsValid() || math.Abs(x.X1) > s.threshold || math.Abs(x.X2) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
