package integrators

import (
	"fmt"

	"github.com/san-kum/coupled/internal/dynamo"
)

// DefaultSubSteps is the number of integration steps per frame.
const DefaultSubSteps = 10

// SubStepper splits each frame into N fixed steps of dtFrame/N. The spring
// stiffness makes a single step per frame visibly unstable at low frame
// rates, so frames are never integrated in one step.
type SubStepper struct {
	stepper dynamo.Stepper
	n       int
}

func NewSubStepper(s dynamo.Stepper, n int) (*SubStepper, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil stepper", dynamo.ErrInvalidConfig)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: sub-steps must be at least 1, got %d", dynamo.ErrInvalidConfig, n)
	}
	return &SubStepper{stepper: s, n: n}, nil
}

func (s *SubStepper) Stepper() dynamo.Stepper { return s.stepper }
func (s *SubStepper) SubSteps() int           { return s.n }

// Advance runs the N sub-steps in order, each seeing the result of the last.
func (s *SubStepper) Advance(f dynamo.Field, x dynamo.State, a dynamo.Accel, dtFrame float64) (dynamo.State, dynamo.Accel) {
	dt := dtFrame / float64(s.n)
	for i := 0; i < s.n; i++ {
		x, a = s.stepper.Step(f, x, a, dt)
	}
	return x, a
}
