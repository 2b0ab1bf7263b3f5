package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a mass, spring constant or amplitude outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrNotPaused indicates a state override was attempted while the simulation was running.
	ErrNotPaused = errors.New("dynamo: simulation must be paused")

	// ErrUnknownSpring indicates a spring index outside 1..3.
	ErrUnknownSpring = errors.New("dynamo: unknown spring index")

	// ErrUnknownIntegrator indicates an integrator name with no registered scheme.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")

	// ErrInvalidConfig indicates a run or controller configuration that cannot be used.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrContextCanceled indicates the run was interrupted.
	ErrContextCanceled = errors.New("dynamo: run canceled by context")
)

// ParamError reports a rejected parameter value.
type ParamError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s=%g %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Frame   int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
