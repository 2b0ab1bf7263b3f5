package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/coupled/internal/dynamo"
)

// Default is the scheme used when none is configured.
const Default = "leapfrog"

var registry = map[string]func() dynamo.Stepper{
	"euler":    func() dynamo.Stepper { return NewEuler() },
	"leapfrog": func() dynamo.Stepper { return NewLeapfrog() },
	"verlet":   func() dynamo.Stepper { return NewLeapfrog() },
	"rk4":      func() dynamo.Stepper { return NewRK4() },
}

// New returns a fresh stepper by name. The empty name selects Default.
func New(name string) (dynamo.Stepper, error) {
	if name == "" {
		name = Default
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownIntegrator, name, Names())
	}
	return fn(), nil
}

// Names lists the registered schemes in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
