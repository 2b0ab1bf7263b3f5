package physics

import (
	"math"
	"sort"

	"github.com/san-kum/coupled/internal/dynamo"
)

const (
	DefaultMass  = 1.0
	DefaultK1    = 10.0
	DefaultK2    = 2.0
	DefaultX1Ref = -2.0
	DefaultX2Ref = 2.0

	DefaultWallLeft  = -5.0
	DefaultWallRight = 5.0
)

// Geometry places the walls. It only affects spring endpoints; the walls are
// not physically enforced.
type Geometry struct {
	WallLeft      float64 `yaml:"left" json:"left"`
	WallRight     float64 `yaml:"right" json:"right"`
	WallHalfWidth float64 `yaml:"half_width" json:"half_width"`
	// SizeByMass grows each mass's drawn size with its mass, which moves the
	// spring attachment points off the mass centers.
	SizeByMass bool `yaml:"size_by_mass" json:"size_by_mass"`
}

// Params defines the physical system. K1 is the left wall spring, K2 the
// inner coupling spring and K3 the right wall spring.
type Params struct {
	Mass1 float64 `yaml:"mass1" json:"mass1"`
	Mass2 float64 `yaml:"mass2" json:"mass2"`
	K1    float64 `yaml:"k1" json:"k1"`
	K2    float64 `yaml:"k2" json:"k2"`
	K3    float64 `yaml:"k3" json:"k3"`
	X1Ref float64 `yaml:"x1_ref" json:"x1_ref"`
	X2Ref float64 `yaml:"x2_ref" json:"x2_ref"`

	Geometry Geometry `yaml:"walls" json:"walls"`
}

func DefaultParams() Params {
	return Params{
		Mass1: DefaultMass,
		Mass2: DefaultMass,
		K1:    DefaultK1,
		K2:    DefaultK2,
		K3:    DefaultK1,
		X1Ref: DefaultX1Ref,
		X2Ref: DefaultX2Ref,
		Geometry: Geometry{
			WallLeft:  DefaultWallLeft,
			WallRight: DefaultWallRight,
		},
	}
}

// Validate rejects non-positive masses, negative spring constants and
// non-finite values. Every division in the acceleration field is by a mass,
// so a Params that passes Validate cannot produce NaN or Inf accelerations
// from a finite state.
func (p Params) Validate() error {
	if err := checkMass("mass1", p.Mass1); err != nil {
		return err
	}
	if err := checkMass("mass2", p.Mass2); err != nil {
		return err
	}
	for _, k := range []struct {
		name string
		v    float64
	}{{"k1", p.K1}, {"k2", p.K2}, {"k3", p.K3}} {
		if err := checkStiffness(k.name, k.v); err != nil {
			return err
		}
	}
	for _, r := range []struct {
		name string
		v    float64
	}{{"x1_ref", p.X1Ref}, {"x2_ref", p.X2Ref}} {
		if !finite(r.v) {
			return &dynamo.ParamError{Name: r.name, Value: r.v, Reason: "must be finite"}
		}
	}
	return nil
}

func checkMass(name string, m float64) error {
	if !finite(m) || m <= 0 {
		return &dynamo.ParamError{Name: name, Value: m, Reason: "must be positive"}
	}
	return nil
}

func checkStiffness(name string, k float64) error {
	if !finite(k) || k < 0 {
		return &dynamo.ParamError{Name: name, Value: k, Reason: "must be non-negative"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// GetParams implements dynamo.Configurable
func (p *Params) GetParams() map[string]float64 {
	return map[string]float64{
		"mass1":  p.Mass1,
		"mass2":  p.Mass2,
		"k1":     p.K1,
		"k2":     p.K2,
		"k3":     p.K3,
		"x1_ref": p.X1Ref,
		"x2_ref": p.X2Ref,
	}
}

// SetParam implements dynamo.Configurable. The change is validated on a copy
// and p is left untouched when it is rejected.
func (p *Params) SetParam(name string, value float64) error {
	next := *p
	switch name {
	case "mass":
		next.Mass1, next.Mass2 = value, value
	case "mass1":
		next.Mass1 = value
	case "mass2":
		next.Mass2 = value
	case "k1":
		// The outer springs move together, as a single slider drives both.
		next.K1, next.K3 = value, value
	case "k2":
		next.K2 = value
	case "k3":
		next.K3 = value
	case "x1_ref":
		next.X1Ref = value
	case "x2_ref":
		next.X2Ref = value
	default:
		return &dynamo.ParamError{Name: name, Value: value, Reason: "is not a parameter"}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

// ParamNames lists the names accepted by SetParam in sorted order.
func ParamNames() []string {
	names := []string{"mass", "mass1", "mass2", "k1", "k2", "k3", "x1_ref", "x2_ref"}
	sort.Strings(names)
	return names
}
