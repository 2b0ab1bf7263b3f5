package physics

import "github.com/san-kum/coupled/internal/dynamo"

// Coupling holds the mass-normalized spring constants of the system:
//
//	a1 = C[0][0]*x1 + C[0][1]*(x2 - x1)
//	a2 = C[1][0]*x2 + C[1][1]*(x1 - x2)
type Coupling struct {
	C [2][2]float64
}

// NewCoupling derives the constants from p. It fails with a ParamError if p
// is invalid rather than producing an infinite or NaN coefficient.
func NewCoupling(p Params) (Coupling, error) {
	if err := p.Validate(); err != nil {
		return Coupling{}, err
	}
	var c Coupling
	c.C[0][0] = -p.K1 / p.Mass1
	c.C[0][1] = p.K2 / p.Mass1
	c.C[1][0] = -p.K3 / p.Mass2
	c.C[1][1] = p.K2 / p.Mass2
	return c, nil
}

// MustCoupling is NewCoupling for parameters known to be valid, such as
// DefaultParams. It panics on invalid input.
func MustCoupling(p Params) Coupling {
	c, err := NewCoupling(p)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Coupling) Accelerations(x dynamo.State) dynamo.Accel {
	return dynamo.Accel{
		A1: c.C[0][0]*x.X1 + c.C[0][1]*(x.X2-x.X1),
		A2: c.C[1][0]*x.X2 + c.C[1][1]*(x.X1-x.X2),
	}
}
