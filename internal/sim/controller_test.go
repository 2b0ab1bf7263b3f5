package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/coupled/internal/dynamo"
	"github.com/san-kum/coupled/internal/integrators"
	"github.com/san-kum/coupled/internal/physics"
	"github.com/san-kum/coupled/internal/sim"
)

const frame = 1.0 / 60

func newController(p physics.Params, opts sim.Options) *sim.Controller {
	c, err := sim.New(p, dynamo.State{X1: 1, X2: -1}, opts)
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("Controller", func() {
	var c *sim.Controller

	BeforeEach(func() {
		c = newController(physics.DefaultParams(), sim.DefaultOptions())
	})

	Describe("construction", func() {
		It("starts paused at the initial state", func() {
			Expect(c.Running()).To(BeFalse())
			Expect(c.State()).To(Equal(dynamo.State{X1: 1, X2: -1}))
			Expect(c.EnergyRatio()).To(Equal(1.0))
			Expect(c.SubSteps()).To(Equal(integrators.DefaultSubSteps))
			Expect(c.StepperName()).To(Equal("leapfrog"))
		})

		It("rejects invalid parameters", func() {
			p := physics.DefaultParams()
			p.Mass2 = 0
			_, err := sim.New(p, dynamo.State{}, sim.DefaultOptions())
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		})

		It("rejects a non-finite initial state", func() {
			_, err := sim.New(physics.DefaultParams(), dynamo.State{X1: math.NaN()}, sim.DefaultOptions())
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		})

		It("rejects a sub-step count below one", func() {
			opts := sim.DefaultOptions()
			opts.SubSteps = -1
			_, err := sim.New(physics.DefaultParams(), dynamo.State{}, opts)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})
	})

	Describe("Step", func() {
		It("does nothing while paused", func() {
			before := c.State()
			for i := 0; i < 10; i++ {
				c.Step(frame)
			}
			Expect(c.State()).To(Equal(before))
			Expect(c.Elapsed()).To(BeZero())
		})

		It("advances while running", func() {
			c.Resume()
			c.Step(frame)
			Expect(c.State()).NotTo(Equal(dynamo.State{X1: 1, X2: -1}))
			Expect(c.Elapsed()).To(BeNumerically("~", frame, 1e-15))
			Expect(c.Frames()).To(Equal(1))
		})

		It("ignores non-positive and non-finite frame times", func() {
			c.Resume()
			before := c.State()
			c.Step(0)
			c.Step(-frame)
			c.Step(math.NaN())
			c.Step(math.Inf(1))
			Expect(c.State()).To(Equal(before))
		})

		It("matches ten manual leapfrog sub-steps per frame", func() {
			c.Resume()
			c.Step(frame)

			coupling := physics.MustCoupling(physics.DefaultParams())
			x := dynamo.State{X1: 1, X2: -1}
			a := coupling.Accelerations(x)
			lf := integrators.NewLeapfrog()
			dtFrame := frame
			dt := dtFrame / float64(integrators.DefaultSubSteps)
			for i := 0; i < integrators.DefaultSubSteps; i++ {
				x, a = lf.Step(coupling, x, a, dt)
			}
			Expect(c.State()).To(Equal(x))
		})

		It("freezes again after Pause", func() {
			c.Resume()
			c.Step(frame)
			c.Pause()
			before := c.State()
			c.Step(frame)
			Expect(c.State()).To(Equal(before))
		})
	})

	Describe("ApplyExternalOverride", func() {
		It("zeroes velocities regardless of prior motion", func() {
			c.Resume()
			for i := 0; i < 30; i++ {
				c.Step(frame)
			}
			Expect(c.State().V1).NotTo(BeZero())

			c.Pause()
			Expect(c.ApplyExternalOverride(0.4, -0.7)).To(Succeed())
			Expect(c.State()).To(Equal(dynamo.State{X1: 0.4, X2: -0.7}))
		})

		It("is rejected while running and leaves the state alone", func() {
			c.Resume()
			c.Step(frame)
			before := c.State()
			Expect(c.ApplyExternalOverride(0, 0)).To(MatchError(dynamo.ErrNotPaused))
			Expect(c.State()).To(Equal(before))
		})

		It("rejects non-finite positions", func() {
			Expect(c.ApplyExternalOverride(math.Inf(-1), 0)).To(MatchError(dynamo.ErrInvalidParameter))
		})

		It("uses accelerations of the overridden position after Resume", func() {
			Expect(c.ApplyExternalOverride(0.5, 0.5)).To(Succeed())
			c.Resume()
			c.Step(frame)

			ref := newController(physics.DefaultParams(), sim.DefaultOptions())
			Expect(ref.EnterNormalMode(dynamo.ModeSymmetric, 0.5)).To(Succeed())
			ref.Resume()
			ref.Step(frame)

			// (0.5, 0.5) at rest is the symmetric mode with amplitude -0.5.
			x1, x2 := c.Positions()
			r1, r2 := ref.Positions()
			Expect(x1).To(BeNumerically("~", -r1, 1e-12))
			Expect(x2).To(BeNumerically("~", -r2, 1e-12))
		})

		It("rebaselines the energy and clears the active mode", func() {
			Expect(c.EnterNormalMode(dynamo.ModeSymmetric, 1)).To(Succeed())
			Expect(c.ApplyExternalOverride(0.2, 0.1)).To(Succeed())
			Expect(c.EnergyRatio()).To(Equal(1.0))
			mode, _ := c.ActiveMode()
			Expect(mode).To(Equal(dynamo.ModeNone))
		})

		It("accepts absolute coordinates through DragTo", func() {
			Expect(c.DragTo(-1.5, 2.25)).To(Succeed())
			x1, x2 := c.Positions()
			Expect(x1).To(BeNumerically("~", 0.5, 1e-12))
			Expect(x2).To(BeNumerically("~", 0.25, 1e-12))
			a1, a2 := c.AbsolutePositions()
			Expect(a1).To(BeNumerically("~", -1.5, 1e-12))
			Expect(a2).To(BeNumerically("~", 2.25, 1e-12))
		})
	})

	Describe("EnterNormalMode", func() {
		It("sets the symmetric initial condition", func() {
			Expect(c.EnterNormalMode(dynamo.ModeSymmetric, 0.8)).To(Succeed())
			Expect(c.State()).To(Equal(dynamo.State{X1: -0.8, X2: -0.8}))
			mode, amp := c.ActiveMode()
			Expect(mode).To(Equal(dynamo.ModeSymmetric))
			Expect(amp).To(Equal(0.8))
		})

		It("sets the antisymmetric initial condition while running", func() {
			c.Resume()
			c.Step(frame)
			Expect(c.EnterNormalMode(dynamo.ModeAntisymmetric, 0.8)).To(Succeed())
			Expect(c.State()).To(Equal(dynamo.State{X1: -0.8, X2: 0.8}))
			Expect(c.Running()).To(BeTrue())
		})

		It("rejects a negative amplitude", func() {
			before := c.State()
			Expect(c.EnterNormalMode(dynamo.ModeSymmetric, -1)).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(c.State()).To(Equal(before))
		})

		It("reproduces simple harmonic motion when decoupled", func() {
			p := physics.DefaultParams()
			p.K2 = 0
			p.Mass2 = 2.5
			c = newController(p, sim.DefaultOptions())
			Expect(c.EnterNormalMode(dynamo.ModeSymmetric, 1)).To(Succeed())
			c.Resume()

			w1 := math.Sqrt(p.K1 / p.Mass1)
			w2 := math.Sqrt(p.K3 / p.Mass2)
			for i := 0; i < 180; i++ {
				c.Step(frame)
				t := c.Elapsed()
				x1, x2 := c.Positions()
				Expect(x1).To(BeNumerically("~", -math.Cos(w1*t), 1e-3))
				Expect(x2).To(BeNumerically("~", -math.Cos(w2*t), 1e-3))
			}
		})

		It("keeps the antisymmetric mode odd for one second", func() {
			p := physics.Params{Mass1: 1, Mass2: 1, K1: 10, K2: 2, K3: 10, X1Ref: -2, X2Ref: 2}
			c = newController(p, sim.DefaultOptions())
			Expect(c.EnterNormalMode(dynamo.ModeAntisymmetric, 1)).To(Succeed())
			c.Resume()

			for i := 0; i < 60; i++ {
				c.Step(frame)
				x1, x2 := c.Positions()
				Expect(x2).To(BeNumerically("~", -x1, 1e-3))
			}
			Expect(c.Elapsed()).To(BeNumerically("~", 1.0, 1e-9))
		})
	})

	Describe("parameter changes", func() {
		DescribeTable("reject invalid values without side effects",
			func(set func(*sim.Controller) error) {
				c.Resume()
				c.Step(frame)
				params, state := c.Params(), c.State()
				coupling := c.Coupling()

				Expect(set(c)).To(MatchError(dynamo.ErrInvalidParameter))
				Expect(c.Params()).To(Equal(params))
				Expect(c.State()).To(Equal(state))
				Expect(c.Coupling()).To(Equal(coupling))
			},
			Entry("zero mass", func(c *sim.Controller) error { return c.SetMass(0) }),
			Entry("negative mass", func(c *sim.Controller) error { return c.SetMass(-2) }),
			Entry("one zero mass", func(c *sim.Controller) error { return c.SetMasses(1, 0) }),
			Entry("negative k1", func(c *sim.Controller) error { return c.SetK1(-1) }),
			Entry("negative k2", func(c *sim.Controller) error { return c.SetK2(-0.5) }),
			Entry("NaN k3", func(c *sim.Controller) error { return c.SetK3(math.NaN()) }),
			Entry("unknown name", func(c *sim.Controller) error { return c.SetParam("damping", 1) }),
		)

		It("recomputes the coupling constants immediately", func() {
			Expect(c.SetMass(2)).To(Succeed())
			Expect(c.SetK1(8)).To(Succeed())
			Expect(c.SetK2(4)).To(Succeed())

			want := physics.MustCoupling(c.Params())
			Expect(c.Coupling()).To(Equal(want))
			Expect(c.Coupling().C[0][0]).To(BeNumerically("~", -4, 1e-12))
			Expect(c.Coupling().C[1][1]).To(BeNumerically("~", 2, 1e-12))
			Expect(c.GetParams()["k3"]).To(Equal(8.0))
		})

		It("sets the right spring alone with SetK3", func() {
			Expect(c.SetK3(3)).To(Succeed())
			Expect(c.Params().K1).To(Equal(physics.DefaultK1))
			Expect(c.Params().K3).To(Equal(3.0))
		})

		It("re-enters the active normal mode when ReplayMode is on", func() {
			Expect(c.EnterNormalMode(dynamo.ModeAntisymmetric, 0.6)).To(Succeed())
			c.Resume()
			for i := 0; i < 20; i++ {
				c.Step(frame)
			}
			Expect(c.SetK2(5)).To(Succeed())
			Expect(c.State()).To(Equal(dynamo.State{X1: -0.6, X2: 0.6}))
			Expect(c.Running()).To(BeTrue())
		})

		It("keeps the motion when ReplayMode is off", func() {
			opts := sim.DefaultOptions()
			opts.ReplayMode = false
			c = newController(physics.DefaultParams(), opts)
			Expect(c.EnterNormalMode(dynamo.ModeSymmetric, 1)).To(Succeed())
			c.Resume()
			c.Step(frame)
			before := c.State()
			Expect(c.SetK2(5)).To(Succeed())
			Expect(c.State()).To(Equal(before))
			Expect(c.EnergyRatio()).To(Equal(1.0))
		})

		It("pauses on change when configured", func() {
			opts := sim.DefaultOptions()
			opts.PauseOnChange = true
			c = newController(physics.DefaultParams(), opts)
			c.Resume()
			Expect(c.SetMass(3)).To(Succeed())
			Expect(c.Running()).To(BeFalse())
		})

		It("does not pause on a rejected change", func() {
			opts := sim.DefaultOptions()
			opts.PauseOnChange = true
			c = newController(physics.DefaultParams(), opts)
			c.Resume()
			Expect(c.SetMass(0)).NotTo(Succeed())
			Expect(c.Running()).To(BeTrue())
		})
	})

	Describe("energy diagnostics", func() {
		It("stays within 1% for leapfrog", func() {
			Expect(c.EnterNormalMode(dynamo.ModeAntisymmetric, 1)).To(Succeed())
			c.Resume()
			for i := 0; i < 1000; i++ {
				c.Step(frame)
				Expect(c.EnergyRatio()).To(BeNumerically("~", 1.0, 0.01))
			}
			Expect(c.DriftExceeded()).To(BeFalse())
		})

		It("flags euler drift", func() {
			opts := sim.DefaultOptions()
			opts.Stepper = integrators.NewEuler()
			c = newController(physics.DefaultParams(), opts)
			c.Resume()
			prev := c.EnergyRatio()
			for i := 0; i < 1000; i++ {
				c.Step(frame)
				r := c.EnergyRatio()
				Expect(r).To(BeNumerically("<", prev))
				prev = r
			}
			Expect(c.DriftExceeded()).To(BeTrue())
			Expect(c.MaxEnergyDrift()).To(BeNumerically(">", 0.01))
		})

		It("restarts the ratio at 1.0 after Reset and EnterNormalMode", func() {
			opts := sim.DefaultOptions()
			opts.Stepper = integrators.NewEuler()
			c = newController(physics.DefaultParams(), opts)
			c.Resume()
			for i := 0; i < 100; i++ {
				c.Step(frame)
			}
			Expect(c.EnergyRatio()).To(BeNumerically("<", 1.0))

			Expect(c.EnterNormalMode(dynamo.ModeSymmetric, 0.5)).To(Succeed())
			Expect(c.EnergyRatio()).To(Equal(1.0))
			Expect(c.MaxEnergyDrift()).To(BeZero())

			for i := 0; i < 100; i++ {
				c.Step(frame)
			}
			c.Reset()
			Expect(c.EnergyRatio()).To(Equal(1.0))
		})

		It("reports NaN rather than failing at zero energy", func() {
			Expect(c.ApplyExternalOverride(0, 0)).To(Succeed())
			Expect(math.IsNaN(c.EnergyRatio())).To(BeTrue())
			c.Resume()
			c.Step(frame)
			Expect(c.State()).To(Equal(dynamo.State{}))
		})
	})

	Describe("presentation queries", func() {
		It("returns spring endpoints from wall and mass positions", func() {
			Expect(c.DragTo(-1, 1)).To(Succeed())
			left, err := c.SpringEndpoints(physics.SpringLeft)
			Expect(err).NotTo(HaveOccurred())
			Expect(left).To(Equal(physics.Segment{Left: -5, Right: -1}))

			center, err := c.SpringEndpoints(physics.SpringCenter)
			Expect(err).NotTo(HaveOccurred())
			Expect(center).To(Equal(physics.Segment{Left: -1, Right: 1}))

			right, err := c.SpringEndpoints(physics.SpringRight)
			Expect(err).NotTo(HaveOccurred())
			Expect(right).To(Equal(physics.Segment{Left: 1, Right: 5}))

			_, err = c.SpringEndpoints(4)
			Expect(err).To(MatchError(dynamo.ErrUnknownSpring))
		})

		It("splits forces consistently with the accelerations", func() {
			Expect(c.ApplyExternalOverride(0.3, -0.1)).To(Succeed())
			f1, f2 := c.SpringForces().Net()
			a := c.Coupling().Accelerations(c.State())
			Expect(f1 / c.Params().Mass1).To(BeNumerically("~", a.A1, 1e-12))
			Expect(f2 / c.Params().Mass2).To(BeNumerically("~", a.A2, 1e-12))
		})

		It("keeps the center of mass still in the antisymmetric mode", func() {
			Expect(c.EnterNormalMode(dynamo.ModeAntisymmetric, 1)).To(Succeed())
			c.Resume()
			for i := 0; i < 120; i++ {
				c.Step(frame)
				center, _ := c.NormalCoordinates()
				Expect(center).To(BeNumerically("~", 0, 1e-9))
			}
		})
	})

	Describe("Reset", func() {
		It("restores the initial state and pauses", func() {
			Expect(c.EnterNormalMode(dynamo.ModeSymmetric, 1)).To(Succeed())
			c.Resume()
			c.Step(frame)
			c.Reset()
			Expect(c.Running()).To(BeFalse())
			Expect(c.State()).To(Equal(dynamo.State{X1: 1, X2: -1}))
			Expect(c.Elapsed()).To(BeZero())
			mode, _ := c.ActiveMode()
			Expect(mode).To(Equal(dynamo.ModeNone))
		})
	})
})
