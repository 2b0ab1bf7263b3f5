package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/coupled/internal/dynamo"
	"github.com/san-kum/coupled/internal/integrators"
	"github.com/san-kum/coupled/internal/metrics"
	"github.com/san-kum/coupled/internal/physics"
	"github.com/san-kum/coupled/internal/sim"
)

var _ = Describe("Run", func() {
	var (
		c   *sim.Controller
		cfg sim.RunConfig
	)

	BeforeEach(func() {
		c = newController(physics.DefaultParams(), sim.DefaultOptions())
		Expect(c.EnterNormalMode(dynamo.ModeAntisymmetric, 1)).To(Succeed())
		cfg = sim.RunConfig{Duration: 1, FrameDt: frame, SampleEvery: 1}
	})

	It("records the initial sample and one per frame", func() {
		res, err := sim.Run(context.Background(), c, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.FramesTaken).To(Equal(60))
		Expect(res.States).To(HaveLen(61))
		Expect(res.Times).To(HaveLen(61))
		Expect(res.States[0]).To(Equal(dynamo.State{X1: -1, X2: 1}))
		Expect(res.Times[60]).To(BeNumerically("~", 1.0, 1e-9))
		Expect(res.Integrator).To(Equal("leapfrog"))
		Expect(res.SubSteps).To(Equal(10))
		Expect(res.Final()).To(Equal(c.State()))
		Expect(c.Running()).To(BeTrue())
	})

	It("thins samples with SampleEvery", func() {
		cfg.SampleEvery = 15
		res, err := sim.Run(context.Background(), c, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.States).To(HaveLen(5))
	})

	It("keeps leapfrog energy within tolerance", func() {
		cfg.Duration = 10
		res, err := sim.Run(context.Background(), c, cfg)
		Expect(err).NotTo(HaveOccurred())
		for _, r := range res.EnergyRatios {
			Expect(r).To(BeNumerically("~", 1.0, 0.01))
		}
		Expect(res.DriftExceeded).To(BeFalse())
	})

	It("reports metric values by name", func() {
		drift := metrics.NewEnergyDrift(func(x dynamo.State) float64 {
			return physics.Energy(x, physics.DefaultParams())
		}, 0)
		res, err := sim.Run(context.Background(), c, cfg, drift, metrics.NewStability(2))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics).To(HaveKey("energy_drift"))
		Expect(res.Metrics["energy_drift"]).To(BeNumerically("<", 0.01))
		Expect(res.Metrics["stability"]).To(Equal(1.0))
	})

	It("extracts a component series", func() {
		res, err := sim.Run(context.Background(), c, cfg)
		Expect(err).NotTo(HaveOccurred())
		x1 := res.Series(func(x dynamo.State) float64 { return x.X1 })
		x2 := res.Series(func(x dynamo.State) float64 { return x.X2 })
		Expect(x1).To(HaveLen(len(res.States)))
		for i := range x1 {
			Expect(x2[i]).To(BeNumerically("~", -x1[i], 1e-9))
		}
	})

	It("records divergence once and keeps going", func() {
		p := physics.DefaultParams()
		p.K1, p.K3 = 1e6, 1e6
		opts := sim.DefaultOptions()
		opts.Stepper = integrators.NewEuler()
		opts.SubSteps = 1
		c = newController(p, opts)
		cfg.Duration = 10

		res, err := sim.Run(context.Background(), c, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.FramesTaken).To(Equal(600))
		Expect(res.Errors).To(HaveLen(1))

		var serr *dynamo.SimulationError
		Expect(errors.As(res.Errors[0], &serr)).To(BeTrue())
		Expect(serr.State.IsValid()).To(BeFalse())
	})

	It("stops between frames when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := sim.Run(ctx, c, cfg)
		Expect(err).To(MatchError(dynamo.ErrContextCanceled))
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.FramesTaken).To(BeZero())
		Expect(res.States).To(HaveLen(1))
	})

	It("bounds the reserved capacity for very long runs", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cfg.Duration = 1e9
		res, err := sim.Run(ctx, c, cfg)
		Expect(err).To(MatchError(dynamo.ErrContextCanceled))
		Expect(res.States).To(HaveLen(1))
		Expect(cap(res.States)).To(Equal(sim.MaxPreallocSamples))
		Expect(cap(res.Times)).To(Equal(sim.MaxPreallocSamples))
		Expect(cap(res.EnergyRatios)).To(Equal(sim.MaxPreallocSamples))
	})

	DescribeTable("rejects invalid run configs",
		func(cfg sim.RunConfig) {
			_, err := sim.Run(context.Background(), c, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		},
		Entry("zero frame dt", sim.RunConfig{Duration: 1}),
		Entry("zero duration", sim.RunConfig{FrameDt: frame}),
		Entry("negative sampling", sim.RunConfig{Duration: 1, FrameDt: frame, SampleEvery: -1}),
	)
})

var _ = Describe("Sweep", func() {
	job := func(name string, stepper dynamo.Stepper) sim.Job {
		opts := sim.DefaultOptions()
		opts.Stepper = stepper
		c := newController(physics.DefaultParams(), opts)
		return sim.Job{Name: name, Controller: c, Config: sim.RunConfig{Duration: 2, FrameDt: frame}}
	}

	It("runs every job and keeps their order", func() {
		jobs := []sim.Job{
			job("euler", integrators.NewEuler()),
			job("leapfrog", integrators.NewLeapfrog()),
			job("rk4", integrators.NewRK4()),
		}
		out, err := sim.Sweep(context.Background(), jobs)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(3))
		for i, o := range out {
			Expect(o.Name).To(Equal(jobs[i].Name))
			Expect(o.Result.Integrator).To(Equal(jobs[i].Name))
			Expect(o.Result.FramesTaken).To(Equal(120))
		}
		Expect(out[0].Result.DriftExceeded).To(BeTrue())
		Expect(out[1].Result.DriftExceeded).To(BeFalse())
	})

	It("matches a sequential run", func() {
		a, b := job("a", integrators.NewLeapfrog()), job("b", integrators.NewLeapfrog())
		out, err := sim.Sweep(context.Background(), []sim.Job{a})
		Expect(err).NotTo(HaveOccurred())
		seq, err := sim.Run(context.Background(), b.Controller, b.Config)
		Expect(err).NotTo(HaveOccurred())
		Expect(out[0].Result.States).To(Equal(seq.States))
	})

	It("rejects jobs that share a controller", func() {
		j := job("a", integrators.NewLeapfrog())
		dup := j
		dup.Name = "b"
		_, err := sim.Sweep(context.Background(), []sim.Job{j, dup})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})

	It("rejects a job without a controller", func() {
		_, err := sim.Sweep(context.Background(), []sim.Job{{Name: "empty"}})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})

	It("fails when one job has an invalid config", func() {
		bad := job("bad", integrators.NewLeapfrog())
		bad.Config.FrameDt = 0
		_, err := sim.Sweep(context.Background(), []sim.Job{job("ok", integrators.NewLeapfrog()), bad})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		Expect(err.Error()).To(ContainSubstring("bad"))
	})
})
