package main

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/coupled/internal/analysis"
	"github.com/san-kum/coupled/internal/config"
	"github.com/san-kum/coupled/internal/dynamo"
	"github.com/san-kum/coupled/internal/export"
	"github.com/san-kum/coupled/internal/metrics"
	"github.com/san-kum/coupled/internal/physics"
	"github.com/san-kum/coupled/internal/sim"
)

// stabilityBound is the displacement past which a sample counts as unstable.
const stabilityBound = 10.0

// loadConfig resolves --config, then --preset, then defaults, and applies
// any flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("substeps") {
		cfg.SubSteps = substeps
	}
	if flags.Changed("mode") {
		cfg.Mode.Kind = modeName
	}
	if flags.Changed("amplitude") {
		cfg.Mode.Amplitude = amplitude
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func newMetrics(p physics.Params, tolerance float64) []dynamo.Metric {
	drift := metrics.NewEnergyDrift(func(x dynamo.State) float64 {
		return physics.Energy(x, p)
	}, tolerance)
	return []dynamo.Metric{drift, metrics.NewStability(stabilityBound)}
}

func simulate(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	c, err := cfg.Controller(logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("starting run", "integrator", cfg.Integrator, "substeps", cfg.SubSteps, "duration", cfg.Duration)
	res, err := sim.Run(ctx, c, cfg.RunConfig(), newMetrics(cfg.PhysicsParams(), cfg.EnergyTolerance)...)
	if res != nil {
		for _, e := range res.Errors {
			logger.Warn("run diverged", "err", e)
		}
	}
	return res, err
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	res, err := simulate(ctx, cfg)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	switch format {
	case "table":
		printSummary(cfg, res)
		return nil
	case "csv", "json":
		return export.Write(os.Stdout, export.Format(format), export.NewData(cfg.PhysicsParams(), res))
	}
	return fmt.Errorf("unknown format %q (table, csv, json)", format)
}

func printSummary(cfg *config.Config, res *sim.Result) {
	final := res.Final()
	p := cfg.PhysicsParams()

	fmt.Println(titleStyle.Render("coupled oscillators"))
	row := func(label, value string) {
		fmt.Println(labelStyle.Render(label) + valueStyle.Render(value))
	}
	row("integrator", fmt.Sprintf("%s x%d", res.Integrator, res.SubSteps))
	row("masses", fmt.Sprintf("%g, %g kg", p.Mass1, p.Mass2))
	row("springs", fmt.Sprintf("k1=%g k2=%g k3=%g N/m", p.K1, p.K2, p.K3))
	row("frames", humanize.Comma(int64(res.FramesTaken)))
	row("time", fmt.Sprintf("%.3f s", res.Times[len(res.Times)-1]))
	x1, x2 := final.Positions()
	v1, v2 := final.Velocities()
	row("final x", fmt.Sprintf("%+.6f, %+.6f", x1, x2))
	row("final v", fmt.Sprintf("%+.6f, %+.6f", v1, v2))
	row("energy", fmt.Sprintf("%.6f J", physics.Energy(final, p)))
	row("E0/E", driftStyle(res.DriftExceeded).Render(fmt.Sprintf("%.6f", res.EnergyRatios[len(res.EnergyRatios)-1])))
	row("max drift", driftStyle(res.DriftExceeded).Render(fmt.Sprintf("%.3e", res.MaxDrift)))
	row("stability", fmt.Sprintf("%.3f", res.Metrics["stability"]))
	if len(res.Errors) > 0 {
		row("diverged", badStyle.Render(res.Errors[0].Error()))
	}
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = []string{"euler", "leapfrog", "rk4"}
	}

	jobs := make([]sim.Job, 0, len(names))
	for _, name := range names {
		variant := *cfg
		variant.Integrator = name
		c, err := variant.Controller(logger)
		if err != nil {
			return err
		}
		jobs = append(jobs, sim.Job{
			Name:       name,
			Controller: c,
			Config:     variant.RunConfig(),
			Metrics:    newMetrics(variant.PhysicsParams(), variant.EnergyTolerance),
		})
	}

	ctx, cancel := signalContext()
	defer cancel()
	outcomes, err := sim.Sweep(ctx, jobs)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("comparing integrators (duration=%.1fs, substeps=%d)", cfg.Duration, cfg.SubSteps)))
	rows := [][]string{{"integrator", "final E0/E", "max drift", "drift", "stability", "steps", "wall", "rate"}}
	for _, o := range outcomes {
		res := o.Result
		steps := res.FramesTaken * res.SubSteps
		rate := float64(steps) / o.Wall.Seconds()
		rows = append(rows, []string{
			o.Name,
			fmt.Sprintf("%.6f", res.EnergyRatios[len(res.EnergyRatios)-1]),
			fmt.Sprintf("%.2e", res.MaxDrift),
			driftLabel(res.DriftExceeded),
			fmt.Sprintf("%.3f", res.Metrics["stability"]),
			humanize.Comma(int64(steps)),
			o.Wall.Round(time.Microsecond).String(),
			humanize.SIWithDigits(rate, 1, "steps/s"),
		})
	}
	return printTable(rows)
}

func showModes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := cfg.PhysicsParams()
	modes, err := analysis.NormalModes(p)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Println(titleStyle.Render("normal modes"))
	rows := [][]string{{"mode", "shape", "omega (rad/s)", "f (Hz)", "period (s)", "measured f (Hz)"}}
	for _, m := range modes {
		measured := "-"
		if f, err := measureMode(ctx, cfg, m); err == nil {
			measured = fmt.Sprintf("%.4f", f)
		} else {
			logger.Debug("could not measure mode", "mode", m.Kind, "err", err)
		}
		rows = append(rows, []string{
			m.Kind.String(),
			fmt.Sprintf("(%+.3f, %+.3f)", m.Shape[0], m.Shape[1]),
			fmt.Sprintf("%.4f", m.Omega),
			fmt.Sprintf("%.4f", m.Frequency),
			fmt.Sprintf("%.4f", m.Period),
			measured,
		})
	}
	if err := printTable(rows); err != nil {
		return err
	}

	if beat := analysis.BeatPeriod(modes); !math.IsInf(beat, 1) {
		fmt.Println(labelStyle.Render("beat period") + valueStyle.Render(fmt.Sprintf("%.3f s", beat)))
	}
	return nil
}

// measureMode runs the system from the mode's own shape and returns the
// dominant frequency of x1, or of x2 when x1 does not move.
func measureMode(ctx context.Context, cfg *config.Config, m analysis.NormalMode) (float64, error) {
	c, err := cfg.Controller(logger)
	if err != nil {
		return 0, err
	}
	amp := cfg.Mode.Amplitude
	if amp == 0 {
		amp = config.DefaultAmplitude
	}
	if err := c.ApplyExternalOverride(amp*m.Shape[0], amp*m.Shape[1]); err != nil {
		return 0, err
	}

	rc := cfg.RunConfig()
	// Resolve the mode to within a few percent: at least 20 periods.
	rc.Duration = math.Max(rc.Duration, 20*m.Period)
	if math.IsInf(rc.Duration, 0) {
		return 0, fmt.Errorf("mode %s does not oscillate", m.Kind)
	}
	res, err := sim.Run(ctx, c, rc)
	if err != nil {
		return 0, err
	}
	series := analysis.X1
	if math.Abs(m.Shape[0]) < 1e-9 {
		series = analysis.X2
	}
	return analysis.DominantFrequency(res.Series(series), rc.FrameDt*float64(max(rc.SampleEvery, 1)))
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	res, err := simulate(ctx, cfg)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	fmt.Printf("integrator: %s x%d\n", res.Integrator, res.SubSteps)
	fmt.Printf("samples: %s\n\n", humanize.Comma(int64(len(res.States))))

	graph := asciigraph.PlotMany(
		[][]float64{res.Series(analysis.X1), res.Series(analysis.X2)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta),
		asciigraph.Caption("x1 (cyan), x2 (magenta) vs time"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(res.EnergyRatios,
		asciigraph.Height(height/2+1),
		asciigraph.Width(width),
		asciigraph.Caption("energy ratio E0/E"),
	)
	fmt.Println(graph)

	if phase {
		fmt.Println()
		fmt.Println(headerStyle.Render("x1 vs x2"))
		fmt.Print(analysis.NewPhasePortrait(res.States, analysis.X1, analysis.X2).ASCII(width/2, height*2))
	}
	if poincare {
		section := analysis.NewPoincareSection(res.States, analysis.X1, 0, analysis.X2, analysis.V2)
		fmt.Println()
		fmt.Println(headerStyle.Render("(x2, v2) at x1 = 0"))
		if len(section.Points) == 0 {
			fmt.Println("no crossings detected")
		} else {
			fmt.Print(section.ASCII(width/2, height*2))
		}
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		mode := cfg.Mode.Kind
		if mode == "" {
			mode = "-"
		}
		fmt.Printf("  %-14s integrator=%-8s mode=%-13s k2=%-4g m2=%-4g duration=%gs\n",
			name, cfg.Integrator, mode, cfg.Params.K2, cfg.Params.Mass2, cfg.Duration)
	}
	return nil
}

// printTable aligns rows with a tabwriter and styles the header line once
// the columns are laid out, so escape codes do not skew the widths.
func printTable(rows [][]string) error {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for i, l := range lines {
		if i == 0 {
			l = headerStyle.Render(l)
		}
		fmt.Println(l)
	}
	return nil
}
