package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/san-kum/coupled/internal/dynamo"
	"github.com/san-kum/coupled/internal/integrators"
	"github.com/san-kum/coupled/internal/optim"
	"github.com/san-kum/coupled/internal/physics"
	"github.com/san-kum/coupled/internal/sim"
)

var (
	gridAxes  []string
	objective string
	target    float64
	showAll   bool
)

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune --grid k2=0.1:5:50 --objective beat --target 20",
		Short: "grid search over physical parameters",
		Args:  cobra.NoArgs,
		RunE:  tuneParams,
	}
	cmd.Flags().StringArrayVar(&gridAxes, "grid", nil, "axis as name=lo:hi:n or name=v1,v2 (repeatable)")
	cmd.Flags().StringVar(&objective, "objective", "beat", "objective (beat, symmetric, antisymmetric, drift)")
	cmd.Flags().Float64Var(&target, "target", 10, "target beat period (s) or mode frequency (Hz)")
	cmd.Flags().BoolVar(&showAll, "all", false, "print every grid point")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator for the drift objective ("+joinNames()+")")
	return cmd
}

func tuneParams(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(gridAxes) == 0 {
		return fmt.Errorf("at least one --grid axis is required")
	}

	axes := make([]optim.Axis, 0, len(gridAxes))
	for _, s := range gridAxes {
		a, err := optim.ParseAxis(s)
		if err != nil {
			return err
		}
		axes = append(axes, a)
	}
	g, err := optim.NewGridSearch(axes...)
	if err != nil {
		return err
	}

	var obj optim.Objective
	switch objective {
	case "beat":
		obj = optim.TargetBeatPeriod(target)
	case "symmetric", "antisymmetric":
		mode, _ := dynamo.ParseMode(objective)
		obj = optim.TargetFrequency(mode, target)
	case "drift":
		x0 := dynamo.State{X1: cfg.Init.X1 - cfg.Params.X1Ref, X2: cfg.Init.X2 - cfg.Params.X2Ref}
		if mode, _ := dynamo.ParseMode(cfg.Mode.Kind); mode != dynamo.ModeNone {
			x0, _ = physics.ModeState(mode, cfg.Mode.Amplitude)
		}
		obj = optim.EnergyDrift(x0, cfg.RunConfig(), func() sim.Options {
			s, _ := integrators.New(cfg.Integrator)
			return sim.Options{Stepper: s, SubSteps: cfg.SubSteps, EnergyTolerance: cfg.EnergyTolerance, Logger: logger}
		})
	default:
		return fmt.Errorf("unknown objective %q (beat, symmetric, antisymmetric, drift)", objective)
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Debug("grid search", "points", g.Size(), "objective", objective, "target", target)
	best, points, err := g.Search(ctx, cfg.PhysicsParams(), obj)
	if err != nil {
		return fmt.Errorf("grid search failed: %w", err)
	}

	if showAll {
		names := axisNames(axes)
		rows := [][]string{append(append([]string{}, names...), "score")}
		for _, p := range points {
			row := make([]string, 0, len(names)+1)
			for _, n := range names {
				row = append(row, fmt.Sprintf("%g", p.Values[n]))
			}
			if p.Err != nil {
				row = append(row, "rejected")
			} else {
				row = append(row, fmt.Sprintf("%.6g", p.Score))
			}
			rows = append(rows, row)
		}
		if err := printTable(rows); err != nil {
			return err
		}
		fmt.Println()
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("best of %d points", len(points))))
	for _, n := range axisNames(axes) {
		fmt.Println(labelStyle.Render(n) + valueStyle.Render(fmt.Sprintf("%g", best.Values[n])))
	}
	fmt.Println(labelStyle.Render("score") + goodStyle.Render(fmt.Sprintf("%.6g", best.Score)))
	return nil
}

func axisNames(axes []optim.Axis) []string {
	seen := make(map[string]bool, len(axes))
	names := make([]string, 0, len(axes))
	for _, a := range axes {
		if !seen[a.Name] {
			seen[a.Name] = true
			names = append(names, a.Name)
		}
	}
	sort.Strings(names)
	return names
}
