package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/coupled/internal/integrators"
)

var (
	configFile string
	preset     string
	integrator string
	duration   float64
	substeps   int
	modeName   string
	amplitude  float64
	format     string
	verbose    bool
	// plot
	height   int
	width    int
	phase    bool
	poincare bool
)

var logger = slog.Default()

func main() {
	rootCmd := &cobra.Command{
		Use:          "coupled",
		Short:        "coupled oscillator simulation engine",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().Float64Var(&duration, "time", 0, "duration in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&substeps, "substeps", 0, "integration steps per frame (overrides config)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&integrator, "integrator", "", "integrator ("+joinNames()+")")
	runCmd.Flags().StringVar(&modeName, "mode", "", "start in a normal mode (symmetric, antisymmetric)")
	runCmd.Flags().Float64Var(&amplitude, "amplitude", 1.0, "normal mode amplitude")
	runCmd.Flags().StringVar(&format, "format", "table", "output format (table, csv, json)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same system",
		RunE:  compareIntegrators,
	}

	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "analytic and measured normal-mode frequencies",
		Args:  cobra.NoArgs,
		RunE:  showModes,
	}

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot displacements and energy ratio",
		Args:  cobra.NoArgs,
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&integrator, "integrator", "", "integrator ("+joinNames()+")")
	plotCmd.Flags().StringVar(&modeName, "mode", "", "start in a normal mode (symmetric, antisymmetric)")
	plotCmd.Flags().Float64Var(&amplitude, "amplitude", 1.0, "normal mode amplitude")
	plotCmd.Flags().IntVar(&height, "height", 10, "graph height")
	plotCmd.Flags().IntVar(&width, "width", 80, "graph width")
	plotCmd.Flags().BoolVar(&phase, "phase", false, "also draw x1 against x2")
	plotCmd.Flags().BoolVar(&poincare, "poincare", false, "also draw (x2, v2) at upward zero crossings of x1")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, compareCmd, modesCmd, plotCmd, presetsCmd, newTuneCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func joinNames() string {
	return strings.Join(integrators.Names(), ", ")
}
