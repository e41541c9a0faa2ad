package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/mfalk/ellipsim/internal/config"
	"github.com/mfalk/ellipsim/internal/engine"
	"github.com/mfalk/ellipsim/internal/forcefield"
	"github.com/mfalk/ellipsim/internal/kernels"
	"github.com/mfalk/ellipsim/internal/metrics"
	"github.com/mfalk/ellipsim/internal/store"
	"github.com/mfalk/ellipsim/internal/tui"
)

var (
	dt      float64
	steps   int
	groups  int
	outFile string
	fps     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ellipsim",
		Short: "anisotropic-particle simulation lab",
	}

	validateCmd := &cobra.Command{
		Use:   "validate [config.yaml]",
		Short: "validate a force-field description",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	runCmd := &cobra.Command{
		Use:   "run [config.yaml]",
		Short: "run a simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	runCmd.Flags().IntVar(&steps, "steps", 0, "step count override")
	runCmd.Flags().IntVar(&groups, "groups", engine.AllGroups, "force-group bitmask")
	runCmd.Flags().StringVar(&outFile, "out", "", "export energy trace to json")

	liveCmd := &cobra.Command{
		Use:   "live [config.yaml]",
		Short: "run with a live energy view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	liveCmd.Flags().IntVar(&steps, "steps", 0, "step count override")
	liveCmd.Flags().IntVar(&groups, "groups", engine.AllGroups, "force-group bitmask")
	liveCmd.Flags().IntVar(&fps, "fps", 30, "steps per second")

	rootCmd.AddCommand(validateCmd, runCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	force, err := cfg.BuildForce()
	if err != nil {
		return err
	}
	ctx, err := cfg.BuildContext(kernels.AutoSelect())
	if err != nil {
		return err
	}
	if v := forcefield.Validate(force, ctx.NumParticles(), ctx.PeriodicBoxVectors()); v != nil {
		return fmt.Errorf("%s: %w", v.Kind, v)
	}
	fmt.Printf("ok: %d particles, %d exceptions, method %s\n",
		force.NumParticles(), force.NumExceptions(), force.Method)
	return nil
}

func buildEngine(path string) (*engine.Engine, *config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	ctx, err := cfg.BuildContext(kernels.AutoSelect())
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Setup(); err != nil {
		return nil, nil, err
	}
	if dt > 0 {
		cfg.Run.Dt = dt
	}
	if steps > 0 {
		cfg.Run.Steps = steps
	}
	return engine.New(ctx), cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	eng, cfg, err := buildEngine(args[0])
	if err != nil {
		return err
	}

	drift := metrics.NewEnergyDrift(eng)
	eng.AddObserver(drift)

	runCfg := engine.Config{Dt: cfg.Run.Dt, Steps: cfg.Run.Steps, Groups: groups}
	result, err := eng.Run(context.Background(), runCfg)
	if err != nil {
		return err
	}

	if len(result.Energies) > 1 {
		fmt.Println(asciigraph.Plot(result.Energies,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("potential energy")))
	}
	fmt.Printf("steps %d  dt %g  final energy %.6f  max drift %.3e  platform %s\n",
		result.Steps, cfg.Run.Dt, result.Energies[len(result.Energies)-1],
		drift.Value(), kernels.AutoSelect().Name())

	if outFile != "" {
		if err := store.ExportJSON(outFile, kernels.AutoSelect().Name(), cfg.Run.Dt, drift.Value(), result); err != nil {
			return err
		}
		fmt.Println("exported", outFile)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	eng, cfg, err := buildEngine(args[0])
	if err != nil {
		return err
	}
	m := tui.NewModel(eng, cfg.Run.Dt, groups, cfg.Run.Steps, fps)
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}
