package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cxd309/contagion-engine/internal/config"
	"github.com/cxd309/contagion-engine/internal/engine"
	"github.com/cxd309/contagion-engine/internal/server"
	"github.com/cxd309/contagion-engine/internal/summary"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string
	logFormat  string
	pretty     bool
	seeds      []int64

	serviceCfg config.Config
	logger     *slog.Logger

	// Simulation flag values; applied only when set on the command line.
	flagCfg  engine.SimulationConfig
	flagSeed int64

	rootCmd = &cobra.Command{
		Use:           "contagion",
		Short:         "Agent-based epidemic simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			serviceCfg = cfg
			logger = cfg.Log.NewLogger(os.Stderr)
			slog.SetDefault(logger)
			return nil
		},
	}

	runCmd = &cobra.Command{
		Use:   "run [config file]",
		Short: "Run one simulation and print the full history as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}

	summaryCmd = &cobra.Command{
		Use:   "summary [config file]",
		Short: "Run one simulation and print the infected series and headline figures",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSummary,
	}

	batchCmd = &cobra.Command{
		Use:   "batch [config file]",
		Short: "Run the same configuration once per seed and print each summary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBatch,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "service config YAML file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	for _, cmd := range []*cobra.Command{runCmd, summaryCmd, batchCmd} {
		addSimulationFlags(cmd)
		cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	}
	batchCmd.Flags().Int64SliceVar(&seeds, "seeds", []int64{1, 2, 3}, "seeds to run")

	rootCmd.AddCommand(runCmd, summaryCmd, batchCmd, serveCmd)
}

func addSimulationFlags(cmd *cobra.Command) {
	d := engine.DefaultSimulationConfig()
	f := cmd.Flags()
	f.IntVar(&flagCfg.Population, "population", 50, "number of agents")
	f.Float64Var(&flagCfg.InfectionRadius, "infection-radius", 1.0, "transmission distance")
	f.Float64Var(&flagCfg.InfectionProbability, "infection-probability", 0.2, "transmission probability per contact")
	f.IntVar(&flagCfg.Steps, "steps", 200, "number of snapshots to record")
	f.Float64Var(&flagCfg.BoxSize, "box-size", d.BoxSize, "side length of the square region")
	f.IntVar(&flagCfg.InitInfected, "init-infected", d.InitInfected, "initially infected agents")
	f.Float64Var(&flagCfg.ImmunizedFraction, "immunized-fraction", d.ImmunizedFraction, "fraction of agents immunized at tick 0")
	f.IntVar(&flagCfg.RecoveryTime, "recovery-time", d.RecoveryTime, "ticks until an infected agent is immunized")
	f.Float64Var(&flagCfg.Timestep, "timestep", d.Timestep, "tick length")
	f.StringVar(&flagCfg.MotionModel, "motion-model", d.MotionModel, "agent motion model")
	f.Int64Var(&flagSeed, "seed", 0, "random seed (omit for a clock seed)")
}

// loadSimulationConfig reads the config from args[0], stdin (when piped), or
// flags alone, then applies explicitly set flags on top.
func loadSimulationConfig(cmd *cobra.Command, args []string) (engine.SimulationConfig, error) {
	var (
		cfg engine.SimulationConfig
		err error
	)
	switch {
	case len(args) == 1:
		cfg, err = config.LoadSimulation(args[0])
	case stdinIsPiped():
		var data []byte
		data, err = io.ReadAll(os.Stdin)
		if err == nil {
			cfg, err = config.ParseSimulation(data, ".json")
		}
	default:
		cfg = flagCfg
		if cmd.Flags().Changed("seed") {
			cfg.Seed = &flagSeed
		}
		return cfg, nil
	}
	if err != nil {
		return engine.SimulationConfig{}, fmt.Errorf("error reading input: %w", err)
	}

	f := cmd.Flags()
	overrides := []struct {
		name  string
		apply func()
	}{
		{"population", func() { cfg.Population = flagCfg.Population }},
		{"infection-radius", func() { cfg.InfectionRadius = flagCfg.InfectionRadius }},
		{"infection-probability", func() { cfg.InfectionProbability = flagCfg.InfectionProbability }},
		{"steps", func() { cfg.Steps = flagCfg.Steps }},
		{"box-size", func() { cfg.BoxSize = flagCfg.BoxSize }},
		{"init-infected", func() { cfg.InitInfected = flagCfg.InitInfected }},
		{"immunized-fraction", func() { cfg.ImmunizedFraction = flagCfg.ImmunizedFraction }},
		{"recovery-time", func() { cfg.RecoveryTime = flagCfg.RecoveryTime }},
		{"timestep", func() { cfg.Timestep = flagCfg.Timestep }},
		{"motion-model", func() { cfg.MotionModel = flagCfg.MotionModel }},
		{"seed", func() { cfg.Seed = &flagSeed }},
	}
	for _, o := range overrides {
		if f.Changed(o.name) {
			o.apply()
		}
	}
	return cfg, nil
}

func stdinIsPiped() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice == 0
}

func engineOptions() []engine.Option {
	return []engine.Option{engine.WithLogger(logger), engine.WithLimits(serviceCfg.Limits)}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadSimulationConfig(cmd, args)
	if err != nil {
		return err
	}
	sim, err := engine.New(cfg, engineOptions()...)
	if err != nil {
		return fmt.Errorf("simulation error: %w", err)
	}
	history, err := sim.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("simulation error: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), history)
}

// summaryOutput is printed by the summary command.
type summaryOutput struct {
	Summary        summary.Summary               `json:"summary"`
	InfectedSeries []int                         `json:"infected_series"`
	Warnings       []engine.DegenerateRunWarning `json:"warnings,omitempty"`
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadSimulationConfig(cmd, args)
	if err != nil {
		return err
	}
	sim, err := engine.New(cfg, engineOptions()...)
	if err != nil {
		return fmt.Errorf("simulation error: %w", err)
	}
	history, err := sim.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("simulation error: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), summaryOutput{
		Summary:        summary.Summarize(history),
		InfectedSeries: summary.InfectedSeries(history),
		Warnings:       history.Warnings,
	})
}

func runBatch(cmd *cobra.Command, args []string) error {
	base, err := loadSimulationConfig(cmd, args)
	if err != nil {
		return err
	}
	cfgs := make([]engine.SimulationConfig, len(seeds))
	for i := range seeds {
		cfgs[i] = base
		cfgs[i].Seed = &seeds[i]
	}
	histories, err := engine.RunBatch(cmd.Context(), cfgs, serviceCfg.Server.BatchConcurrency, engineOptions()...)
	if err != nil {
		return fmt.Errorf("batch error: %w", err)
	}
	out := make([]summary.Summary, len(histories))
	for i, h := range histories {
		out[i] = summary.Summarize(h)
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(ctx, serviceCfg.Tracing, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	return server.Serve(ctx, serviceCfg, logger)
}
