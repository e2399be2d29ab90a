// Package engine implements the contagion simulation loop.
//
// A run starts from an initialized population and advances in fixed ticks.
// Each tick has three parts:
//
//  1. Record - the current population is copied into the History.
//  2. Motion - every agent moves by its velocity and reflects off the walls.
//  3. Infection - agents infected at the start of the tick may infect healthy
//     neighbours within the infection radius, then their infection timers
//     advance and long-infected agents become immunized.
//
// Because the record comes first, Snapshots[0] is exactly the initial
// population.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/cxd309/contagion-engine/internal/agent"
	"github.com/cxd309/contagion-engine/internal/infection"
	"github.com/cxd309/contagion-engine/internal/kinematics"
	"github.com/cxd309/contagion-engine/internal/rng"
)

// ErrAlreadyRun is returned when Run is called a second time on a Simulation.
var ErrAlreadyRun = errors.New("simulation already run")

// Simulation is the state of one run. It is not safe for concurrent use and
// can only be run once.
type Simulation struct {
	cfg       SimulationConfig
	runID     string
	pop       agent.Population
	motion    kinematics.MotionModel
	infection infection.Updater
	tickSrc   *rng.Source
	warnings  []DegenerateRunWarning
	logger    *slog.Logger
	tracer    trace.Tracer
	curTick   int
	ran       bool
}

// Option customises a Simulation.
type Option func(*options)

type options struct {
	logger *slog.Logger
	tracer trace.Tracer
	limits Limits
}

// WithLogger sets the logger. A nil logger means slog.Default().
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithTracer sets the tracer used for run spans.
func WithTracer(t trace.Tracer) Option { return func(o *options) { o.tracer = t } }

// WithLimits rejects configurations larger than l.
func WithLimits(l Limits) Option { return func(o *options) { o.limits = l } }

// New validates cfg and builds the initial population. cfg is used as given;
// start from DefaultSimulationConfig to get the optional fields filled in.
//
// The seed is resolved once: the initializer and the per-tick infection draws
// use two sources seeded with the same value, so a seed reproduces the whole run.
func New(cfg SimulationConfig, opts ...Option) (*Simulation, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = defaultTracer()
	}

	if cfg.MotionModel == "" {
		cfg.MotionModel = kinematics.ReflectingModelName
	}
	if err := cfg.Validate(); err != nil {
		runsTotal.WithLabelValues(outcomeInvalidConfig).Inc()
		return nil, err
	}
	if err := o.limits.Check(cfg); err != nil {
		runsTotal.WithLabelValues(outcomeInvalidConfig).Inc()
		return nil, err
	}

	motion, err := kinematics.NewMotionModel(cfg.MotionModel, cfg.BoxSize)
	if err != nil {
		runsTotal.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("building motion model: %w", err)
	}

	initSrc := rng.New(cfg.Seed)
	seed := initSrc.Seed()
	cfg.Seed = &seed

	pop, report := agent.Initialize(agent.InitParams{
		Population:        cfg.Population,
		InitInfected:      cfg.InitInfected,
		BoxSize:           cfg.BoxSize,
		ImmunizedFraction: cfg.ImmunizedFraction,
	}, initSrc)

	runID, err := deriveRunID(cfg)
	if err != nil {
		runsTotal.WithLabelValues(outcomeError).Inc()
		return nil, err
	}
	sim := &Simulation{
		cfg:    cfg,
		runID:  runID,
		pop:    pop,
		motion: motion,
		infection: infection.Updater{
			Radius:       cfg.InfectionRadius,
			Probability:  cfg.InfectionProbability,
			RecoveryTime: cfg.RecoveryTime,
		},
		tickSrc:  rng.New(&seed),
		warnings: degenerateWarnings(cfg, report),
		logger:   o.logger.With(slog.String("run_id", runID)),
		tracer:   o.tracer,
	}
	for _, w := range sim.warnings {
		sim.logger.Warn("degenerate run", slog.String("kind", string(w.Kind)), slog.String("detail", w.Message))
	}
	return sim, nil
}

// runNamespace scopes the name-based run IDs.
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/cxd309/contagion-engine/runs"))

// deriveRunID returns a version 5 UUID of the effective config, seed included.
func deriveRunID(cfg SimulationConfig) (string, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("deriving run ID: %w", err)
	}
	return uuid.NewSHA1(runNamespace, b).String(), nil
}

// degenerateWarnings inspects the initial assignment for reduced or inert runs.
func degenerateWarnings(cfg SimulationConfig, r agent.InitReport) []DegenerateRunWarning {
	var out []DegenerateRunWarning
	if r.Infected < r.Requested {
		out = append(out, DegenerateRunWarning{
			Kind: WarningInfectedClamped,
			Message: fmt.Sprintf("requested %d initially infected but only %d non-immunized agents were available",
				r.Requested, r.Infected),
		})
	}
	if r.Infected == 0 {
		out = append(out, DegenerateRunWarning{
			Kind:    WarningNoInfected,
			Message: "no agent is infected at tick 0",
		})
	}
	if r.Infectable(cfg.Population) == 0 {
		out = append(out, DegenerateRunWarning{
			Kind:    WarningNoSusceptible,
			Message: fmt.Sprintf("no healthy agents remain after immunizing %d and infecting %d", r.Immunized, r.Infected),
		})
	}
	return out
}

// Config returns the effective configuration, including the resolved seed.
func (s *Simulation) Config() SimulationConfig { return s.cfg }

// Warnings returns the degenerate-run warnings found while initializing.
func (s *Simulation) Warnings() []DegenerateRunWarning { return s.warnings }

// runTotals accumulates TickStats over a run.
type runTotals struct {
	Ticks         int
	NewInfections int
	Recoveries    int
}

// Run executes every tick and returns the History. ctx is checked between
// ticks; a cancelled run returns ctx.Err() and no History.
func (s *Simulation) Run(ctx context.Context) (History, error) {
	if s.ran {
		return History{}, ErrAlreadyRun
	}
	s.ran = true

	ctx, span := s.startRunSpan(ctx)
	start := time.Now()
	s.logger.InfoContext(ctx, "simulation started",
		slog.Int("population", s.cfg.Population),
		slog.Int("steps", s.cfg.Steps),
		slog.Int64("seed", *s.cfg.Seed),
	)

	history := History{
		Meta:      SimulationMeta{RunID: s.runID, Config: s.cfg},
		Snapshots: make([]agent.Snapshot, 0, s.cfg.Steps),
		Warnings:  s.warnings,
	}
	var totals runTotals
	for s.curTick < s.cfg.Steps {
		if err := ctx.Err(); err != nil {
			runsTotal.WithLabelValues(outcomeCancelled).Inc()
			endRunSpan(span, totals, err)
			s.logger.WarnContext(ctx, "simulation cancelled", slog.Int("tick", s.curTick), slog.Any("error", err))
			return History{}, fmt.Errorf("at tick %d: %w", s.curTick, err)
		}
		history.Snapshots = append(history.Snapshots, s.pop.Snapshot())
		stats := s.step()
		totals.Ticks++
		totals.NewInfections += stats.NewInfections
		totals.Recoveries += stats.Recoveries
	}

	elapsed := time.Since(start)
	runsTotal.WithLabelValues(outcomeOK).Inc()
	runDuration.Observe(elapsed.Seconds())
	endRunSpan(span, totals, nil)
	s.logger.InfoContext(ctx, "simulation completed",
		slog.Int("ticks", totals.Ticks),
		slog.Int("new_infections", totals.NewInfections),
		slog.Int("recoveries", totals.Recoveries),
		slog.Duration("elapsed", elapsed),
	)
	return history, nil
}

// step advances the population by one tick.
func (s *Simulation) step() infection.TickStats {
	kinematics.Advance(s.pop, s.motion, s.cfg.Timestep)
	stats := s.infection.Update(s.pop, s.tickSrc)

	ticksTotal.Inc()
	newInfectionsTotal.Add(float64(stats.NewInfections))
	recoveriesTotal.Add(float64(stats.Recoveries))
	s.logger.Debug("tick",
		slog.Int("tick", s.curTick),
		slog.Int("contacts", stats.Contacts),
		slog.Int("new_infections", stats.NewInfections),
		slog.Int("recoveries", stats.Recoveries),
	)
	s.curTick++
	return stats
}

// RunSimulation validates cfg, runs it to completion and returns the History.
// Each call is independent, and a seeded cfg always yields the same History.
func RunSimulation(cfg SimulationConfig, opts ...Option) (History, error) {
	sim, err := New(cfg, opts...)
	if err != nil {
		return History{}, err
	}
	return sim.Run(context.Background())
}

// RunJSON is the entry point shared by the CLI stdin mode and the WASM build.
// It accepts a JSON-encoded SimulationConfig, runs it, and returns a
// JSON-encoded History. Omitted fields take their defaults.
func RunJSON(jsonInput string, opts ...Option) (string, error) {
	var cfg SimulationConfig
	if err := json.Unmarshal([]byte(jsonInput), &cfg); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	history, err := RunSimulation(cfg, opts...)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
