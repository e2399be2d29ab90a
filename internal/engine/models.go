package engine

import (
	"encoding/json"

	"github.com/cxd309/contagion-engine/internal/agent"
	"github.com/cxd309/contagion-engine/internal/infection"
	"github.com/cxd309/contagion-engine/internal/kinematics"
)

// Defaults used by DefaultSimulationConfig.
const (
	DefaultBoxSize      = 50.0
	DefaultInitInfected = 1
)

// SimulationConfig is the JSON/YAML-serialisable input to a run.
//
// Start from DefaultSimulationConfig; every field is validated as given, so
// an explicit zero box_size, init_infected, recovery_time or timestep is
// rejected. Fields omitted from a JSON document keep their defaults.
type SimulationConfig struct {
	Population           int     `json:"population" yaml:"population" validate:"gt=0"`
	InfectionRadius      float64 `json:"infection_radius" yaml:"infection_radius" validate:"finite,gte=0"`
	InfectionProbability float64 `json:"infection_probability" yaml:"infection_probability" validate:"gte=0,lte=1"`
	Steps                int     `json:"steps" yaml:"steps" validate:"gt=0"`
	BoxSize              float64 `json:"box_size" yaml:"box_size" validate:"finite,gt=0"`
	InitInfected         int     `json:"init_infected" yaml:"init_infected" validate:"gt=0"`
	ImmunizedFraction    float64 `json:"immunized_fraction" yaml:"immunized_fraction" validate:"gte=0,lt=1"`
	RecoveryTime         int     `json:"recovery_time" yaml:"recovery_time" validate:"gt=0"` // ticks
	Timestep             float64 `json:"timestep" yaml:"timestep" validate:"finite,gt=0"`
	MotionModel          string  `json:"motion_model,omitempty" yaml:"motion_model,omitempty" validate:"omitempty,oneof=reflect"`
	// Seed makes the run reproducible. Nil means a seed is picked from the
	// clock; the seed actually used is reported in the History.
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultSimulationConfig returns a config with every optional field set.
// Population, Steps and the infection parameters must still be filled in.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		BoxSize:      DefaultBoxSize,
		InitInfected: DefaultInitInfected,
		RecoveryTime: infection.DefaultRecoveryTime,
		Timestep:     kinematics.DefaultTimestep,
		MotionModel:  kinematics.ReflectingModelName,
	}
}

// UnmarshalJSON decodes onto DefaultSimulationConfig, so omitted fields take
// their defaults while fields present in data, zero included, are kept.
func (c *SimulationConfig) UnmarshalJSON(data []byte) error {
	type plain SimulationConfig
	p := plain(DefaultSimulationConfig())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = SimulationConfig(p)
	return nil
}

// Limits bounds the size of a run. Zero fields are unbounded.
type Limits struct {
	MaxPopulation int `json:"max_population" yaml:"max_population" validate:"gte=0"`
	MaxSteps      int `json:"max_steps" yaml:"max_steps" validate:"gte=0"`
}

// SimulationMeta holds the identity and effective parameters of a run.
type SimulationMeta struct {
	// RunID is derived from Config, so identical runs share an ID.
	RunID string `json:"run_id"`
	// Config is the configuration after defaults, with Seed always set.
	Config SimulationConfig `json:"config"`
}

// WarningKind classifies a DegenerateRunWarning.
type WarningKind string

const (
	// WarningInfectedClamped: fewer agents were infected than requested.
	WarningInfectedClamped WarningKind = "infected_clamped"
	// WarningNoInfected: nobody is infected at tick 0, so nothing will spread.
	WarningNoInfected WarningKind = "no_infected"
	// WarningNoSusceptible: every agent is immunized or infected at tick 0.
	WarningNoSusceptible WarningKind = "no_susceptible"
)

// DegenerateRunWarning is a non-fatal note that the run is epidemiologically
// reduced or inert. The run still completes.
type DegenerateRunWarning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// History is the complete output of a run: one Snapshot per step, where
// Snapshots[t] is the state before tick t's update.
type History struct {
	Meta      SimulationMeta         `json:"simulation_meta"`
	Snapshots []agent.Snapshot       `json:"snapshots"`
	Warnings  []DegenerateRunWarning `json:"warnings,omitempty"`
}

// Len returns the number of recorded snapshots.
func (h History) Len() int { return len(h.Snapshots) }
