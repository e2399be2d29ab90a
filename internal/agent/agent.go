// Package agent defines the simulated individuals, the population that holds
// them, and the point-in-time snapshots recorded by the engine.
package agent

import "fmt"

// HealthState describes where an agent is in the infection lifecycle.
type HealthState string

const (
	StateHealthy   HealthState = "healthy"
	StateInfected  HealthState = "infected"
	StateImmunized HealthState = "immunized" // terminal
)

// States lists every HealthState in code order.
var States = []HealthState{StateHealthy, StateInfected, StateImmunized}

// Code returns the numeric encoding of the state: 0 healthy, 1 infected, 2 immunized.
func (h HealthState) Code() int {
	switch h {
	case StateHealthy:
		return 0
	case StateInfected:
		return 1
	case StateImmunized:
		return 2
	default:
		return -1
	}
}

// Valid reports whether h is one of the three known states.
func (h HealthState) Valid() bool { return h.Code() >= 0 }

// Vec2 is a 2D vector in box units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Agent is one simulated individual.
type Agent struct {
	Position Vec2        `json:"position"`
	Velocity Vec2        `json:"velocity"` // box units per tick
	State    HealthState `json:"state"`
	// InfectionTimer counts ticks spent infected. It is 0 whenever the agent
	// is not infected.
	InfectionTimer int `json:"infection_timer"`
}

// Infect marks the agent infected and restarts its timer.
func (a *Agent) Infect() {
	a.State = StateInfected
	a.InfectionTimer = 0
}

// AdvanceInfection ticks the infection timer once and immunizes the agent when
// the timer reaches recoveryTime. It reports whether the agent recovered.
func (a *Agent) AdvanceInfection(recoveryTime int) bool {
	a.InfectionTimer++
	if a.InfectionTimer >= recoveryTime {
		a.State = StateImmunized
		a.InfectionTimer = 0
		return true
	}
	return false
}

// Population is the ordered set of agents in one run. An agent's identity is
// its index, which never changes during the run.
type Population []Agent

// Indices returns the indices of all agents currently in state, in index order.
func (p Population) Indices(state HealthState) []int {
	var out []int
	for i := range p {
		if p[i].State == state {
			out = append(out, i)
		}
	}
	return out
}

// Count returns the number of agents currently in state.
func (p Population) Count(state HealthState) int {
	n := 0
	for i := range p {
		if p[i].State == state {
			n++
		}
	}
	return n
}

// Record is one agent's entry in a Snapshot.
type Record struct {
	X              float64     `json:"x"`
	Y              float64     `json:"y"`
	State          HealthState `json:"state"`
	InfectionTimer int         `json:"infection_timer"`
}

// Snapshot is an immutable copy of every agent's state at one tick boundary.
type Snapshot []Record

// Snapshot copies the current state of the population.
func (p Population) Snapshot() Snapshot {
	s := make(Snapshot, len(p))
	for i, a := range p {
		s[i] = Record{
			X:              a.Position.X,
			Y:              a.Position.Y,
			State:          a.State,
			InfectionTimer: a.InfectionTimer,
		}
	}
	return s
}

// Count returns the number of records in state.
func (s Snapshot) Count(state HealthState) int {
	n := 0
	for _, r := range s {
		if r.State == state {
			n++
		}
	}
	return n
}

// UnmarshalText rejects unknown state names.
func (h *HealthState) UnmarshalText(b []byte) error {
	v := HealthState(b)
	if !v.Valid() {
		return fmt.Errorf("unknown health state %q", string(b))
	}
	*h = v
	return nil
}
