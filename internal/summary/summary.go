// Package summary derives the aggregate views a presentation layer needs from
// a run's History: the infected-over-time series, per-state counts, the
// final-state partition, and headline figures.
package summary

import (
	"github.com/cxd309/contagion-engine/internal/agent"
	"github.com/cxd309/contagion-engine/internal/engine"
)

// StateCounts is the number of agents in each health state at one tick.
type StateCounts struct {
	Healthy   int `json:"healthy"`
	Infected  int `json:"infected"`
	Immunized int `json:"immunized"`
}

// Total returns the number of agents counted.
func (c StateCounts) Total() int { return c.Healthy + c.Infected + c.Immunized }

// Counts tallies the states in one snapshot.
func Counts(s agent.Snapshot) StateCounts {
	var c StateCounts
	for _, r := range s {
		switch r.State {
		case agent.StateHealthy:
			c.Healthy++
		case agent.StateInfected:
			c.Infected++
		case agent.StateImmunized:
			c.Immunized++
		}
	}
	return c
}

// InfectedSeries returns the number of infected agents in each snapshot.
func InfectedSeries(h engine.History) []int {
	out := make([]int, len(h.Snapshots))
	for t, s := range h.Snapshots {
		out[t] = s.Count(agent.StateInfected)
	}
	return out
}

// StateSeries returns the per-state counts of each snapshot.
func StateSeries(h engine.History) []StateCounts {
	out := make([]StateCounts, len(h.Snapshots))
	for t, s := range h.Snapshots {
		out[t] = Counts(s)
	}
	return out
}

// Point is an agent position in a partition.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Partition groups the agents of s by health state. Every state is present
// in the result, possibly with no points.
func Partition(s agent.Snapshot) map[agent.HealthState][]Point {
	out := make(map[agent.HealthState][]Point, len(agent.States))
	for _, st := range agent.States {
		out[st] = []Point{}
	}
	for _, r := range s {
		out[r.State] = append(out[r.State], Point{X: r.X, Y: r.Y})
	}
	return out
}

// Summary holds the headline figures of a run.
type Summary struct {
	RunID     string `json:"run_id"`
	Steps     int    `json:"steps"`
	PeakTick  int    `json:"peak_tick"`
	PeakCount int    `json:"peak_infected"`
	// EverInfected counts agents seen infected in at least one snapshot.
	EverInfected int         `json:"ever_infected"`
	AttackRate   float64     `json:"attack_rate"` // EverInfected / population
	Initial      StateCounts `json:"initial"`
	Final        StateCounts `json:"final"`
}

// Summarize computes the headline figures of h. The zero Summary is
// returned for an empty History.
func Summarize(h engine.History) Summary {
	sum := Summary{RunID: h.Meta.RunID, Steps: len(h.Snapshots)}
	if len(h.Snapshots) == 0 {
		return sum
	}

	population := len(h.Snapshots[0])
	ever := make([]bool, population)
	for t, s := range h.Snapshots {
		infected := 0
		for i, r := range s {
			if r.State == agent.StateInfected {
				infected++
				ever[i] = true
			}
		}
		if infected > sum.PeakCount {
			sum.PeakCount, sum.PeakTick = infected, t
		}
	}
	for _, e := range ever {
		if e {
			sum.EverInfected++
		}
	}
	if population > 0 {
		sum.AttackRate = float64(sum.EverInfected) / float64(population)
	}
	sum.Initial = Counts(h.Snapshots[0])
	sum.Final = Counts(h.Snapshots[len(h.Snapshots)-1])
	return sum
}
