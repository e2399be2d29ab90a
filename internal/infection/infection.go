// Package infection implements the per-tick proximity transmission and
// recovery update.
package infection

import (
	"math"

	"github.com/cxd309/contagion-engine/internal/agent"
	"github.com/cxd309/contagion-engine/internal/rng"
)

// DefaultRecoveryTime is the number of ticks an agent stays infected when no
// recovery time is configured.
const DefaultRecoveryTime = 50

// Updater holds the transmission parameters for one run.
type Updater struct {
	Radius       float64 // transmission happens strictly inside this distance
	Probability  float64 // chance of transmission per in-range contact
	RecoveryTime int     // ticks until an infected agent becomes immunized
}

// TickStats summarises what one Update changed.
type TickStats struct {
	// Contacts is the number of in-range infected/healthy pairs that consumed a draw.
	Contacts      int `json:"contacts"`
	NewInfections int `json:"new_infections"`
	Recoveries    int `json:"recoveries"`
}

// Update advances infections in pop by one tick.
//
// Sources and targets are the agents infected and healthy at the start of the
// tick, so an agent infected during this pass does not transmit until the next
// one. Pairs are visited in index order (infected outer, healthy inner) so a
// given src sequence always yields the same outcome. A target is skipped once
// it has been infected this tick.
func (u Updater) Update(pop agent.Population, src *rng.Source) TickStats {
	var stats TickStats
	infected := pop.Indices(agent.StateInfected)
	healthy := pop.Indices(agent.StateHealthy)

	for _, i := range infected {
		from := pop[i].Position
		for _, j := range healthy {
			target := &pop[j]
			if target.State != agent.StateHealthy {
				continue
			}
			if distance(from, target.Position) >= u.Radius {
				continue
			}
			stats.Contacts++
			if src.Float64() < u.Probability {
				target.Infect()
				stats.NewInfections++
			}
		}
	}

	for _, i := range infected {
		if pop[i].AdvanceInfection(u.RecoveryTime) {
			stats.Recoveries++
		}
	}
	return stats
}

func distance(a, b agent.Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
