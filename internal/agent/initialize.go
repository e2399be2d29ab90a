package agent

import (
	"math"

	"github.com/cxd309/contagion-engine/internal/rng"
)

// Velocity components are drawn uniformly from [-MaxSpeed, MaxSpeed).
const MaxSpeed = 0.5

// InitParams are the inputs to Initialize.
type InitParams struct {
	Population        int
	InitInfected      int
	BoxSize           float64
	ImmunizedFraction float64
}

// InitReport describes how the initial health states were assigned.
type InitReport struct {
	Immunized int
	Infected  int
	// Requested is the initial infected count asked for; Infected is lower
	// when too few non-immunized agents were available.
	Requested int
}

// Infectable returns the number of agents that were neither immunized nor
// infected at tick 0.
func (r InitReport) Infectable(population int) int {
	return population - r.Immunized - r.Infected
}

// Initialize builds a population of p.Population agents.
//
// Draw order is fixed so a seed reproduces the same population: all velocities,
// then all positions, then the immunized indices, then the infected indices
// chosen from the agents left healthy.
func Initialize(p InitParams, src *rng.Source) (Population, InitReport) {
	pop := make(Population, p.Population)
	for i := range pop {
		pop[i].Velocity = Vec2{
			X: src.Uniform(-MaxSpeed, MaxSpeed),
			Y: src.Uniform(-MaxSpeed, MaxSpeed),
		}
	}
	for i := range pop {
		pop[i].Position = Vec2{
			X: src.Uniform(0, p.BoxSize),
			Y: src.Uniform(0, p.BoxSize),
		}
		pop[i].State = StateHealthy
	}

	report := InitReport{Requested: p.InitInfected}

	numImmunized := int(math.Floor(p.ImmunizedFraction * float64(p.Population)))
	if numImmunized > 0 {
		for _, i := range src.Sample(p.Population, numImmunized) {
			pop[i].State = StateImmunized
		}
		report.Immunized = numImmunized
	}

	healthy := pop.Indices(StateHealthy)
	numInfected := min(p.InitInfected, len(healthy))
	for _, i := range src.Choose(healthy, numInfected) {
		pop[i].State = StateInfected
	}
	report.Infected = numInfected

	return pop, report
}
