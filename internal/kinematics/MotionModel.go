// Package kinematics defines the MotionModel interface that moves agents each
// tick, along with built-in implementations.
//
// Adding a new boundary behaviour only requires implementing MotionModel and
// registering it in NewMotionModel; the engine never needs to change.
package kinematics

import (
	"fmt"

	"github.com/cxd309/contagion-engine/internal/agent"
)

// DefaultTimestep is the tick length used when none is configured.
const DefaultTimestep = 1.0

// MotionModel is the contract every motion implementation must satisfy.
// Distances are in box units and time in ticks.
type MotionModel interface {
	// Step moves a by its velocity over dt and applies the model's boundary rule.
	// It may change a's velocity but never its health state.
	Step(a *agent.Agent, dt float64)
}

// Advance applies model to every agent of pop in index order.
func Advance(pop agent.Population, model MotionModel, dt float64) {
	for i := range pop {
		model.Step(&pop[i], dt)
	}
}

// NewMotionModel returns the MotionModel registered under name.
func NewMotionModel(name string, boxSize float64) (MotionModel, error) {
	switch name {
	case "", ReflectingModelName:
		return ReflectingBox{Size: boxSize}, nil
	default:
		return nil, fmt.Errorf("unknown motion model %q", name)
	}
}
