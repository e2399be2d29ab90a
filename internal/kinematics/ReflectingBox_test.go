package kinematics

import (
	"testing"

	"github.com/cxd309/contagion-engine/internal/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflectingBox_Step(t *testing.T) {
	box := ReflectingBox{Size: 10}
	tests := []struct {
		name    string
		in      agent.Agent
		dt      float64
		wantPos agent.Vec2
		wantVel agent.Vec2
	}{
		{
			name:    "interior move",
			in:      agent.Agent{Position: agent.Vec2{X: 5, Y: 5}, Velocity: agent.Vec2{X: 0.5, Y: -0.25}},
			dt:      1,
			wantPos: agent.Vec2{X: 5.5, Y: 4.75},
			wantVel: agent.Vec2{X: 0.5, Y: -0.25},
		},
		{
			name:    "timestep scales the move",
			in:      agent.Agent{Position: agent.Vec2{X: 5, Y: 5}, Velocity: agent.Vec2{X: 0.5, Y: 0.5}},
			dt:      2,
			wantPos: agent.Vec2{X: 6, Y: 6},
			wantVel: agent.Vec2{X: 0.5, Y: 0.5},
		},
		{
			name:    "upper wall on x",
			in:      agent.Agent{Position: agent.Vec2{X: 9.8, Y: 5}, Velocity: agent.Vec2{X: 0.5, Y: 0}},
			dt:      1,
			wantPos: agent.Vec2{X: 10, Y: 5},
			wantVel: agent.Vec2{X: -0.5, Y: 0},
		},
		{
			name:    "lower wall on y",
			in:      agent.Agent{Position: agent.Vec2{X: 5, Y: 0.1}, Velocity: agent.Vec2{X: 0, Y: -0.4}},
			dt:      1,
			wantPos: agent.Vec2{X: 5, Y: 0},
			wantVel: agent.Vec2{X: 0, Y: 0.4},
		},
		{
			name:    "corner flips both axes",
			in:      agent.Agent{Position: agent.Vec2{X: 0.1, Y: 9.9}, Velocity: agent.Vec2{X: -0.3, Y: 0.3}},
			dt:      1,
			wantPos: agent.Vec2{X: 0, Y: 10},
			wantVel: agent.Vec2{X: 0.3, Y: -0.3},
		},
		{
			name:    "landing exactly on the wall does not flip",
			in:      agent.Agent{Position: agent.Vec2{X: 9.5, Y: 5}, Velocity: agent.Vec2{X: 0.5, Y: 0}},
			dt:      1,
			wantPos: agent.Vec2{X: 10, Y: 5},
			wantVel: agent.Vec2{X: 0.5, Y: 0},
		},
		{
			name:    "overshoot larger than the box is clamped once",
			in:      agent.Agent{Position: agent.Vec2{X: 5, Y: 5}, Velocity: agent.Vec2{X: 30, Y: 0}},
			dt:      1,
			wantPos: agent.Vec2{X: 10, Y: 5},
			wantVel: agent.Vec2{X: -30, Y: 0},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := tc.in
			box.Step(&a, tc.dt)
			assert.InDelta(t, tc.wantPos.X, a.Position.X, 1e-12)
			assert.InDelta(t, tc.wantPos.Y, a.Position.Y, 1e-12)
			assert.Equal(t, tc.wantVel, a.Velocity)
		})
	}
}

func TestAdvance_KeepsStateAndContainment(t *testing.T) {
	pop := agent.Population{
		{Position: agent.Vec2{X: 0.2, Y: 0.2}, Velocity: agent.Vec2{X: -0.5, Y: -0.5}, State: agent.StateInfected, InfectionTimer: 3},
		{Position: agent.Vec2{X: 49.9, Y: 25}, Velocity: agent.Vec2{X: 0.5, Y: 0.1}, State: agent.StateImmunized},
	}
	model, err := NewMotionModel("", 50)
	require.NoError(t, err)

	for tick := 0; tick < 500; tick++ {
		Advance(pop, model, DefaultTimestep)
		for i, a := range pop {
			require.True(t, a.Position.X >= 0 && a.Position.X <= 50, "tick %d agent %d x=%v", tick, i, a.Position.X)
			require.True(t, a.Position.Y >= 0 && a.Position.Y <= 50, "tick %d agent %d y=%v", tick, i, a.Position.Y)
		}
	}
	assert.Equal(t, agent.StateInfected, pop[0].State)
	assert.Equal(t, 3, pop[0].InfectionTimer)
	assert.Equal(t, agent.StateImmunized, pop[1].State)
}

func TestNewMotionModel(t *testing.T) {
	m, err := NewMotionModel(ReflectingModelName, 20)
	require.NoError(t, err)
	assert.Equal(t, ReflectingBox{Size: 20}, m)

	_, err = NewMotionModel("torus", 20)
	assert.ErrorContains(t, err, "torus")
}
