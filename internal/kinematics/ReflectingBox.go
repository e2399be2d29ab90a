package kinematics

import "github.com/cxd309/contagion-engine/internal/agent"

// ReflectingModelName is the config name of the ReflectingBox model.
const ReflectingModelName = "reflect"

// ReflectingBox implements MotionModel for a square region [0, Size]² with
// elastic walls.
//
// Each axis gets a single clamp-and-flip on the post-move coordinate. An agent
// that would overshoot by more than the box in one tick is clamped to the wall
// rather than mirrored back inside.
type ReflectingBox struct {
	Size float64 `json:"size"`
}

func (b ReflectingBox) Step(a *agent.Agent, dt float64) {
	a.Position.X += a.Velocity.X * dt
	a.Position.Y += a.Velocity.Y * dt
	a.Position.X, a.Velocity.X = reflect(a.Position.X, a.Velocity.X, b.Size)
	a.Position.Y, a.Velocity.Y = reflect(a.Position.Y, a.Velocity.Y, b.Size)
}

// reflect clamps pos to [0, size] and negates v if the wall was crossed.
func reflect(pos, v, size float64) (float64, float64) {
	switch {
	case pos > size:
		return size, -v
	case pos < 0:
		return 0, -v
	default:
		return pos, v
	}
}
