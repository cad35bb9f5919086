package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMoveStep is the per-frame offset change while a direction key is
// held.
const DefaultMoveStep = 0.005

// TransformState is the per-frame pose driven by input. X and Y stay inside
// (-1, 1): a step that reaches either limit resets the offset to 0, so held
// keys loop the object across the screen.
type TransformState struct {
	X, Y         float32
	StepX, StepY float32
}

// NewTransformState returns a centred state with the given steps.
func NewTransformState(stepX, stepY float32) TransformState {
	return TransformState{StepX: stepX, StepY: stepY}
}

// Move applies dx and dy steps (each -1, 0 or 1) and returns the new state.
func (s TransformState) Move(dx, dy int) TransformState {
	s.X = wrapStep(s.X, float32(dx)*s.StepX)
	s.Y = wrapStep(s.Y, float32(dy)*s.StepY)
	return s
}

func wrapStep(v, delta float32) float32 {
	if delta == 0 {
		return v
	}
	v += delta
	if v >= 1 || v <= -1 {
		return 0
	}
	return v
}

// Offset returns the translation as a vector.
func (s TransformState) Offset() mgl32.Vec3 {
	return mgl32.Vec3{s.X, s.Y, 0}
}

// Composite builds the model matrix at time t seconds:
//
//	translate(x, y, 0) · rotateZ(t) · scale(sin t)
//
// so a vertex is scaled, then rotated, then moved. At t = 0 the scale is 0
// and nothing is visible.
func (s TransformState) Composite(t float64) mgl32.Mat4 {
	k := float32(math.Sin(t))
	return mgl32.Translate3D(s.X, s.Y, 0).
		Mul4(mgl32.HomogRotate3DZ(float32(t))).
		Mul4(mgl32.Scale3D(k, k, k))
}
