package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RenderContext provides shared per-frame state to all renderables
type RenderContext struct {
	// Time is the elapsed time in seconds since the loop started.
	Time float64
	DT   float64
	// Transform is the composite model matrix for this frame.
	Transform mgl32.Mat4
	Wireframe bool
}

// Renderable defines the lifecycle of something the renderer draws each frame
type Renderable interface {
	Init() error
	Render(ctx RenderContext) error
	Dispose()
	SetViewport(width, height int)
}
