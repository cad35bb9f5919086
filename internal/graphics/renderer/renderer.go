package renderer

import (
	"errors"
	"fmt"

	"glessons/internal/graphics"
	"glessons/internal/graphics/glapi"
)

// Renderer orchestrates rendering via renderables
type Renderer struct {
	dev         glapi.Device
	renderables []Renderable
	initialized int

	clearColor [4]float32
	wireframe  bool
	width      int
	height     int
}

// NewRenderer initializes the given renderables in order. If one fails, the
// ones already initialized are disposed and the error is returned.
func NewRenderer(dev glapi.Device, clearColor [4]float32, rs ...Renderable) (*Renderer, error) {
	r := &Renderer{
		dev:         dev,
		renderables: rs,
		clearColor:  clearColor,
	}

	for i, rb := range rs {
		if err := rb.Init(); err != nil {
			r.Dispose()
			return nil, fmt.Errorf("init renderable %d: %w", i, err)
		}
		r.initialized = i + 1
	}

	return r, nil
}

// Render clears the frame and draws every renderable. Recoverable uniform
// warnings are returned joined after all renderables have drawn; any other
// error stops the frame.
func (r *Renderer) Render(ctx RenderContext) error {
	r.dev.ClearColor(r.clearColor[0], r.clearColor[1], r.clearColor[2], r.clearColor[3])
	r.dev.Clear(glapi.ColorBufferBit)

	ctx.Wireframe = r.wireframe

	var warnings []error
	for _, rb := range r.renderables {
		err := rb.Render(ctx)
		if err == nil {
			continue
		}
		var w *graphics.UniformNotFoundWarning
		if errors.As(err, &w) {
			warnings = append(warnings, err)
			continue
		}
		return err
	}
	return errors.Join(warnings...)
}

// SetWireframe switches between line and filled polygon rasterization.
func (r *Renderer) SetWireframe(on bool) {
	r.wireframe = on
	mode := glapi.Fill
	if on {
		mode = glapi.Line
	}
	r.dev.PolygonMode(glapi.FrontAndBack, mode)
}

// Wireframe reports whether polygons are drawn as lines.
func (r *Renderer) Wireframe() bool { return r.wireframe }

// SetViewport maps rendering to the full (width, height) framebuffer. No
// aspect correction is applied.
func (r *Renderer) SetViewport(width, height int) {
	r.width, r.height = width, height
	r.dev.Viewport(0, 0, int32(width), int32(height))
	for _, rb := range r.renderables[:r.initialized] {
		rb.SetViewport(width, height)
	}
}

// Viewport returns the last viewport size.
func (r *Renderer) Viewport() (width, height int) {
	return r.width, r.height
}

// Dispose cleans up all initialized renderables in reverse order
func (r *Renderer) Dispose() {
	for i := r.initialized - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
	r.initialized = 0
}
