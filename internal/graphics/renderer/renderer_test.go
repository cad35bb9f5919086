package renderer

import (
	"errors"
	"slices"
	"testing"

	"glessons/internal/graphics"
	"glessons/internal/graphics/glapi"
	"glessons/internal/graphics/gltest"
)

type fakeRenderable struct {
	name      string
	log       *[]string
	initErr   error
	renderErr error
	renders   int
	viewport  [2]int
	lastCtx   RenderContext
}

func (f *fakeRenderable) Init() error {
	*f.log = append(*f.log, "init "+f.name)
	return f.initErr
}

func (f *fakeRenderable) Render(ctx RenderContext) error {
	f.renders++
	f.lastCtx = ctx
	return f.renderErr
}

func (f *fakeRenderable) Dispose() {
	*f.log = append(*f.log, "dispose "+f.name)
}

func (f *fakeRenderable) SetViewport(w, h int) { f.viewport = [2]int{w, h} }

func TestRendererSetViewport(t *testing.T) {
	dev := gltest.New()
	var log []string
	a := &fakeRenderable{name: "a", log: &log}
	r, err := NewRenderer(dev, [4]float32{}, a)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	r.SetViewport(1280, 720)

	vp, ok := dev.LastViewport()
	if !ok || vp != (gltest.Viewport{X: 0, Y: 0, Width: 1280, Height: 720}) {
		t.Fatalf("viewport: got %+v, want (0,0,1280,720)", vp)
	}
	if a.viewport != [2]int{1280, 720} {
		t.Fatalf("renderable viewport: got %v", a.viewport)
	}
	if w, h := r.Viewport(); w != 1280 || h != 720 {
		t.Fatalf("Viewport(): got %dx%d", w, h)
	}
}

func TestRendererInitFailureDisposesEarlierRenderables(t *testing.T) {
	dev := gltest.New()
	var log []string
	boom := errors.New("boom")
	a := &fakeRenderable{name: "a", log: &log}
	b := &fakeRenderable{name: "b", log: &log}
	c := &fakeRenderable{name: "c", log: &log, initErr: boom}
	d := &fakeRenderable{name: "d", log: &log}

	_, err := NewRenderer(dev, [4]float32{}, a, b, c, d)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	want := []string{"init a", "init b", "init c", "dispose b", "dispose a"}
	if !slices.Equal(log, want) {
		t.Fatalf("lifecycle: got %v, want %v", log, want)
	}
}

func TestRendererDisposeReverseOrder(t *testing.T) {
	dev := gltest.New()
	var log []string
	r, err := NewRenderer(dev, [4]float32{},
		&fakeRenderable{name: "a", log: &log},
		&fakeRenderable{name: "b", log: &log})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	log = log[:0]

	r.Dispose()
	r.Dispose()
	if want := []string{"dispose b", "dispose a"}; !slices.Equal(log, want) {
		t.Fatalf("dispose: got %v, want %v", log, want)
	}
}

func TestRendererRenderClearsAndPassesContext(t *testing.T) {
	dev := gltest.New()
	var log []string
	a := &fakeRenderable{name: "a", log: &log}
	bg := [4]float32{0.15, 0.1, 0.25, 1}
	r, err := NewRenderer(dev, bg, a)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	r.SetWireframe(true)

	if err := r.Render(RenderContext{Time: 1.5}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if dev.ClearColorValue != bg || dev.Clears != 1 {
		t.Fatalf("clear: got %v x%d", dev.ClearColorValue, dev.Clears)
	}
	if !a.lastCtx.Wireframe || a.lastCtx.Time != 1.5 {
		t.Fatalf("context: got %+v", a.lastCtx)
	}
	if dev.Polygon != glapi.Line {
		t.Fatalf("polygon mode: got %v, want Line", dev.Polygon)
	}

	r.SetWireframe(false)
	if dev.Polygon != glapi.Fill || r.Wireframe() {
		t.Fatalf("wireframe off: got %v", dev.Polygon)
	}
}

func TestRendererWarningsDoNotStopTheFrame(t *testing.T) {
	dev := gltest.New()
	var log []string
	warn := &graphics.UniformNotFoundWarning{Program: 1, Name: "transform"}
	a := &fakeRenderable{name: "a", log: &log, renderErr: warn}
	b := &fakeRenderable{name: "b", log: &log}
	r, err := NewRenderer(dev, [4]float32{}, a, b)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	err = r.Render(RenderContext{})
	var w *graphics.UniformNotFoundWarning
	if !errors.As(err, &w) {
		t.Fatalf("got %v, want the warning", err)
	}
	if b.renders != 1 {
		t.Fatalf("second renderable skipped after a warning")
	}
}

func TestRendererErrorStopsTheFrame(t *testing.T) {
	dev := gltest.New()
	var log []string
	boom := errors.New("boom")
	a := &fakeRenderable{name: "a", log: &log, renderErr: boom}
	b := &fakeRenderable{name: "b", log: &log}
	r, err := NewRenderer(dev, [4]float32{}, a, b)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	if err := r.Render(RenderContext{}); !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	if b.renders != 0 {
		t.Fatalf("rendering continued after a hard error")
	}
}
