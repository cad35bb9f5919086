package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glessons/internal/graphics"
	"glessons/internal/graphics/renderer"
	"glessons/internal/input"
	"glessons/internal/platform"
	"glessons/internal/profiling"
)

// LoopState is the lifecycle stage of a FrameLoop.
type LoopState int

const (
	StateRunning LoopState = iota
	StateTerminating
	StateDestroyed
)

func (s LoopState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("LoopState(%d)", int(s))
}

// ErrLoopDestroyed is returned by Run on a loop that already tore down.
var ErrLoopDestroyed = errors.New("frame loop already destroyed")

// Options tunes a FrameLoop.
type Options struct {
	// FPSLimit caps the frame rate; 0 leaves pacing to vsync.
	FPSLimit int
	// SlowFrame logs frames whose CPU time exceeds it; 0 disables the log.
	SlowFrame time.Duration
	// Transform is the starting pose. A zero step falls back to
	// graphics.DefaultMoveStep.
	Transform graphics.TransformState
}

// FrameLoop drives one window: it polls input, updates the transform,
// renders and presents, once per frame, until the window is asked to close.
type FrameLoop struct {
	window    platform.Window
	input     *input.InputManager
	renderer  *renderer.Renderer
	limiter   *FPSLimiter
	frame     *profiling.Frame
	slowFrame time.Duration

	transform graphics.TransformState
	state     LoopState
	paused    bool

	// elapsed is loop time in seconds; it stops while paused.
	elapsed  float64
	lastTime float64
	started  bool
	frames   uint64

	// frame rate over the last full second of window time
	fps       float64
	fpsFrames int
	fpsSince  float64
}

// NewFrameLoop takes ownership of window and r. Key events are routed to im
// and framebuffer resizes to r.SetViewport, which is also applied once for
// the current framebuffer size.
func NewFrameLoop(window platform.Window, im *input.InputManager, r *renderer.Renderer, opts Options) *FrameLoop {
	ts := opts.Transform
	if ts.StepX == 0 {
		ts.StepX = graphics.DefaultMoveStep
	}
	if ts.StepY == 0 {
		ts.StepY = graphics.DefaultMoveStep
	}

	l := &FrameLoop{
		window:    window,
		input:     im,
		renderer:  r,
		limiter:   NewFPSLimiter(opts.FPSLimit),
		frame:     profiling.NewFrame(),
		slowFrame: opts.SlowFrame,
		transform: ts,
	}

	window.SetKeyHandler(im.HandleKeyEvent)
	window.SetResizeHandler(func(width, height int) {
		Logger().Debug("framebuffer resized", "width", width, "height", height)
		r.SetViewport(width, height)
	})
	r.SetViewport(window.FramebufferSize())

	return l
}

// Run renders frames until the window should close or ctx is done, then
// tears everything down. Both close signals are checked between frames
// only. A non-nil error means a frame failed with something other than a
// recoverable uniform warning.
func (l *FrameLoop) Run(ctx context.Context) error {
	if l.state == StateDestroyed {
		return ErrLoopDestroyed
	}
	defer l.teardown()

	for {
		if ctx.Err() != nil {
			l.window.SetShouldClose(true)
		}
		if l.window.ShouldClose() {
			l.setState(StateTerminating)
			return nil
		}
		if err := l.tick(); err != nil {
			l.setState(StateTerminating)
			return err
		}
	}
}

func (l *FrameLoop) tick() error {
	l.frame.Reset()

	now := l.window.Time()
	if !l.started {
		l.lastTime = now
		l.fpsSince = now
		l.started = true
	}
	dt := now - l.lastTime
	l.lastTime = now

	stop := l.frame.Track("window.PollEvents")
	l.window.PollEvents()
	stop()

	l.update(dt)

	rc := renderer.RenderContext{
		Time:      l.elapsed,
		DT:        dt,
		Transform: l.transform.Composite(l.elapsed),
	}
	stop = l.frame.Track("renderer.Render")
	err := l.renderer.Render(rc)
	stop()
	if err != nil {
		var w *graphics.UniformNotFoundWarning
		if !errors.As(err, &w) {
			return fmt.Errorf("frame %d: %w", l.frames, err)
		}
	}

	stop = l.frame.Track("window.SwapBuffers")
	l.window.SwapBuffers()
	stop()
	l.frames++
	l.countFrame(now)

	if d := l.frame.Elapsed(); l.slowFrame > 0 && d > l.slowFrame {
		Logger().Warn("slow frame", "duration", d, "top", l.frame.TopN(5))
	}

	l.input.PostUpdate()
	l.limiter.Wait(l.paused)
	return nil
}

// update applies this frame's input. Pause freezes both the clock and the
// transform; quit and the toggles still work while paused.
func (l *FrameLoop) update(dt float64) {
	if l.input.JustPressed(input.ActionQuit) {
		l.window.SetShouldClose(true)
	}
	if l.input.JustPressed(input.ActionToggleWireframe) {
		l.renderer.SetWireframe(!l.renderer.Wireframe())
		Logger().Info("wireframe toggled", "on", l.renderer.Wireframe())
	}
	if l.input.JustPressed(input.ActionPause) {
		l.paused = !l.paused
		Logger().Info("pause toggled", "paused", l.paused)
	}
	if l.paused {
		return
	}

	l.elapsed += dt
	l.transform = l.transform.Move(l.input.Direction())
}

func (l *FrameLoop) countFrame(now float64) {
	l.fpsFrames++
	if span := now - l.fpsSince; span >= 1 {
		l.fps = float64(l.fpsFrames) / span
		Logger().Debug("frame rate", "fps", int(l.fps+0.5))
		l.fpsFrames = 0
		l.fpsSince = now
	}
}

func (l *FrameLoop) teardown() {
	l.window.SetKeyHandler(nil)
	l.window.SetResizeHandler(nil)
	l.renderer.Dispose()
	l.window.Destroy()
	l.setState(StateDestroyed)
}

func (l *FrameLoop) setState(s LoopState) {
	if l.state == s {
		return
	}
	Logger().Debug("frame loop state", "from", l.state, "to", s, "frames", l.frames)
	l.state = s
}

// State returns the lifecycle stage.
func (l *FrameLoop) State() LoopState { return l.state }

// Transform returns the current pose.
func (l *FrameLoop) Transform() graphics.TransformState { return l.transform }

// Paused reports whether time and movement are frozen.
func (l *FrameLoop) Paused() bool { return l.paused }

// Frames returns the number of frames presented.
func (l *FrameLoop) Frames() uint64 { return l.frames }

// FPS returns the frame rate measured over the last full second, or 0
// before one has passed.
func (l *FrameLoop) FPS() float64 { return l.fps }

// Elapsed returns loop time in seconds, excluding paused frames.
func (l *FrameLoop) Elapsed() float64 { return l.elapsed }
