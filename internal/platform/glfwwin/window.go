// Package glfwwin implements platform.Window with GLFW.
package glfwwin

import (
	"glessons/internal/input"
	"glessons/internal/platform"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Options configures window creation.
type Options struct {
	Width     int
	Height    int
	Title     string
	VSync     bool
	Resizable bool
}

// Window wraps a GLFW window whose context is current on the calling thread.
type Window struct {
	win *glfw.Window
}

var keymap = map[glfw.Key]input.Key{
	glfw.KeyEscape: input.KeyEscape,
	glfw.KeyUp:     input.KeyUp,
	glfw.KeyDown:   input.KeyDown,
	glfw.KeyLeft:   input.KeyLeft,
	glfw.KeyRight:  input.KeyRight,
	glfw.KeyW:      input.KeyW,
	glfw.KeyA:      input.KeyA,
	glfw.KeyS:      input.KeyS,
	glfw.KeyD:      input.KeyD,
	glfw.KeyF:      input.KeyF,
	glfw.KeySpace:  input.KeySpace,
}

// Open initializes GLFW, creates a window with a 4.1 core forward-compatible
// context and makes it current. Must be called from the main thread.
func Open(opts Options) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, &platform.ContextInitError{Stage: "glfw init", Err: err}
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	if opts.Resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, &platform.ContextInitError{Stage: "window creation", Err: err}
	}
	win.MakeContextCurrent()

	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	return &Window{win: win}, nil
}

func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

func (w *Window) SetShouldClose(v bool) { w.win.SetShouldClose(v) }

func (w *Window) PollEvents() { glfw.PollEvents() }

func (w *Window) SwapBuffers() { w.win.SwapBuffers() }

func (w *Window) FramebufferSize() (int, int) { return w.win.GetFramebufferSize() }

func (w *Window) SetKeyHandler(h platform.KeyHandler) {
	if h == nil {
		w.win.SetKeyCallback(nil)
		return
	}
	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		k, ok := keymap[key]
		if !ok {
			return
		}
		h(k, action == glfw.Press || action == glfw.Repeat)
	})
}

func (w *Window) SetResizeHandler(h platform.ResizeHandler) {
	if h == nil {
		w.win.SetFramebufferSizeCallback(nil)
		return
	}
	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		h(width, height)
	})
}

func (w *Window) Time() float64 { return glfw.GetTime() }

// Destroy closes the window and terminates GLFW.
func (w *Window) Destroy() {
	if w.win == nil {
		return
	}
	w.win.Destroy()
	w.win = nil
	glfw.Terminate()
}

var _ platform.Window = (*Window)(nil)
