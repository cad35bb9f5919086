// Package platform defines the window and context collaborator the frame
// loop drives.
package platform

import (
	"fmt"

	"glessons/internal/input"
)

// KeyHandler receives key transitions. Repeats are reported as pressed.
type KeyHandler func(key input.Key, pressed bool)

// ResizeHandler receives the new framebuffer size in pixels.
type ResizeHandler func(width, height int)

// Window is a native window with a current GL context.
type Window interface {
	ShouldClose() bool
	// SetShouldClose may be called from any goroutine.
	SetShouldClose(bool)
	// PollEvents dispatches pending input to the registered handlers.
	PollEvents()
	// SwapBuffers presents the frame, blocking for vsync if enabled.
	SwapBuffers()
	FramebufferSize() (width, height int)
	SetKeyHandler(KeyHandler)
	SetResizeHandler(ResizeHandler)
	// Time returns seconds since the window system was initialized.
	Time() float64
	Destroy()
}

// ContextInitError reports a failure to create the window or to load the GL
// functions for its context.
type ContextInitError struct {
	Stage string
	Err   error
}

func (e *ContextInitError) Error() string {
	return fmt.Sprintf("context init failed at %s: %v", e.Stage, e.Err)
}

func (e *ContextInitError) Unwrap() error { return e.Err }
