package graphics

import (
	"errors"
	"fmt"
)

// ErrProgramNotInUse is returned by uniform setters when another program is
// current. GL would apply the value to the wrong program or drop it.
var ErrProgramNotInUse = errors.New("shader program is not in use")

// Stage identifies a shader stage.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// CompileError reports a shader stage that failed to compile.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// LinkError reports a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// LoadError reports an image that could not be turned into a texture. No
// GPU object exists when it is returned.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load texture: %v", e.Err)
	}
	return fmt.Sprintf("failed to load texture %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UniformNotFoundWarning reports a uniform name that is not active in the
// linked program, either misspelled or optimised away. The set was a no-op;
// drawing may continue with the previous value.
type UniformNotFoundWarning struct {
	Program uint32
	Name    string
}

func (e *UniformNotFoundWarning) Error() string {
	return fmt.Sprintf("uniform %q not found in program %d", e.Name, e.Program)
}

// LayoutMismatchError reports vertex data that does not agree with its
// attribute layout.
type LayoutMismatchError struct {
	Reason      string
	Stride      int
	VertexBytes int
}

func (e *LayoutMismatchError) Error() string {
	return fmt.Sprintf("vertex layout mismatch: %s (stride %d bytes, vertex data %d bytes)", e.Reason, e.Stride, e.VertexBytes)
}
