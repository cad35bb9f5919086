package graphics

import (
	"fmt"
	"io/fs"

	"glessons/internal/graphics/glapi"

	"github.com/go-gl/mathgl/mgl32"
)

// ShaderProgram is a linked program built from one vertex and one fragment
// stage.
type ShaderProgram struct {
	dev glapi.Device
	ID  uint32

	// names already reported missing, so a per-frame set warns only once
	warned map[string]bool
}

// NewShaderProgram compiles both stages and links them. A stage that fails
// to compile yields a *CompileError, a failed link a *LinkError; in both
// cases every object created on the way is deleted again.
func NewShaderProgram(dev glapi.Device, vertexSrc, fragmentSrc string) (*ShaderProgram, error) {
	vertexShader, err := compileShader(dev, vertexSrc, StageVertex)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(dev, fragmentSrc, StageFragment)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteShader(fragmentShader)

	program := dev.CreateProgram()
	dev.AttachShader(program, vertexShader)
	dev.AttachShader(program, fragmentShader)
	dev.LinkProgram(program)
	if !dev.ProgramLinked(program) {
		log := dev.ProgramInfoLog(program)
		dev.DeleteProgram(program)
		return nil, &LinkError{Log: log}
	}

	Logger().Debug("shader program linked", "program", program)
	return &ShaderProgram{dev: dev, ID: program, warned: make(map[string]bool)}, nil
}

// LoadShaderProgram reads the two stage sources from fsys and builds a
// program from them.
func LoadShaderProgram(dev glapi.Device, fsys fs.FS, vertexPath, fragmentPath string) (*ShaderProgram, error) {
	vertexSource, err := fs.ReadFile(fsys, vertexPath)
	if err != nil {
		return nil, fmt.Errorf("could not read vertex shader file: %w", err)
	}

	fragmentSource, err := fs.ReadFile(fsys, fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("could not read fragment shader file: %w", err)
	}

	return NewShaderProgram(dev, string(vertexSource), string(fragmentSource))
}

func compileShader(dev glapi.Device, source string, stage Stage) (uint32, error) {
	kind := glapi.VertexShader
	if stage == StageFragment {
		kind = glapi.FragmentShader
	}
	shader := dev.CreateShader(kind)
	dev.ShaderSource(shader, source)
	dev.CompileShader(shader)
	if !dev.ShaderCompiled(shader) {
		log := dev.ShaderInfoLog(shader)
		dev.DeleteShader(shader)
		return 0, &CompileError{Stage: stage, Log: log}
	}
	return shader, nil
}

// Use makes this program current. Uniform setters require it.
func (s *ShaderProgram) Use() {
	s.dev.UseProgram(s.ID)
}

// InUse reports whether this program is the current one.
func (s *ShaderProgram) InUse() bool {
	return s.ID != 0 && s.dev.CurrentProgram() == s.ID
}

// location resolves name in the current program. A missing name is logged
// once and returned as a *UniformNotFoundWarning.
func (s *ShaderProgram) location(name string) (int32, error) {
	if !s.InUse() {
		return -1, fmt.Errorf("set uniform %q: %w", name, ErrProgramNotInUse)
	}
	loc := s.dev.UniformLocation(s.ID, name)
	if loc < 0 {
		if !s.warned[name] {
			s.warned[name] = true
			Logger().Warn("uniform not found; value dropped", "program", s.ID, "uniform", name)
		}
		return -1, &UniformNotFoundWarning{Program: s.ID, Name: name}
	}
	return loc, nil
}

// SetBool sets a boolean uniform
func (s *ShaderProgram) SetBool(name string, value bool) error {
	var intValue int32
	if value {
		intValue = 1
	}
	return s.SetInt(name, intValue)
}

// SetInt sets an integer uniform, typically a sampler's texture unit
func (s *ShaderProgram) SetInt(name string, value int32) error {
	loc, err := s.location(name)
	if err != nil {
		return err
	}
	s.dev.Uniform1i(loc, value)
	return nil
}

// SetFloat sets a float uniform
func (s *ShaderProgram) SetFloat(name string, value float32) error {
	loc, err := s.location(name)
	if err != nil {
		return err
	}
	s.dev.Uniform1f(loc, value)
	return nil
}

// SetVector3 sets a vector3 uniform
func (s *ShaderProgram) SetVector3(name string, v mgl32.Vec3) error {
	loc, err := s.location(name)
	if err != nil {
		return err
	}
	s.dev.Uniform3f(loc, v.X(), v.Y(), v.Z())
	return nil
}

// SetMatrix4 sets a 4x4 matrix uniform
func (s *ShaderProgram) SetMatrix4(name string, m mgl32.Mat4) error {
	loc, err := s.location(name)
	if err != nil {
		return err
	}
	s.dev.UniformMatrix4(loc, m)
	return nil
}

// Destroy deletes the program. It is safe to call more than once.
func (s *ShaderProgram) Destroy() {
	if s == nil || s.ID == 0 {
		return
	}
	s.dev.DeleteProgram(s.ID)
	s.ID = 0
}
