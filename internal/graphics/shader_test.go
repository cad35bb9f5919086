package graphics

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"glessons/internal/graphics/glapi"
	"glessons/internal/graphics/gltest"

	"github.com/go-gl/mathgl/mgl32"
)

const testVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;
uniform mat4 transform;
void main()
{
    gl_Position = transform * vec4(aPos, 1.0);
}
`

const testFragmentShader = `#version 410 core
out vec4 FragColor;
uniform sampler2D texture1;
void main()
{
    FragColor = texture(texture1, vec2(0.0));
}
`

func TestNewShaderProgram(t *testing.T) {
	dev := gltest.New()
	prog, err := NewShaderProgram(dev, testVertexShader, testFragmentShader)
	if err != nil {
		t.Fatalf("NewShaderProgram: %v", err)
	}
	defer prog.Destroy()

	if len(dev.Shaders) != 0 {
		t.Fatalf("stage objects should be deleted after linking, %d left", len(dev.Shaders))
	}
	if !dev.ProgramLinked(prog.ID) {
		t.Fatalf("program %d not linked", prog.ID)
	}
}

func TestShaderProgramCompileError(t *testing.T) {
	tests := []struct {
		name     string
		vertex   string
		fragment string
		stage    Stage
	}{
		{"vertex missing main", "#version 410 core\n", testFragmentShader, StageVertex},
		{"fragment unbalanced", testVertexShader, "#version 410 core\nvoid main() {", StageFragment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gltest.New()
			prog, err := NewShaderProgram(dev, tt.vertex, tt.fragment)
			if prog != nil {
				t.Fatalf("got a program on failure")
			}
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("got %v, want *CompileError", err)
			}
			if ce.Stage != tt.stage {
				t.Fatalf("stage: got %v, want %v", ce.Stage, tt.stage)
			}
			if ce.Log == "" {
				t.Fatalf("compile log was not surfaced")
			}
			if dev.LiveObjects() != 0 {
				t.Fatalf("objects leaked: %d", dev.LiveObjects())
			}
		})
	}
}

func TestShaderProgramLinkError(t *testing.T) {
	dev := gltest.New()
	dev.LinkFunc = func(*gltest.Program) (bool, string) {
		return false, "error: vertex output ourColor not read by fragment shader"
	}

	prog, err := NewShaderProgram(dev, testVertexShader, testFragmentShader)
	if prog != nil {
		t.Fatalf("got a program on failure")
	}
	var le *LinkError
	if !errors.As(err, &le) {
		t.Fatalf("got %v, want *LinkError", err)
	}
	if !strings.Contains(le.Log, "ourColor") {
		t.Fatalf("link log not surfaced: %q", le.Log)
	}
	if dev.LiveObjects() != 0 {
		t.Fatalf("objects leaked: %d", dev.LiveObjects())
	}
}

func TestLoadShaderProgram(t *testing.T) {
	fsys := fstest.MapFS{
		"shaders/a/shader.vert": {Data: []byte(testVertexShader)},
		"shaders/a/shader.frag": {Data: []byte(testFragmentShader)},
	}
	dev := gltest.New()
	prog, err := LoadShaderProgram(dev, fsys, "shaders/a/shader.vert", "shaders/a/shader.frag")
	if err != nil {
		t.Fatalf("LoadShaderProgram: %v", err)
	}
	prog.Destroy()

	if _, err := LoadShaderProgram(dev, fsys, "shaders/missing.vert", "shaders/a/shader.frag"); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestShaderProgramUniforms(t *testing.T) {
	dev := gltest.New()
	prog, err := NewShaderProgram(dev, testVertexShader, testFragmentShader)
	if err != nil {
		t.Fatalf("NewShaderProgram: %v", err)
	}

	if err := prog.SetInt("texture1", 0); !errors.Is(err, ErrProgramNotInUse) {
		t.Fatalf("setting before Use: got %v, want ErrProgramNotInUse", err)
	}

	prog.Use()
	if !prog.InUse() {
		t.Fatalf("program not current after Use")
	}
	if err := prog.SetInt("texture1", 1); err != nil {
		t.Fatalf("SetInt: %v", err)
	}
	m := mgl32.Translate3D(0.25, -0.5, 0)
	if err := prog.SetMatrix4("transform", m); err != nil {
		t.Fatalf("SetMatrix4: %v", err)
	}

	values := dev.Programs[prog.ID].Values
	if values["texture1"] != int32(1) {
		t.Fatalf("texture1: got %v, want 1", values["texture1"])
	}
	if values["transform"] != m {
		t.Fatalf("transform: got %v, want %v", values["transform"], m)
	}
}

func TestShaderProgramMissingUniform(t *testing.T) {
	dev := gltest.New()
	prog, err := NewShaderProgram(dev, testVertexShader, testFragmentShader)
	if err != nil {
		t.Fatalf("NewShaderProgram: %v", err)
	}
	prog.Use()

	for i := 0; i < 2; i++ {
		err := prog.SetFloat("mixValue", 0.2)
		var w *UniformNotFoundWarning
		if !errors.As(err, &w) || w.Name != "mixValue" {
			t.Fatalf("got %v, want *UniformNotFoundWarning for mixValue", err)
		}
	}
	if !prog.warned["mixValue"] {
		t.Fatalf("missing uniform was not remembered")
	}
	if err := glapi.CheckError(dev, "uniform"); err != nil {
		t.Fatalf("a missing uniform must not raise a GL error: %v", err)
	}
}

func TestShaderProgramDestroy(t *testing.T) {
	dev := gltest.New()
	prog, err := NewShaderProgram(dev, testVertexShader, testFragmentShader)
	if err != nil {
		t.Fatalf("NewShaderProgram: %v", err)
	}
	prog.Destroy()
	prog.Destroy()
	if dev.LiveObjects() != 0 {
		t.Fatalf("objects left: %d", dev.LiveObjects())
	}
}
