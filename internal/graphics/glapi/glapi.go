// Package glapi describes the slice of OpenGL the lesson harness drives.
//
// The core graphics types talk to a Device instead of calling the GL
// bindings directly, so they can be exercised without a live context.
// glcore provides the real implementation and gltest a recording fake.
package glapi

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Enum is an OpenGL enumerant. Values match the GL headers.
type Enum uint32

const (
	NoError                     Enum = 0
	InvalidEnum                 Enum = 0x0500
	InvalidValue                Enum = 0x0501
	InvalidOperation            Enum = 0x0502
	OutOfMemory                 Enum = 0x0505
	InvalidFramebufferOperation Enum = 0x0506

	ArrayBuffer        Enum = 0x8892
	ElementArrayBuffer Enum = 0x8893
	StaticDraw         Enum = 0x88E4

	Float          Enum = 0x1406
	UnsignedInt    Enum = 0x1405
	UnsignedByte   Enum = 0x1401
	Lines          Enum = 0x0001
	Triangles      Enum = 0x0004
	VertexShader   Enum = 0x8B31
	FragmentShader Enum = 0x8B30

	Texture2D        Enum = 0x0DE1
	Texture0         Enum = 0x84C0
	TextureWrapS     Enum = 0x2802
	TextureWrapT     Enum = 0x2803
	TextureMinFilter Enum = 0x2801
	TextureMagFilter Enum = 0x2800
	UnpackAlignment  Enum = 0x0CF5

	Repeat         Enum = 0x2901
	MirroredRepeat Enum = 0x8370
	ClampToEdge    Enum = 0x812F

	Nearest              Enum = 0x2600
	Linear               Enum = 0x2601
	NearestMipmapNearest Enum = 0x2700
	LinearMipmapNearest  Enum = 0x2701
	NearestMipmapLinear  Enum = 0x2702
	LinearMipmapLinear   Enum = 0x2703

	Red  Enum = 0x1903
	RG   Enum = 0x8227
	RGB  Enum = 0x1907
	RGBA Enum = 0x1908

	ColorBufferBit Enum = 0x4000
	DepthBufferBit Enum = 0x0100

	FrontAndBack Enum = 0x0408
	Line         Enum = 0x1B01
	Fill         Enum = 0x1B02
)

// Device is the OpenGL surface used by the harness. Every call must be made
// from the goroutine that owns the GL context.
type Device interface {
	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)

	GenBuffer() uint32
	BindBuffer(target Enum, buffer uint32)
	BufferDataFloat32(target Enum, data []float32, usage Enum)
	BufferDataUint32(target Enum, data []uint32, usage Enum)
	// BufferSize reports the byte size of the buffer bound to target.
	BufferSize(target Enum) int
	DeleteBuffer(buffer uint32)

	VertexAttribPointer(index uint32, size int32, xtype Enum, stride int32, offset int)
	EnableVertexAttribArray(index uint32)

	CreateShader(kind Enum) uint32
	ShaderSource(shader uint32, src string)
	CompileShader(shader uint32)
	ShaderCompiled(shader uint32) bool
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	CurrentProgram() uint32
	DeleteProgram(program uint32)

	// UniformLocation returns -1 when name is not an active uniform.
	UniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform3f(location int32, x, y, z float32)
	UniformMatrix4(location int32, m mgl32.Mat4)

	GenTexture() uint32
	BindTexture(target Enum, texture uint32)
	ActiveTexture(unit Enum)
	TexParameteri(target, pname Enum, param int32)
	PixelStorei(pname Enum, param int32)
	TexImage2D(target Enum, level int32, internalFormat Enum, width, height int32, format, xtype Enum, pixels []byte)
	GenerateMipmap(target Enum)
	DeleteTexture(texture uint32)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask Enum)
	PolygonMode(face, mode Enum)
	DrawElements(mode Enum, count int32, xtype Enum, offset int)
	DrawArrays(mode Enum, first, count int32)

	GetError() Enum
}

// Error is a GL error flag observed after an operation.
type Error struct {
	Op   string
	Code Enum
}

func (e *Error) Error() string {
	return fmt.Sprintf("gl error during %s: %s (0x%x)", e.Op, e.Code.errorName(), uint32(e.Code))
}

func (e Enum) errorName() string {
	switch e {
	case InvalidEnum:
		return "GL_INVALID_ENUM"
	case InvalidValue:
		return "GL_INVALID_VALUE"
	case InvalidOperation:
		return "GL_INVALID_OPERATION"
	case OutOfMemory:
		return "GL_OUT_OF_MEMORY"
	case InvalidFramebufferOperation:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	}
	return "unknown"
}

// CheckError drains the GL error queue and returns the first error found.
func CheckError(dev Device, op string) error {
	var first Enum
	for i := 0; i < 16; i++ {
		code := dev.GetError()
		if code == NoError {
			break
		}
		if first == NoError {
			first = code
		}
	}
	if first != NoError {
		return &Error{Op: op, Code: first}
	}
	return nil
}
