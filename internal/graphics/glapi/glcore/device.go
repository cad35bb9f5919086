// Package glcore implements glapi.Device on top of the go-gl 4.1 core bindings.
package glcore

import (
	"fmt"
	"strings"

	"glessons/internal/graphics/glapi"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Device forwards to the process-wide GL function table.
type Device struct{}

// Init loads the GL function pointers for the current context and returns a
// Device. The context must already be current on the calling thread.
func Init() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to load OpenGL functions: %w", err)
	}
	return &Device{}, nil
}

// Version returns the GL_VERSION string of the current context.
func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (d *Device) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *Device) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (d *Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (d *Device) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (d *Device) BindBuffer(target glapi.Enum, buffer uint32) {
	gl.BindBuffer(uint32(target), buffer)
}

func (d *Device) BufferDataFloat32(target glapi.Enum, data []float32, usage glapi.Enum) {
	if len(data) == 0 {
		gl.BufferData(uint32(target), 0, nil, uint32(usage))
		return
	}
	gl.BufferData(uint32(target), len(data)*4, gl.Ptr(data), uint32(usage))
}

func (d *Device) BufferDataUint32(target glapi.Enum, data []uint32, usage glapi.Enum) {
	if len(data) == 0 {
		gl.BufferData(uint32(target), 0, nil, uint32(usage))
		return
	}
	gl.BufferData(uint32(target), len(data)*4, gl.Ptr(data), uint32(usage))
}

func (d *Device) BufferSize(target glapi.Enum) int {
	var size int32
	gl.GetBufferParameteriv(uint32(target), gl.BUFFER_SIZE, &size)
	return int(size)
}

func (d *Device) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype glapi.Enum, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, uint32(xtype), false, stride, uintptr(offset))
}

func (d *Device) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (d *Device) CreateShader(kind glapi.Enum) uint32 { return gl.CreateShader(uint32(kind)) }

func (d *Device) ShaderSource(shader uint32, src string) {
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (d *Device) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (d *Device) ShaderCompiled(shader uint32) bool {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (d *Device) ShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (d *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (d *Device) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (d *Device) ProgramLinked(program uint32) bool {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (d *Device) ProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) CurrentProgram() uint32 {
	var program int32
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &program)
	return uint32(program)
}

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

func (d *Device) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (d *Device) Uniform3f(location int32, x, y, z float32) { gl.Uniform3f(location, x, y, z) }

func (d *Device) UniformMatrix4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *Device) GenTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (d *Device) BindTexture(target glapi.Enum, texture uint32) {
	gl.BindTexture(uint32(target), texture)
}

func (d *Device) ActiveTexture(unit glapi.Enum) { gl.ActiveTexture(uint32(unit)) }

func (d *Device) TexParameteri(target, pname glapi.Enum, param int32) {
	gl.TexParameteri(uint32(target), uint32(pname), param)
}

func (d *Device) PixelStorei(pname glapi.Enum, param int32) {
	gl.PixelStorei(uint32(pname), param)
}

func (d *Device) TexImage2D(target glapi.Enum, level int32, internalFormat glapi.Enum, width, height int32, format, xtype glapi.Enum, pixels []byte) {
	gl.TexImage2D(
		uint32(target),
		level,
		int32(internalFormat),
		width,
		height,
		0,
		uint32(format),
		uint32(xtype),
		gl.Ptr(pixels),
	)
}

func (d *Device) GenerateMipmap(target glapi.Enum) { gl.GenerateMipmap(uint32(target)) }

func (d *Device) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

func (d *Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (d *Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (d *Device) Clear(mask glapi.Enum) { gl.Clear(uint32(mask)) }

func (d *Device) PolygonMode(face, mode glapi.Enum) { gl.PolygonMode(uint32(face), uint32(mode)) }

func (d *Device) DrawElements(mode glapi.Enum, count int32, xtype glapi.Enum, offset int) {
	gl.DrawElementsWithOffset(uint32(mode), count, uint32(xtype), uintptr(offset))
}

func (d *Device) DrawArrays(mode glapi.Enum, first, count int32) {
	gl.DrawArrays(uint32(mode), first, count)
}

func (d *Device) GetError() glapi.Enum { return glapi.Enum(gl.GetError()) }

var _ glapi.Device = (*Device)(nil)
