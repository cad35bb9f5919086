// Package gltest provides a recording glapi.Device for tests.
//
// The fake keeps enough GL state to check what the harness asked the driver
// to do: which buffers a vertex array captured, what a texture was uploaded
// with, which uniforms a program exposes and every draw call issued.
package gltest

import (
	"fmt"
	"regexp"
	"strings"

	"glessons/internal/graphics/glapi"

	"github.com/go-gl/mathgl/mgl32"
)

// Attrib is the captured state of one vertex attribute slot.
type Attrib struct {
	Size    int32
	Type    glapi.Enum
	Stride  int32
	Offset  int
	Buffer  uint32
	Enabled bool
}

// VertexArray is the captured state of a vertex array object.
type VertexArray struct {
	ElementBuffer uint32
	Attribs       map[uint32]*Attrib
}

// Buffer is a buffer object and its uploaded contents.
type Buffer struct {
	Size    int
	Usage   glapi.Enum
	Floats  []float32
	Indices []uint32
}

// Shader is a shader object.
type Shader struct {
	Kind     glapi.Enum
	Source   string
	Compiled bool
	Log      string
}

// Program is a program object with its active uniforms and their values.
type Program struct {
	Shaders  []uint32
	Linked   bool
	Log      string
	Uniforms map[string]int32
	Values   map[string]any
	names    map[int32]string
}

// Texture is a texture object.
type Texture struct {
	Params         map[glapi.Enum]int32
	InternalFormat glapi.Enum
	Format         glapi.Enum
	Width, Height  int32
	PixelBytes     int
	Mipmapped      bool
	Uploads        int
}

// DrawCall records one draw.
type DrawCall struct {
	Mode        glapi.Enum
	Indexed     bool
	Count       int32
	First       int32
	Offset      int
	VertexArray uint32
	Program     uint32
	PolygonMode glapi.Enum
	// Textures maps texture unit index to the texture bound there.
	Textures map[uint32]uint32
}

// Viewport is a viewport rectangle.
type Viewport struct {
	X, Y, Width, Height int32
}

// Device is an in-memory glapi.Device.
type Device struct {
	// CompileFunc decides whether a shader compiles. The default accepts
	// any source that declares a main function.
	CompileFunc func(kind glapi.Enum, src string) (ok bool, log string)
	// LinkFunc decides whether a program links. The default requires one
	// compiled vertex and one compiled fragment stage.
	LinkFunc func(p *Program) (ok bool, log string)
	// BufferSizeFunc overrides the size reported for a bound buffer.
	BufferSizeFunc func(target glapi.Enum, actual int) int

	VertexArrays map[uint32]*VertexArray
	Buffers      map[uint32]*Buffer
	Shaders      map[uint32]*Shader
	Programs     map[uint32]*Program
	Textures     map[uint32]*Texture

	BoundVertexArray uint32
	BoundArrayBuffer uint32
	CurrentProg      uint32
	ActiveUnit       glapi.Enum
	Units            map[glapi.Enum]uint32
	PixelStore       map[glapi.Enum]int32

	ClearColorValue [4]float32
	Clears          int
	Polygon         glapi.Enum
	Viewports       []Viewport
	Draws           []DrawCall

	// Calls lists every method invoked, in order.
	Calls []string

	errors []glapi.Enum
	nextID uint32
	// element buffer binding while no vertex array is bound
	defaultElement uint32
}

// New returns an empty device.
func New() *Device {
	return &Device{
		VertexArrays: make(map[uint32]*VertexArray),
		Buffers:      make(map[uint32]*Buffer),
		Shaders:      make(map[uint32]*Shader),
		Programs:     make(map[uint32]*Program),
		Textures:     make(map[uint32]*Texture),
		Units:        make(map[glapi.Enum]uint32),
		PixelStore:   make(map[glapi.Enum]int32),
		ActiveUnit:   glapi.Texture0,
		Polygon:      glapi.Fill,
	}
}

// PushError queues an error flag for the next GetError.
func (d *Device) PushError(code glapi.Enum) {
	d.errors = append(d.errors, code)
}

// Live reports how many objects of each kind have not been deleted.
func (d *Device) Live() (vertexArrays, buffers, shaders, programs, textures int) {
	return len(d.VertexArrays), len(d.Buffers), len(d.Shaders), len(d.Programs), len(d.Textures)
}

// LiveObjects is the sum of all live objects.
func (d *Device) LiveObjects() int {
	a, b, c, e, f := d.Live()
	return a + b + c + e + f
}

// Called reports whether method was invoked at least once.
func (d *Device) Called(method string) bool {
	for _, c := range d.Calls {
		if c == method {
			return true
		}
	}
	return false
}

// CallIndex returns the position of the first call to method, or -1.
func (d *Device) CallIndex(method string) int {
	for i, c := range d.Calls {
		if c == method {
			return i
		}
	}
	return -1
}

func (d *Device) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) GenVertexArray() uint32 {
	d.record("GenVertexArray")
	id := d.id()
	d.VertexArrays[id] = &VertexArray{Attribs: make(map[uint32]*Attrib)}
	return id
}

func (d *Device) BindVertexArray(vao uint32) {
	d.record("BindVertexArray")
	if vao != 0 && d.VertexArrays[vao] == nil {
		d.PushError(glapi.InvalidOperation)
		return
	}
	d.BoundVertexArray = vao
}

func (d *Device) DeleteVertexArray(vao uint32) {
	d.record("DeleteVertexArray")
	delete(d.VertexArrays, vao)
	if d.BoundVertexArray == vao {
		d.BoundVertexArray = 0
	}
}

func (d *Device) GenBuffer() uint32 {
	d.record("GenBuffer")
	id := d.id()
	d.Buffers[id] = &Buffer{}
	return id
}

// ElementBuffer returns the element buffer binding of the current vertex array.
func (d *Device) ElementBuffer() uint32 {
	if vao := d.VertexArrays[d.BoundVertexArray]; vao != nil {
		return vao.ElementBuffer
	}
	return d.defaultElement
}

func (d *Device) BindBuffer(target glapi.Enum, buffer uint32) {
	d.record("BindBuffer")
	if buffer != 0 && d.Buffers[buffer] == nil {
		d.PushError(glapi.InvalidOperation)
		return
	}
	switch target {
	case glapi.ArrayBuffer:
		d.BoundArrayBuffer = buffer
	case glapi.ElementArrayBuffer:
		if vao := d.VertexArrays[d.BoundVertexArray]; vao != nil {
			vao.ElementBuffer = buffer
		} else {
			d.defaultElement = buffer
		}
	default:
		d.PushError(glapi.InvalidEnum)
	}
}

func (d *Device) bound(target glapi.Enum) *Buffer {
	switch target {
	case glapi.ArrayBuffer:
		return d.Buffers[d.BoundArrayBuffer]
	case glapi.ElementArrayBuffer:
		return d.Buffers[d.ElementBuffer()]
	}
	return nil
}

func (d *Device) BufferDataFloat32(target glapi.Enum, data []float32, usage glapi.Enum) {
	d.record("BufferData")
	b := d.bound(target)
	if b == nil {
		d.PushError(glapi.InvalidOperation)
		return
	}
	b.Size = len(data) * 4
	b.Usage = usage
	b.Floats = append([]float32(nil), data...)
	b.Indices = nil
}

func (d *Device) BufferDataUint32(target glapi.Enum, data []uint32, usage glapi.Enum) {
	d.record("BufferData")
	b := d.bound(target)
	if b == nil {
		d.PushError(glapi.InvalidOperation)
		return
	}
	b.Size = len(data) * 4
	b.Usage = usage
	b.Indices = append([]uint32(nil), data...)
	b.Floats = nil
}

func (d *Device) BufferSize(target glapi.Enum) int {
	d.record("BufferSize")
	b := d.bound(target)
	if b == nil {
		d.PushError(glapi.InvalidOperation)
		return 0
	}
	if d.BufferSizeFunc != nil {
		return d.BufferSizeFunc(target, b.Size)
	}
	return b.Size
}

func (d *Device) DeleteBuffer(buffer uint32) {
	d.record("DeleteBuffer")
	delete(d.Buffers, buffer)
	if d.BoundArrayBuffer == buffer {
		d.BoundArrayBuffer = 0
	}
	for _, vao := range d.VertexArrays {
		if vao.ElementBuffer == buffer {
			vao.ElementBuffer = 0
		}
	}
}

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype glapi.Enum, stride int32, offset int) {
	d.record("VertexAttribPointer")
	vao := d.VertexArrays[d.BoundVertexArray]
	if vao == nil || d.BoundArrayBuffer == 0 {
		// core profile: no default vertex array, and a buffer must be bound
		d.PushError(glapi.InvalidOperation)
		return
	}
	a := vao.Attribs[index]
	if a == nil {
		a = &Attrib{}
		vao.Attribs[index] = a
	}
	a.Size, a.Type, a.Stride, a.Offset, a.Buffer = size, xtype, stride, offset, d.BoundArrayBuffer
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	d.record("EnableVertexAttribArray")
	vao := d.VertexArrays[d.BoundVertexArray]
	if vao == nil {
		d.PushError(glapi.InvalidOperation)
		return
	}
	a := vao.Attribs[index]
	if a == nil {
		a = &Attrib{}
		vao.Attribs[index] = a
	}
	a.Enabled = true
}

func (d *Device) CreateShader(kind glapi.Enum) uint32 {
	d.record("CreateShader")
	id := d.id()
	d.Shaders[id] = &Shader{Kind: kind}
	return id
}

func (d *Device) ShaderSource(shader uint32, src string) {
	d.record("ShaderSource")
	if s := d.Shaders[shader]; s != nil {
		s.Source = src
	}
}

func (d *Device) CompileShader(shader uint32) {
	d.record("CompileShader")
	s := d.Shaders[shader]
	if s == nil {
		d.PushError(glapi.InvalidValue)
		return
	}
	compile := d.CompileFunc
	if compile == nil {
		compile = defaultCompile
	}
	s.Compiled, s.Log = compile(s.Kind, s.Source)
}

func defaultCompile(_ glapi.Enum, src string) (bool, string) {
	if !strings.Contains(src, "void main") {
		return false, "0:1(1): error: no function `main' defined"
	}
	if strings.Count(src, "{") != strings.Count(src, "}") {
		return false, "0:1(1): error: syntax error, unexpected end of file"
	}
	return true, ""
}

func (d *Device) ShaderCompiled(shader uint32) bool {
	s := d.Shaders[shader]
	return s != nil && s.Compiled
}

func (d *Device) ShaderInfoLog(shader uint32) string {
	if s := d.Shaders[shader]; s != nil {
		return s.Log
	}
	return ""
}

func (d *Device) DeleteShader(shader uint32) {
	d.record("DeleteShader")
	delete(d.Shaders, shader)
}

func (d *Device) CreateProgram() uint32 {
	d.record("CreateProgram")
	id := d.id()
	d.Programs[id] = &Program{
		Uniforms: make(map[string]int32),
		Values:   make(map[string]any),
		names:    make(map[int32]string),
	}
	return id
}

func (d *Device) AttachShader(program, shader uint32) {
	d.record("AttachShader")
	if p := d.Programs[program]; p != nil {
		p.Shaders = append(p.Shaders, shader)
	}
}

var uniformDecl = regexp.MustCompile(`uniform\s+\w+\s+(\w+)\s*(\[\s*\d+\s*\])?\s*;`)

func (d *Device) LinkProgram(program uint32) {
	d.record("LinkProgram")
	p := d.Programs[program]
	if p == nil {
		d.PushError(glapi.InvalidValue)
		return
	}
	link := d.LinkFunc
	if link == nil {
		link = d.defaultLink
	}
	p.Linked, p.Log = link(p)
	if !p.Linked {
		return
	}
	var loc int32
	for _, id := range p.Shaders {
		s := d.Shaders[id]
		if s == nil {
			continue
		}
		for _, m := range uniformDecl.FindAllStringSubmatch(s.Source, -1) {
			if _, ok := p.Uniforms[m[1]]; ok {
				continue
			}
			p.Uniforms[m[1]] = loc
			p.names[loc] = m[1]
			loc++
		}
	}
}

func (d *Device) defaultLink(p *Program) (bool, string) {
	var vertex, fragment bool
	for _, id := range p.Shaders {
		s := d.Shaders[id]
		if s == nil || !s.Compiled {
			return false, "error: linking with uncompiled/unspecialized shader"
		}
		switch s.Kind {
		case glapi.VertexShader:
			vertex = true
		case glapi.FragmentShader:
			fragment = true
		}
	}
	if !vertex || !fragment {
		return false, "error: program lacks a vertex or fragment stage"
	}
	return true, ""
}

func (d *Device) ProgramLinked(program uint32) bool {
	p := d.Programs[program]
	return p != nil && p.Linked
}

func (d *Device) ProgramInfoLog(program uint32) string {
	if p := d.Programs[program]; p != nil {
		return p.Log
	}
	return ""
}

func (d *Device) UseProgram(program uint32) {
	d.record("UseProgram")
	if program != 0 {
		if p := d.Programs[program]; p == nil || !p.Linked {
			d.PushError(glapi.InvalidOperation)
			return
		}
	}
	d.CurrentProg = program
}

func (d *Device) CurrentProgram() uint32 { return d.CurrentProg }

func (d *Device) DeleteProgram(program uint32) {
	d.record("DeleteProgram")
	delete(d.Programs, program)
	if d.CurrentProg == program {
		d.CurrentProg = 0
	}
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	d.record("UniformLocation")
	p := d.Programs[program]
	if p == nil || !p.Linked {
		d.PushError(glapi.InvalidOperation)
		return -1
	}
	if loc, ok := p.Uniforms[name]; ok {
		return loc
	}
	return -1
}

func (d *Device) setUniform(location int32, v any) {
	if location == -1 {
		// silently ignored, as GL does
		return
	}
	p := d.Programs[d.CurrentProg]
	if p == nil {
		d.PushError(glapi.InvalidOperation)
		return
	}
	name, ok := p.names[location]
	if !ok {
		d.PushError(glapi.InvalidOperation)
		return
	}
	p.Values[name] = v
}

func (d *Device) Uniform1i(location int32, v int32) {
	d.record("Uniform1i")
	d.setUniform(location, v)
}

func (d *Device) Uniform1f(location int32, v float32) {
	d.record("Uniform1f")
	d.setUniform(location, v)
}

func (d *Device) Uniform3f(location int32, x, y, z float32) {
	d.record("Uniform3f")
	d.setUniform(location, mgl32.Vec3{x, y, z})
}

func (d *Device) UniformMatrix4(location int32, m mgl32.Mat4) {
	d.record("UniformMatrix4")
	d.setUniform(location, m)
}

func (d *Device) GenTexture() uint32 {
	d.record("GenTexture")
	id := d.id()
	d.Textures[id] = &Texture{Params: make(map[glapi.Enum]int32)}
	return id
}

func (d *Device) BindTexture(target glapi.Enum, texture uint32) {
	d.record("BindTexture")
	if texture != 0 && d.Textures[texture] == nil {
		d.PushError(glapi.InvalidOperation)
		return
	}
	d.Units[d.ActiveUnit] = texture
}

func (d *Device) ActiveTexture(unit glapi.Enum) {
	d.record("ActiveTexture")
	if unit < glapi.Texture0 || unit >= glapi.Texture0+32 {
		d.PushError(glapi.InvalidEnum)
		return
	}
	d.ActiveUnit = unit
}

func (d *Device) boundTexture() *Texture {
	return d.Textures[d.Units[d.ActiveUnit]]
}

func (d *Device) TexParameteri(target, pname glapi.Enum, param int32) {
	d.record("TexParameteri")
	t := d.boundTexture()
	if t == nil {
		d.PushError(glapi.InvalidOperation)
		return
	}
	t.Params[pname] = param
}

func (d *Device) PixelStorei(pname glapi.Enum, param int32) {
	d.record("PixelStorei")
	d.PixelStore[pname] = param
}

func (d *Device) TexImage2D(target glapi.Enum, level int32, internalFormat glapi.Enum, width, height int32, format, xtype glapi.Enum, pixels []byte) {
	d.record("TexImage2D")
	t := d.boundTexture()
	if t == nil {
		d.PushError(glapi.InvalidOperation)
		return
	}
	if pixels == nil {
		// uploading nothing is legal GL but never what the harness wants
		d.PushError(glapi.InvalidValue)
		return
	}
	t.InternalFormat, t.Format = internalFormat, format
	t.Width, t.Height = width, height
	t.PixelBytes = len(pixels)
	t.Mipmapped = false
	t.Uploads++
}

func (d *Device) GenerateMipmap(target glapi.Enum) {
	d.record("GenerateMipmap")
	t := d.boundTexture()
	if t == nil || t.Uploads == 0 {
		d.PushError(glapi.InvalidOperation)
		return
	}
	t.Mipmapped = true
}

func (d *Device) DeleteTexture(texture uint32) {
	d.record("DeleteTexture")
	delete(d.Textures, texture)
	for unit, tex := range d.Units {
		if tex == texture {
			d.Units[unit] = 0
		}
	}
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.record("Viewport")
	d.Viewports = append(d.Viewports, Viewport{x, y, width, height})
}

// LastViewport returns the most recent viewport, if any.
func (d *Device) LastViewport() (Viewport, bool) {
	if len(d.Viewports) == 0 {
		return Viewport{}, false
	}
	return d.Viewports[len(d.Viewports)-1], true
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.record("ClearColor")
	d.ClearColorValue = [4]float32{r, g, b, a}
}

func (d *Device) Clear(mask glapi.Enum) {
	d.record("Clear")
	d.Clears++
}

func (d *Device) PolygonMode(face, mode glapi.Enum) {
	d.record("PolygonMode")
	d.Polygon = mode
}

func (d *Device) textureBindings() map[uint32]uint32 {
	out := make(map[uint32]uint32, len(d.Units))
	for unit, tex := range d.Units {
		if tex != 0 {
			out[uint32(unit-glapi.Texture0)] = tex
		}
	}
	return out
}

func (d *Device) DrawElements(mode glapi.Enum, count int32, xtype glapi.Enum, offset int) {
	d.record("DrawElements")
	if d.VertexArrays[d.BoundVertexArray] == nil || d.ElementBuffer() == 0 {
		d.PushError(glapi.InvalidOperation)
		return
	}
	d.Draws = append(d.Draws, DrawCall{
		Mode:        mode,
		Indexed:     true,
		Count:       count,
		Offset:      offset,
		VertexArray: d.BoundVertexArray,
		Program:     d.CurrentProg,
		PolygonMode: d.Polygon,
		Textures:    d.textureBindings(),
	})
}

func (d *Device) DrawArrays(mode glapi.Enum, first, count int32) {
	d.record("DrawArrays")
	if d.VertexArrays[d.BoundVertexArray] == nil {
		d.PushError(glapi.InvalidOperation)
		return
	}
	d.Draws = append(d.Draws, DrawCall{
		Mode:        mode,
		Count:       count,
		First:       first,
		VertexArray: d.BoundVertexArray,
		Program:     d.CurrentProg,
		PolygonMode: d.Polygon,
		Textures:    d.textureBindings(),
	})
}

// DrawnIndices resolves an indexed draw to the vertex indices it referenced.
func (d *Device) DrawnIndices(dc DrawCall) []uint32 {
	vao := d.VertexArrays[dc.VertexArray]
	if vao == nil || !dc.Indexed {
		return nil
	}
	b := d.Buffers[vao.ElementBuffer]
	if b == nil {
		return nil
	}
	start := dc.Offset / 4
	end := start + int(dc.Count)
	if start < 0 || end > len(b.Indices) {
		return nil
	}
	return append([]uint32(nil), b.Indices[start:end]...)
}

func (d *Device) GetError() glapi.Enum {
	if len(d.errors) == 0 {
		return glapi.NoError
	}
	code := d.errors[0]
	d.errors = d.errors[1:]
	return code
}

var _ glapi.Device = (*Device)(nil)
