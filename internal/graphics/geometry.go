package graphics

import (
	"fmt"

	"glessons/internal/graphics/glapi"
)

const floatSize = 4

// Attribute maps a run of floats inside each vertex to a shader input.
type Attribute struct {
	Location   uint32
	Components int32
	// Offset is the byte offset from the start of a vertex.
	Offset int
}

// AttributeLayout is the ordered attribute description of a vertex.
type AttributeLayout struct {
	Attributes []Attribute
}

// NewAttributeLayout builds a tightly packed layout: attribute i is bound to
// location i and follows attribute i-1 directly.
//
//	NewAttributeLayout(3, 3, 2) // position, color, texcoord
func NewAttributeLayout(components ...int32) AttributeLayout {
	attrs := make([]Attribute, len(components))
	offset := 0
	for i, c := range components {
		attrs[i] = Attribute{Location: uint32(i), Components: c, Offset: offset}
		offset += int(c) * floatSize
	}
	return AttributeLayout{Attributes: attrs}
}

// Stride returns the byte width of one vertex: the end of the last attribute.
func (l AttributeLayout) Stride() int {
	stride := 0
	for _, a := range l.Attributes {
		if end := a.Offset + int(a.Components)*floatSize; end > stride {
			stride = end
		}
	}
	return stride
}

// FloatsPerVertex returns Stride expressed in floats.
func (l AttributeLayout) FloatsPerVertex() int {
	return l.Stride() / floatSize
}

// Validate checks the layout against vertexBytes bytes of vertex data.
func (l AttributeLayout) Validate(vertexBytes int) error {
	stride := l.Stride()
	mismatch := func(format string, args ...any) error {
		return &LayoutMismatchError{Reason: fmt.Sprintf(format, args...), Stride: stride, VertexBytes: vertexBytes}
	}
	if len(l.Attributes) == 0 {
		return mismatch("layout has no attributes")
	}
	seen := make(map[uint32]bool, len(l.Attributes))
	end := 0
	for i, a := range l.Attributes {
		if a.Components < 1 || a.Components > 4 {
			return mismatch("attribute %d has %d components, want 1..4", i, a.Components)
		}
		if a.Offset%floatSize != 0 {
			return mismatch("attribute %d offset %d is not float aligned", i, a.Offset)
		}
		if a.Offset < end {
			return mismatch("attribute %d at offset %d overlaps the previous attribute ending at %d", i, a.Offset, end)
		}
		if seen[a.Location] {
			return mismatch("location %d is used twice", a.Location)
		}
		seen[a.Location] = true
		end = a.Offset + int(a.Components)*floatSize
	}
	if vertexBytes == 0 {
		return mismatch("no vertex data")
	}
	if vertexBytes%stride != 0 {
		return mismatch("vertex data is not a whole number of vertices")
	}
	return nil
}

// Drawable is anything that can be made the active draw source and drawn.
type Drawable interface {
	Bind()
	Draw()
}

// GeometryBuffer owns a vertex array, its vertex buffer and an optional
// index buffer. The data is uploaded once with static usage.
type GeometryBuffer struct {
	dev    glapi.Device
	layout AttributeLayout

	vao uint32
	vbo uint32
	ebo uint32

	vertexCount int
	indexCount  int
	bufferSize  int
}

// NewGeometryBuffer validates the layout, uploads vertices and indices and
// records the attribute layout in a new vertex array. Pass nil indices for
// non-indexed geometry. On error nothing stays allocated.
func NewGeometryBuffer(dev glapi.Device, vertices []float32, indices []uint32, layout AttributeLayout) (_ *GeometryBuffer, err error) {
	vertexBytes := len(vertices) * floatSize
	if err := layout.Validate(vertexBytes); err != nil {
		return nil, err
	}
	stride := layout.Stride()
	vertexCount := vertexBytes / stride
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return nil, &LayoutMismatchError{
				Reason:      fmt.Sprintf("index %d at position %d is out of range for %d vertices", idx, i, vertexCount),
				Stride:      stride,
				VertexBytes: vertexBytes,
			}
		}
	}

	geo := &GeometryBuffer{
		dev:         dev,
		layout:      layout,
		vertexCount: vertexCount,
		indexCount:  len(indices),
	}
	defer func() {
		if err != nil {
			dev.BindBuffer(glapi.ArrayBuffer, 0)
			dev.BindVertexArray(0)
			geo.Destroy()
		}
	}()

	// The vertex array must be bound first: buffer bindings and attribute
	// pointers are captured by whichever array is current.
	geo.vao = dev.GenVertexArray()
	dev.BindVertexArray(geo.vao)

	geo.vbo = dev.GenBuffer()
	dev.BindBuffer(glapi.ArrayBuffer, geo.vbo)
	dev.BufferDataFloat32(glapi.ArrayBuffer, vertices, glapi.StaticDraw)
	geo.bufferSize = dev.BufferSize(glapi.ArrayBuffer)
	if want := vertexCount * stride; geo.bufferSize != want {
		return nil, &LayoutMismatchError{
			Reason:      fmt.Sprintf("uploaded buffer holds %d bytes, want %d", geo.bufferSize, want),
			Stride:      stride,
			VertexBytes: vertexBytes,
		}
	}

	if len(indices) > 0 {
		geo.ebo = dev.GenBuffer()
		dev.BindBuffer(glapi.ElementArrayBuffer, geo.ebo)
		dev.BufferDataUint32(glapi.ElementArrayBuffer, indices, glapi.StaticDraw)
	}

	for _, a := range layout.Attributes {
		dev.VertexAttribPointer(a.Location, a.Components, glapi.Float, int32(stride), a.Offset)
		dev.EnableVertexAttribArray(a.Location)
	}

	// The attribute pointers hold the vertex buffer now, so it can be
	// unbound. The element buffer stays bound: unbinding it here would
	// clear it from the vertex array.
	dev.BindBuffer(glapi.ArrayBuffer, 0)
	dev.BindVertexArray(0)

	if err := glapi.CheckError(dev, "geometry upload"); err != nil {
		return nil, err
	}

	Logger().Debug("geometry created",
		"vao", geo.vao, "vertices", vertexCount, "indices", len(indices), "stride", stride)
	return geo, nil
}

// Bind makes this geometry the active draw source.
func (g *GeometryBuffer) Bind() {
	g.dev.BindVertexArray(g.vao)
}

// Draw issues one draw call for the whole geometry. Bind must precede it.
func (g *GeometryBuffer) Draw() {
	if g.ebo != 0 {
		g.dev.DrawElements(glapi.Triangles, int32(g.indexCount), glapi.UnsignedInt, 0)
		return
	}
	g.dev.DrawArrays(glapi.Triangles, 0, int32(g.vertexCount))
}

// Indexed reports whether the geometry has an index buffer.
func (g *GeometryBuffer) Indexed() bool { return g.ebo != 0 }

func (g *GeometryBuffer) VertexCount() int { return g.vertexCount }

func (g *GeometryBuffer) IndexCount() int { return g.indexCount }

// BufferSize is the vertex buffer size reported by the driver after upload.
func (g *GeometryBuffer) BufferSize() int { return g.bufferSize }

func (g *GeometryBuffer) Layout() AttributeLayout { return g.layout }

// Destroy releases the vertex array and buffers. It is safe to call more
// than once.
func (g *GeometryBuffer) Destroy() {
	if g == nil {
		return
	}
	if g.vao != 0 {
		g.dev.DeleteVertexArray(g.vao)
		g.vao = 0
	}
	if g.vbo != 0 {
		g.dev.DeleteBuffer(g.vbo)
		g.vbo = 0
	}
	if g.ebo != 0 {
		g.dev.DeleteBuffer(g.ebo)
		g.ebo = 0
	}
}
