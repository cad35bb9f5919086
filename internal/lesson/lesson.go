// Package lesson defines the drawable lessons and the scene that renders one
// of them.
package lesson

import (
	"fmt"
	"slices"
	"sort"

	"glessons/internal/graphics"
)

// TextureSlot is a texture a lesson samples, bound to Unit and exposed to
// the fragment shader as the sampler uniform Sampler. Path is looked up in
// assets.Textures first, then on disk.
type TextureSlot struct {
	Path    string
	Unit    uint32
	Sampler string
}

// Lesson is the static description of one scene.
type Lesson struct {
	Name  string
	Title string

	Vertices []float32
	// Indices may be nil, in which case the vertices are drawn in order.
	Indices []uint32
	Layout  graphics.AttributeLayout

	// Shader names the directory under shaders/ holding shader.vert and
	// shader.frag.
	Shader   string
	Textures []TextureSlot

	// UsesTransform uploads the frame's composite matrix as "transform".
	UsesTransform bool
	Wireframe     bool
	ClearColor    [4]float32
}

// TransformUniform is the mat4 uniform that receives the composite matrix.
const TransformUniform = "transform"

var registry = map[string]Lesson{
	"triangle": {
		Name:  "triangle",
		Title: "Hello Triangle",
		Vertices: []float32{
			0.0, 0.5,
			-0.5, -0.5,
			0.5, -0.5,
		},
		Layout:     graphics.NewAttributeLayout(2),
		Shader:     "triangle",
		ClearColor: [4]float32{0.0, 0.0, 0.0, 1.0},
	},
	"quad": {
		Name:  "quad",
		Title: "Hello Quadrilateral",
		Vertices: []float32{
			// positions      // colors
			0.5, 0.5, 0.0, 1.0, 0.0, 0.0, // top right
			0.5, -0.5, 0.0, 0.0, 1.0, 0.0, // bottom right
			-0.5, -0.5, 0.0, 0.0, 0.0, 1.0, // bottom left
			-0.5, 0.5, 0.0, 0.9, 0.9, 0.7, // top left
		},
		Indices: []uint32{
			0, 1, 3,
			1, 2, 3,
		},
		Layout:     graphics.NewAttributeLayout(3, 3),
		Shader:     "quad",
		Wireframe:  true,
		ClearColor: [4]float32{0.1, 0.1, 0.3, 1.0},
	},
	"triplings": {
		Name:  "triplings",
		Title: "Hello Triplings",
		Vertices: []float32{
			0.0, 1.0, 0.0, 1.0, 0.0, 0.0, // top center
			-0.5, 0.0, 0.0, 0.0, 1.0, 0.0, // middle left
			0.5, 0.0, 0.0, 0.0, 0.0, 1.0, // middle right
			-1.0, -1.0, 0.0, 1.0, 0.0, 0.0, // bottom left
			0.0, -1.0, 0.0, 0.0, 0.0, 1.0, // bottom middle
			1.0, -1.0, 0.0, 1.0, 0.0, 0.0, // bottom right
		},
		Indices: []uint32{
			0, 1, 2,
			3, 1, 4,
			4, 2, 5,
		},
		Layout:     graphics.NewAttributeLayout(3, 3),
		Shader:     "triplings",
		ClearColor: [4]float32{0.1, 0.1, 0.3, 1.0},
	},
	"textures": {
		Name:       "textures",
		Title:      "Hello Textures",
		Vertices:   texturedQuad(),
		Indices:    []uint32{0, 1, 3, 1, 2, 3},
		Layout:     graphics.NewAttributeLayout(3, 3, 2),
		Shader:     "textures",
		Textures:   eyeTextures(),
		ClearColor: [4]float32{0.2, 0.3, 0.3, 1.0},
	},
	"transformations": {
		Name:          "transformations",
		Title:         "Hello Transformations",
		Vertices:      texturedQuad(),
		Indices:       []uint32{0, 1, 3, 1, 2, 3},
		Layout:        graphics.NewAttributeLayout(3, 3, 2),
		Shader:        "transformations",
		Textures:      eyeTextures(),
		UsesTransform: true,
		ClearColor:    [4]float32{0.15, 0.1, 0.25, 1.0},
	},
}

func texturedQuad() []float32 {
	return []float32{
		// positions      // colors        // uv
		0.5, 0.5, 0.0, 1.0, 0.0, 0.0, 1.0, 1.0, // top right
		0.5, -0.5, 0.0, 0.0, 1.0, 0.0, 1.0, 0.0, // bottom right
		-0.5, -0.5, 0.0, 0.0, 0.0, 1.0, 0.0, 0.0, // bottom left
		-0.5, 0.5, 0.0, 0.8, 0.8, 0.6, 0.0, 1.0, // top left
	}
}

func eyeTextures() []TextureSlot {
	return []TextureSlot{
		{Path: "textures/eye.png", Unit: 0, Sampler: "texture1"},
		{Path: "textures/neye.png", Unit: 1, Sampler: "texture2"},
	}
}

// Lookup returns a copy of the named lesson.
func Lookup(name string) (Lesson, error) {
	l, ok := registry[name]
	if !ok {
		return Lesson{}, fmt.Errorf("unknown lesson %q (have %v)", name, Names())
	}
	l.Vertices = slices.Clone(l.Vertices)
	l.Indices = slices.Clone(l.Indices)
	l.Textures = slices.Clone(l.Textures)
	l.Layout.Attributes = slices.Clone(l.Layout.Attributes)
	return l, nil
}

// Names lists the registered lessons in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
