package lesson

import (
	"errors"
	"os"
	"slices"
	"strings"
	"testing"

	"glessons/internal/graphics"
	"glessons/internal/graphics/glapi"
	"glessons/internal/graphics/gltest"
	"glessons/internal/graphics/renderer"
	"glessons/internal/imageio"

	"github.com/go-gl/mathgl/mgl32"
)

type stubImages struct {
	img   imageio.Image
	err   error
	paths []string
}

func (s *stubImages) DecodeFile(path string) (imageio.Image, error) {
	s.paths = append(s.paths, path)
	return s.img, s.err
}

func rgbImage() imageio.Image {
	return imageio.Image{Width: 2, Height: 2, Channels: 3, Pix: make([]byte, 12)}
}

func mustLookup(t *testing.T, name string) Lesson {
	t.Helper()
	l, err := Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	return l
}

func TestEveryLessonInitializes(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			dev := gltest.New()
			s := NewScene(dev, mustLookup(t, name), SceneOptions{Images: &stubImages{img: rgbImage()}})
			if err := s.Init(); err != nil {
				t.Fatalf("Init: %v", err)
			}
			if err := s.Render(renderer.RenderContext{Transform: mgl32.Ident4()}); err != nil {
				t.Fatalf("Render: %v", err)
			}
			l := s.Lesson()
			if len(dev.Draws) != 1 || dev.Draws[0].Indexed != (l.Indices != nil) {
				t.Fatalf("got draws %+v, want one draw (indexed %v)", dev.Draws, l.Indices != nil)
			}
			s.Dispose()
			if dev.LiveObjects() != 0 {
				t.Fatalf("objects left after Dispose: %d", dev.LiveObjects())
			}
		})
	}
}

func TestQuadDrawsTwoTriangles(t *testing.T) {
	dev := gltest.New()
	s := NewScene(dev, mustLookup(t, "quad"), SceneOptions{})
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Dispose()

	for _, mode := range []glapi.Enum{glapi.Line, glapi.Fill} {
		dev.Draws = nil
		dev.PolygonMode(glapi.FrontAndBack, mode)
		if err := s.Render(renderer.RenderContext{}); err != nil {
			t.Fatalf("Render: %v", err)
		}
		got := dev.DrawnIndices(dev.Draws[0])
		if want := []uint32{0, 1, 3, 1, 2, 3}; !slices.Equal(got, want) {
			t.Fatalf("mode %v: indices got %v, want %v", mode, got, want)
		}
	}
}

func TestTriangleDrawsArrays(t *testing.T) {
	dev := gltest.New()
	s := NewScene(dev, mustLookup(t, "triangle"), SceneOptions{})
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Dispose()

	if err := s.Render(renderer.RenderContext{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	dc := dev.Draws[0]
	if dc.Indexed || dc.Count != 3 || dc.First != 0 {
		t.Fatalf("got %+v, want an array draw of 3 vertices", dc)
	}
}

func TestTransformationsBindsUnitsAndTransform(t *testing.T) {
	dev := gltest.New()
	images := &stubImages{img: rgbImage()}
	s := NewScene(dev, mustLookup(t, "transformations"), SceneOptions{Images: images})
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Dispose()

	prog := dev.Programs[s.program.ID]
	if prog.Values["texture1"] != int32(0) || prog.Values["texture2"] != int32(1) {
		t.Fatalf("samplers: got %v / %v, want 0 / 1", prog.Values["texture1"], prog.Values["texture2"])
	}
	if !slices.Equal(images.paths, []string{"textures/eye.png", "textures/neye.png"}) {
		t.Fatalf("decoded paths: got %v", images.paths)
	}

	m := graphics.TransformState{X: 0.1, Y: 0.2}.Composite(1)
	if err := s.Render(renderer.RenderContext{Transform: m}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if prog.Values[TransformUniform] != m {
		t.Fatalf("transform: got %v, want %v", prog.Values[TransformUniform], m)
	}

	dc := dev.Draws[0]
	if dc.Textures[0] != s.textures[0].ID || dc.Textures[1] != s.textures[1].ID || dc.Textures[0] == dc.Textures[1] {
		t.Fatalf("units at draw time: got %v", dc.Textures)
	}
	if dc.Program != s.program.ID {
		t.Fatalf("draw used program %d, want %d", dc.Program, s.program.ID)
	}
}

func TestMissingTextureFallsBackToPlaceholder(t *testing.T) {
	dev := gltest.New()
	s := NewScene(dev, mustLookup(t, "textures"), SceneOptions{Images: &stubImages{err: os.ErrNotExist}})
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Dispose()

	if len(s.textures) != 2 {
		t.Fatalf("got %d textures, want 2", len(s.textures))
	}
	for _, tex := range s.textures {
		if tex.Width != 64 || tex.InternalFormat() != glapi.RGBA {
			t.Fatalf("placeholder: got %dx%d %v", tex.Width, tex.Height, tex.InternalFormat())
		}
	}
}

func TestDefaultTexturesComeFromTheEmbeddedAssets(t *testing.T) {
	// the package directory holds no textures/, so only the embedded copy can serve them
	dev := gltest.New()
	s := NewScene(dev, mustLookup(t, "textures"), SceneOptions{})
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Dispose()

	// the placeholder is 64x64
	for i, tex := range s.textures {
		if tex.Width != 128 || tex.Height != 128 {
			t.Fatalf("texture %d: got %dx%d, want the 128x128 asset", i, tex.Width, tex.Height)
		}
	}
}

func TestTexturePathOverride(t *testing.T) {
	dev := gltest.New()
	images := &stubImages{img: rgbImage()}
	s := NewScene(dev, mustLookup(t, "textures"), SceneOptions{
		Images:       images,
		TexturePaths: []string{"", "other.png"},
	})
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Dispose()

	if !slices.Equal(images.paths, []string{"textures/eye.png", "other.png"}) {
		t.Fatalf("decoded paths: got %v", images.paths)
	}
}

func TestInitFailureLeavesNothing(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*gltest.Device)
		check func(error) bool
	}{
		{
			name: "compile",
			setup: func(d *gltest.Device) {
				d.CompileFunc = func(kind glapi.Enum, _ string) (bool, string) {
					return kind != glapi.FragmentShader, "0:3(1): error: bad"
				}
			},
			check: func(err error) bool { var ce *graphics.CompileError; return errors.As(err, &ce) },
		},
		{
			name: "link",
			setup: func(d *gltest.Device) {
				d.LinkFunc = func(*gltest.Program) (bool, string) { return false, "link failed" }
			},
			check: func(err error) bool { var le *graphics.LinkError; return errors.As(err, &le) },
		},
		{
			name: "geometry",
			setup: func(d *gltest.Device) {
				d.BufferSizeFunc = func(_ glapi.Enum, n int) int { return n / 2 }
			},
			check: func(err error) bool { var lm *graphics.LayoutMismatchError; return errors.As(err, &lm) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gltest.New()
			tt.setup(dev)
			s := NewScene(dev, mustLookup(t, "transformations"), SceneOptions{Images: &stubImages{img: rgbImage()}})
			err := s.Init()
			if !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if dev.LiveObjects() != 0 {
				t.Fatalf("objects leaked: %d", dev.LiveObjects())
			}
		})
	}
}

func TestMissingTransformUniformIsAWarning(t *testing.T) {
	vs := "#version 410 core\nlayout (location = 0) in vec3 aPos;\nvoid main() { gl_Position = vec4(aPos, 1.0); }\n"
	fs := "#version 410 core\nout vec4 FragColor;\nvoid main() { FragColor = vec4(1.0); }\n"

	dev := gltest.New()
	s := NewScene(dev, mustLookup(t, "transformations"), SceneOptions{
		VertexSource:   vs,
		FragmentSource: fs,
		Images:         &stubImages{img: rgbImage()},
	})
	// the sampler uniforms are missing too; Init must still succeed
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Dispose()

	err := s.Render(renderer.RenderContext{Transform: mgl32.Ident4()})
	var w *graphics.UniformNotFoundWarning
	if !errors.As(err, &w) || w.Name != TransformUniform {
		t.Fatalf("got %v, want a warning for %q", err, TransformUniform)
	}
	if len(dev.Draws) != 1 {
		t.Fatalf("draw must still be issued, got %d", len(dev.Draws))
	}
}

func TestLookup(t *testing.T) {
	if _, err := Lookup("hello-cube"); err == nil || !strings.Contains(err.Error(), "unknown lesson") {
		t.Fatalf("got %v, want unknown lesson", err)
	}
	if want := []string{"quad", "textures", "transformations", "triangle", "triplings"}; !slices.Equal(Names(), want) {
		t.Fatalf("Names: got %v, want %v", Names(), want)
	}

	l := mustLookup(t, "quad")
	l.Vertices[0] = 42
	if mustLookup(t, "quad").Vertices[0] == 42 {
		t.Fatalf("Lookup must return a copy")
	}
}

func TestLessonLayoutsMatchData(t *testing.T) {
	for _, name := range Names() {
		l := mustLookup(t, name)
		if err := l.Layout.Validate(len(l.Vertices) * 4); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}
