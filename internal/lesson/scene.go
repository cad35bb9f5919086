package lesson

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"path"

	"glessons/assets"
	"glessons/internal/graphics"
	"glessons/internal/graphics/glapi"
	"glessons/internal/graphics/renderer"
	"glessons/internal/imageio"
)

// SceneOptions overrides where a scene gets its resources from. Zero fields
// fall back to the embedded shaders, a flipping decoder over the embedded
// textures and the default texture options.
type SceneOptions struct {
	Shaders fs.FS
	// VertexSource and FragmentSource replace the lesson's shader files
	// when both are set.
	VertexSource   string
	FragmentSource string

	Images         graphics.ImageSource
	TextureOptions *graphics.TextureOptions
	// TexturePaths replaces the path of the texture slot at the same index;
	// empty entries keep the lesson's path.
	TexturePaths []string
}

// Scene renders one lesson. It implements renderer.Renderable.
type Scene struct {
	dev    glapi.Device
	lesson Lesson
	opts   SceneOptions

	program  *graphics.ShaderProgram
	geometry *graphics.GeometryBuffer
	textures []*graphics.Texture
}

// NewScene prepares a scene; GL objects are created by Init.
func NewScene(dev glapi.Device, l Lesson, opts SceneOptions) *Scene {
	if opts.Shaders == nil {
		opts.Shaders = assets.Shaders
	}
	if opts.Images == nil {
		opts.Images = imageio.Decoder{FlipVertically: true, FS: assets.Textures}
	}
	if opts.TextureOptions == nil {
		def := graphics.DefaultTextureOptions()
		opts.TextureOptions = &def
	}
	return &Scene{dev: dev, lesson: l, opts: opts}
}

// Lesson returns the lesson being drawn.
func (s *Scene) Lesson() Lesson { return s.lesson }

// Init builds the program, the geometry and the textures in that order. On
// failure everything created so far is destroyed again.
func (s *Scene) Init() (err error) {
	defer func() {
		if err != nil {
			s.Dispose()
		}
	}()

	if s.program, err = s.buildProgram(); err != nil {
		return fmt.Errorf("lesson %s: %w", s.lesson.Name, err)
	}

	s.geometry, err = graphics.NewGeometryBuffer(s.dev, s.lesson.Vertices, s.lesson.Indices, s.lesson.Layout)
	if err != nil {
		return fmt.Errorf("lesson %s: geometry: %w", s.lesson.Name, err)
	}

	for i, slot := range s.lesson.Textures {
		tex, err := s.loadTexture(i, slot)
		if err != nil {
			return fmt.Errorf("lesson %s: texture %d: %w", s.lesson.Name, i, err)
		}
		s.textures = append(s.textures, tex)
	}

	// samplers only need their unit once
	s.program.Use()
	for _, slot := range s.lesson.Textures {
		if err := s.program.SetInt(slot.Sampler, int32(slot.Unit)); err != nil && !isWarning(err) {
			return fmt.Errorf("lesson %s: %w", s.lesson.Name, err)
		}
	}
	return nil
}

func (s *Scene) buildProgram() (*graphics.ShaderProgram, error) {
	if s.opts.VertexSource != "" && s.opts.FragmentSource != "" {
		return graphics.NewShaderProgram(s.dev, s.opts.VertexSource, s.opts.FragmentSource)
	}
	dir := path.Join("shaders", s.lesson.Shader)
	return graphics.LoadShaderProgram(s.dev, s.opts.Shaders, path.Join(dir, "shader.vert"), path.Join(dir, "shader.frag"))
}

// loadTexture falls back to a checkerboard when the image cannot be loaded.
func (s *Scene) loadTexture(i int, slot TextureSlot) (*graphics.Texture, error) {
	p := slot.Path
	if i < len(s.opts.TexturePaths) && s.opts.TexturePaths[i] != "" {
		p = s.opts.TexturePaths[i]
	}

	tex, err := graphics.LoadTexture(s.dev, s.opts.Images, p, slot.Unit, *s.opts.TextureOptions)
	var le *graphics.LoadError
	if !errors.As(err, &le) {
		return tex, err
	}

	graphics.Logger().Warn("texture unavailable, using placeholder", "path", p, "unit", slot.Unit, "err", err)
	return graphics.NewTexture(s.dev, placeholder(), slot.Unit, *s.opts.TextureOptions)
}

func placeholder() imageio.Image {
	return imageio.Checkerboard(64, 8, 4,
		color.NRGBA{R: 255, B: 255, A: 255},
		color.NRGBA{A: 255})
}

// Render draws the lesson with one draw call. A missing transform uniform
// is returned as a warning after the draw has been issued.
func (s *Scene) Render(ctx renderer.RenderContext) error {
	s.program.Use()
	for _, tex := range s.textures {
		tex.BindUnit()
	}

	var warn error
	if s.lesson.UsesTransform {
		if err := s.program.SetMatrix4(TransformUniform, ctx.Transform); err != nil {
			if !isWarning(err) {
				return err
			}
			warn = err
		}
	}

	s.geometry.Bind()
	s.geometry.Draw()
	return warn
}

// SetViewport is a no-op: lessons draw in normalized device coordinates.
func (s *Scene) SetViewport(width, height int) {}

// Dispose destroys textures, geometry and program in reverse creation order.
func (s *Scene) Dispose() {
	for i := len(s.textures) - 1; i >= 0; i-- {
		s.textures[i].Destroy()
	}
	s.textures = nil
	if s.geometry != nil {
		s.geometry.Destroy()
		s.geometry = nil
	}
	if s.program != nil {
		s.program.Destroy()
		s.program = nil
	}
}

func isWarning(err error) bool {
	var w *graphics.UniformNotFoundWarning
	return errors.As(err, &w)
}

var _ renderer.Renderable = (*Scene)(nil)
