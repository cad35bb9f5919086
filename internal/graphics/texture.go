package graphics

import (
	"errors"
	"fmt"

	"glessons/internal/graphics/glapi"
	"glessons/internal/imageio"
)

// TextureOptions holds the sampler state set when a texture is created.
type TextureOptions struct {
	Wrap      glapi.Enum
	MinFilter glapi.Enum
	MagFilter glapi.Enum
}

// DefaultTextureOptions mirror-repeats and filters linearly between mip
// levels.
func DefaultTextureOptions() TextureOptions {
	return TextureOptions{
		Wrap:      glapi.MirroredRepeat,
		MinFilter: glapi.LinearMipmapLinear,
		MagFilter: glapi.Linear,
	}
}

// Texture is a 2D texture object tied to a fixed texture unit.
type Texture struct {
	dev    glapi.Device
	ID     uint32
	unit   uint32
	format glapi.Enum

	Width  int
	Height int
}

// FormatForChannels returns the pixel format matching a channel count.
func FormatForChannels(channels int) (glapi.Enum, error) {
	switch channels {
	case 1:
		return glapi.Red, nil
	case 2:
		return glapi.RG, nil
	case 3:
		return glapi.RGB, nil
	case 4:
		return glapi.RGBA, nil
	}
	return 0, fmt.Errorf("unsupported channel count %d", channels)
}

// ImageSource yields decoded images by path.
type ImageSource interface {
	DecodeFile(path string) (imageio.Image, error)
}

// LoadTexture decodes path and creates a texture for unit from it. A decode
// failure returns a *LoadError before any GL call is made.
func LoadTexture(dev glapi.Device, src ImageSource, path string, unit uint32, opts TextureOptions) (*Texture, error) {
	img, err := src.DecodeFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	tex, err := NewTexture(dev, img, unit, opts)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Path == "" {
			le.Path = path
		}
		return nil, err
	}
	return tex, nil
}

// NewTexture uploads img to a new texture object and generates its mipmap
// chain. The internal format follows the channel count.
func NewTexture(dev glapi.Device, img imageio.Image, unit uint32, opts TextureOptions) (*Texture, error) {
	format, err := FormatForChannels(img.Channels)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, &LoadError{Err: fmt.Errorf("invalid image size %dx%d", img.Width, img.Height)}
	}
	if want := img.Width * img.Height * img.Channels; len(img.Pix) != want {
		return nil, &LoadError{Err: fmt.Errorf("pixel buffer holds %d bytes, want %d", len(img.Pix), want)}
	}

	texture := dev.GenTexture()
	dev.BindTexture(glapi.Texture2D, texture)

	dev.TexParameteri(glapi.Texture2D, glapi.TextureWrapS, int32(opts.Wrap))
	dev.TexParameteri(glapi.Texture2D, glapi.TextureWrapT, int32(opts.Wrap))
	dev.TexParameteri(glapi.Texture2D, glapi.TextureMinFilter, int32(opts.MinFilter))
	dev.TexParameteri(glapi.Texture2D, glapi.TextureMagFilter, int32(opts.MagFilter))

	// rows of 3-channel images are not 4-byte aligned in general
	dev.PixelStorei(glapi.UnpackAlignment, 1)
	dev.TexImage2D(
		glapi.Texture2D,
		0,
		format,
		int32(img.Width),
		int32(img.Height),
		format,
		glapi.UnsignedByte,
		img.Pix,
	)
	dev.GenerateMipmap(glapi.Texture2D)

	dev.BindTexture(glapi.Texture2D, 0)

	if err := glapi.CheckError(dev, "texture upload"); err != nil {
		dev.DeleteTexture(texture)
		return nil, err
	}

	Logger().Debug("texture created",
		"texture", texture, "unit", unit, "width", img.Width, "height", img.Height, "channels", img.Channels)
	return &Texture{
		dev:    dev,
		ID:     texture,
		unit:   unit,
		format: format,
		Width:  img.Width,
		Height: img.Height,
	}, nil
}

// Bind binds the texture object to TEXTURE_2D of the active unit.
func (t *Texture) Bind() {
	t.dev.BindTexture(glapi.Texture2D, t.ID)
}

// Activate makes the texture's unit the active one. It does not bind.
func (t *Texture) Activate() {
	t.dev.ActiveTexture(glapi.Texture0 + glapi.Enum(t.unit))
}

// BindUnit activates the texture's unit and binds the texture there, the
// order GL needs for the binding to land on that unit.
func (t *Texture) BindUnit() {
	t.Activate()
	t.Bind()
}

// Unit returns the texture unit index this texture samples from.
func (t *Texture) Unit() uint32 { return t.unit }

// InternalFormat returns the format the pixels were uploaded with.
func (t *Texture) InternalFormat() glapi.Enum { return t.format }

// Destroy deletes the texture object. It is safe to call more than once.
func (t *Texture) Destroy() {
	if t == nil || t.ID == 0 {
		return
	}
	t.dev.DeleteTexture(t.ID)
	t.ID = 0
}
