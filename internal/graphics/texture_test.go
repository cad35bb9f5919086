package graphics

import (
	"errors"
	"os"
	"testing"

	"glessons/internal/graphics/glapi"
	"glessons/internal/graphics/gltest"
	"glessons/internal/imageio"
)

type stubSource struct {
	img imageio.Image
	err error
}

func (s stubSource) DecodeFile(string) (imageio.Image, error) { return s.img, s.err }

func solid(w, h, channels int) imageio.Image {
	pix := make([]byte, w*h*channels)
	for i := range pix {
		pix[i] = byte(10 * (i%channels + 1))
	}
	return imageio.Image{Width: w, Height: h, Channels: channels, Pix: pix}
}

func TestNewTextureFormatFollowsChannels(t *testing.T) {
	tests := []struct {
		channels int
		want     glapi.Enum
	}{
		{3, glapi.RGB},
		{4, glapi.RGBA},
	}
	for _, tt := range tests {
		// the same input must always produce the same upload
		for run := 0; run < 2; run++ {
			dev := gltest.New()
			tex, err := NewTexture(dev, solid(4, 2, tt.channels), 0, DefaultTextureOptions())
			if err != nil {
				t.Fatalf("NewTexture(%d channels): %v", tt.channels, err)
			}
			got := dev.Textures[tex.ID]
			if got.InternalFormat != tt.want || got.Format != tt.want || tex.InternalFormat() != tt.want {
				t.Fatalf("%d channels: got internal %v format %v, want %v", tt.channels, got.InternalFormat, got.Format, tt.want)
			}
			if got.Width != 4 || got.Height != 2 || got.PixelBytes != 4*2*tt.channels {
				t.Fatalf("upload: got %dx%d %d bytes", got.Width, got.Height, got.PixelBytes)
			}
		}
	}
}

func TestNewTextureParameters(t *testing.T) {
	dev := gltest.New()
	opts := TextureOptions{Wrap: glapi.ClampToEdge, MinFilter: glapi.Nearest, MagFilter: glapi.Nearest}
	tex, err := NewTexture(dev, solid(3, 3, 3), 1, opts)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}

	got := dev.Textures[tex.ID]
	want := map[glapi.Enum]int32{
		glapi.TextureWrapS:     int32(glapi.ClampToEdge),
		glapi.TextureWrapT:     int32(glapi.ClampToEdge),
		glapi.TextureMinFilter: int32(glapi.Nearest),
		glapi.TextureMagFilter: int32(glapi.Nearest),
	}
	for k, v := range want {
		if got.Params[k] != v {
			t.Fatalf("param 0x%x: got 0x%x, want 0x%x", uint32(k), got.Params[k], v)
		}
	}
	if !got.Mipmapped {
		t.Fatalf("mipmaps not generated")
	}
	if dev.PixelStore[glapi.UnpackAlignment] != 1 {
		t.Fatalf("unpack alignment: got %d, want 1", dev.PixelStore[glapi.UnpackAlignment])
	}
	if dev.Units[dev.ActiveUnit] != 0 {
		t.Fatalf("texture left bound after creation")
	}
}

func TestDefaultTextureOptions(t *testing.T) {
	opts := DefaultTextureOptions()
	if opts.Wrap != glapi.MirroredRepeat || opts.MinFilter != glapi.LinearMipmapLinear || opts.MagFilter != glapi.Linear {
		t.Fatalf("defaults: got %+v", opts)
	}
}

func TestNewTextureRejectsBadImages(t *testing.T) {
	tests := []struct {
		name string
		img  imageio.Image
	}{
		{"five channels", imageio.Image{Width: 1, Height: 1, Channels: 5, Pix: make([]byte, 5)}},
		{"short buffer", imageio.Image{Width: 2, Height: 2, Channels: 3, Pix: make([]byte, 11)}},
		{"empty", imageio.Image{Channels: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gltest.New()
			_, err := NewTexture(dev, tt.img, 0, DefaultTextureOptions())
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("got %v, want *LoadError", err)
			}
			if len(dev.Calls) != 0 {
				t.Fatalf("GL was called on a rejected image: %v", dev.Calls)
			}
		})
	}
}

func TestLoadTextureDecodeFailureMakesNoGLCalls(t *testing.T) {
	dev := gltest.New()
	src := stubSource{err: os.ErrNotExist}

	tex, err := LoadTexture(dev, src, "eye.jpg", 0, DefaultTextureOptions())
	if tex != nil {
		t.Fatalf("got a texture on failure")
	}
	var le *LoadError
	if !errors.As(err, &le) || le.Path != "eye.jpg" {
		t.Fatalf("got %v, want *LoadError for eye.jpg", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cause not wrapped: %v", err)
	}
	if len(dev.Calls) != 0 {
		t.Fatalf("GL was called: %v", dev.Calls)
	}
}

func TestLoadTextureValidationKeepsPath(t *testing.T) {
	dev := gltest.New()
	src := stubSource{img: imageio.Image{Width: 1, Height: 1, Channels: 7, Pix: make([]byte, 7)}}

	_, err := LoadTexture(dev, src, "odd.png", 0, DefaultTextureOptions())
	var le *LoadError
	if !errors.As(err, &le) || le.Path != "odd.png" {
		t.Fatalf("got %v, want *LoadError for odd.png", err)
	}
}

func TestTextureBindUnit(t *testing.T) {
	dev := gltest.New()
	first, err := NewTexture(dev, solid(2, 2, 3), 0, DefaultTextureOptions())
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	second, err := NewTexture(dev, solid(2, 2, 4), 1, DefaultTextureOptions())
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}

	first.BindUnit()
	second.BindUnit()

	if dev.Units[glapi.Texture0] != first.ID || dev.Units[glapi.Texture0+1] != second.ID {
		t.Fatalf("units: got %v, want 0:%d 1:%d", dev.Units, first.ID, second.ID)
	}
	if second.Unit() != 1 {
		t.Fatalf("unit: got %d, want 1", second.Unit())
	}
}

func TestTextureDestroy(t *testing.T) {
	dev := gltest.New()
	tex, err := NewTexture(dev, solid(2, 2, 3), 0, DefaultTextureOptions())
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	tex.Destroy()
	tex.Destroy()
	if dev.LiveObjects() != 0 {
		t.Fatalf("objects left: %d", dev.LiveObjects())
	}
}

func TestFormatForChannels(t *testing.T) {
	for channels, want := range map[int]glapi.Enum{1: glapi.Red, 2: glapi.RG, 3: glapi.RGB, 4: glapi.RGBA} {
		got, err := FormatForChannels(channels)
		if err != nil || got != want {
			t.Fatalf("FormatForChannels(%d): got %v, %v; want %v", channels, got, err, want)
		}
	}
	if _, err := FormatForChannels(0); err == nil {
		t.Fatalf("FormatForChannels(0): expected an error")
	}
}
