// Package imageio decodes image files into tightly packed pixel buffers
// ready for texture upload.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a decoded image: Height rows of Width pixels with Channels bytes
// each, no row padding.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Decoder turns image files into Images.
type Decoder struct {
	// FlipVertically stores the bottom row first, the order GL expects for
	// texture coordinate (0,0).
	FlipVertically bool
	// FS is searched before the local file system. Paths it does not hold
	// are opened from disk.
	FS fs.FS
}

// DecodeFile opens and decodes the image at path.
func (d Decoder) DecodeFile(path string) (Image, error) {
	file, err := d.open(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return d.Decode(file)
}

func (d Decoder) open(path string) (io.ReadCloser, error) {
	if d.FS != nil && fs.ValidPath(path) {
		f, err := d.FS.Open(path)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return os.Open(path)
}

// Decode reads one image from r. Opaque color models (JPEG, grayscale, CMYK)
// produce three channels, everything else four.
func (d Decoder) Decode(r io.Reader) (Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return d.FromImage(img), nil
}

// FromImage converts an in-memory image.
func (d Decoder) FromImage(img image.Image) Image {
	channels := channelCount(img)

	var nrgba *image.NRGBA
	if d.FlipVertically {
		nrgba = imaging.FlipV(img)
	} else {
		nrgba = imaging.Clone(img)
	}

	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	out := Image{Width: w, Height: h, Channels: channels}
	if channels == 4 {
		out.Pix = packRows(nrgba, w, h)
		return out
	}

	out.Pix = make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			out.Pix = append(out.Pix, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return out
}

func packRows(img *image.NRGBA, w, h int) []byte {
	if img.Stride == w*4 {
		return img.Pix[:w*h*4]
	}
	pix := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		pix = append(pix, img.Pix[y*img.Stride:y*img.Stride+w*4]...)
	}
	return pix
}

func channelCount(img image.Image) int {
	switch img.ColorModel() {
	case color.YCbCrModel, color.GrayModel, color.Gray16Model, color.CMYKModel:
		return 3
	}
	if p, ok := img.(*image.Paletted); ok && p.Opaque() {
		return 3
	}
	return 4
}
