package imageio

import "image/color"

// Checkerboard builds a size×size image of alternating cells, used in place
// of a texture that failed to load. Each pixel keeps the first channels
// components of R, G, B, A; counts outside 1..4 are treated as 4.
func Checkerboard(size, cell, channels int, a, b color.NRGBA) Image {
	if cell <= 0 {
		cell = 1
	}
	if channels < 1 || channels > 4 {
		channels = 4
	}
	img := Image{Width: size, Height: size, Channels: channels, Pix: make([]byte, 0, size*size*channels)}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			px := [4]byte{c.R, c.G, c.B, c.A}
			img.Pix = append(img.Pix, px[:channels]...)
		}
	}
	return img
}
