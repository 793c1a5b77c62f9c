// Package raster turns a sparse pixel listing and a color mapping into a dense
// RGB buffer.
package raster

import (
	"bytes"
	"image"

	"github.com/ironsheep/minmap-viewer/internal/colormap"
	"github.com/ironsheep/minmap-viewer/internal/mapfile"
)

// Palette resolves mineral IDs to colors. *colormap.Store satisfies it.
type Palette interface {
	Color(id int) (colormap.RGB, bool)
}

// Buffer is a dense Height x Width x 3 RGB raster, row-major.
type Buffer struct {
	Width  int
	Height int

	// Pix holds R, G, B for pixel (x, y) at offset (y*Width+x)*3.
	Pix []uint8

	// Unmapped counts listed pixels per mineral ID that had no color and were
	// left black.
	Unmapped map[int]int
}

// Build renders pixels into a new buffer of size dims. Pixels whose mineral
// has no color in palette stay black. Coordinates outside dims are ignored.
func Build(pixels mapfile.PixelListing, dims mapfile.Dimensions, palette Palette) *Buffer {
	buf := &Buffer{
		Width:    dims.Width,
		Height:   dims.Height,
		Pix:      make([]uint8, dims.Width*dims.Height*3),
		Unmapped: make(map[int]int),
	}

	for c, id := range pixels {
		if !dims.Contains(c) {
			continue
		}
		rgb, ok := palette.Color(id)
		if !ok {
			buf.Unmapped[id]++
			continue
		}
		i := buf.offset(c.X, c.Y)
		buf.Pix[i] = rgb.R
		buf.Pix[i+1] = rgb.G
		buf.Pix[i+2] = rgb.B
	}

	return buf
}

func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * 3
}

// At returns the color at column x, row y. Out-of-range positions are black.
func (b *Buffer) At(x, y int) colormap.RGB {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return colormap.Black
	}
	i := b.offset(x, y)
	return colormap.RGB{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2]}
}

// Equal reports whether both buffers have the same size and pixel bytes.
func (b *Buffer) Equal(other *Buffer) bool {
	if other == nil {
		return false
	}
	return b.Width == other.Width && b.Height == other.Height && bytes.Equal(b.Pix, other.Pix)
}

// Image converts the buffer to an opaque *image.RGBA with origin (0, 0).
func (b *Buffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.Width*3 : (y+1)*b.Width*3]
		dst := img.Pix[y*img.Stride : y*img.Stride+b.Width*4]
		for x := 0; x < b.Width; x++ {
			dst[x*4] = src[x*3]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 255
		}
	}
	return img
}

// Mask marks, row-major, the listed pixels whose mineral is one of ids.
func Mask(pixels mapfile.PixelListing, dims mapfile.Dimensions, ids ...int) []bool {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	mask := make([]bool, dims.Width*dims.Height)
	for c, id := range pixels {
		if want[id] && dims.Contains(c) {
			mask[c.Y*dims.Width+c.X] = true
		}
	}
	return mask
}
