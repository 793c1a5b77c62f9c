package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// PreviewResult contains a rendered map image for display.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Zoom enlarges or shrinks img by scale with nearest-neighbour sampling so
// mineral boundaries stay sharp. A scale of 0 or 1 returns img unchanged.
func Zoom(img image.Image, scale float64) (image.Image, error) {
	if scale < 0 {
		return nil, fmt.Errorf("invalid preview scale %v", scale)
	}
	if scale == 0 || scale == 1.0 {
		return img, nil
	}

	newWidth := int(float64(img.Bounds().Dx()) * scale)
	newHeight := int(float64(img.Bounds().Dy()) * scale)
	if newWidth < 1 || newHeight < 1 {
		return nil, fmt.Errorf("preview scale %v collapses the image", scale)
	}
	return imaging.Resize(img, newWidth, newHeight, imaging.NearestNeighbor), nil
}

// Preview encodes img as a base64 PNG after applying Zoom.
func Preview(img image.Image, scale float64) (*PreviewResult, error) {
	out, err := Zoom(img, scale)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Highlight keeps the pixels selected by mask in color and turns all others
// into dimmed grayscale. mask is row-major over img's bounds; dim ranges 0-1.
func Highlight(img image.Image, mask []bool, dim float64) (*image.RGBA, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if len(mask) != width*height {
		return nil, fmt.Errorf("highlight mask has %d entries for a %dx%d image", len(mask), width, height)
	}

	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	muted := adjust.Brightness(effect.Grayscale(img), -dim)
	origin := muted.Bounds().Min
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask[y*width+x] {
				result.SetRGBA(x, y, muted.RGBAAt(origin.X+x, origin.Y+y))
			}
		}
	}

	return result, nil
}
