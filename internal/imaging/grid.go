package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// GridOptions places coordinate lines over a map view that may be cropped
// and zoomed.
type GridOptions struct {
	// Spacing is the distance between lines in map pixels.
	Spacing int

	// Origin is the map coordinate shown at the view's top-left pixel.
	Origin image.Point

	// Scale is the number of view pixels per map pixel. 0 means 1.
	Scale float64

	// Labels prints "x,y" map coordinates at line intersections.
	Labels bool

	Color color.Color
}

var (
	gridColor       = color.NRGBA{255, 0, 0, 160}
	gridLabelColor  = color.White
	gridLabelShadow = color.NRGBA{0, 0, 0, 180}
)

// Grid returns a copy of img with lines at every map coordinate divisible by
// opts.Spacing. Lines are drawn at the left/top edge of the map pixel they
// mark.
func Grid(img image.Image, opts GridOptions) (*image.RGBA, error) {
	if opts.Spacing <= 0 {
		return nil, fmt.Errorf("grid spacing must be positive, got %d", opts.Spacing)
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	lineColor := opts.Color
	if lineColor == nil {
		lineColor = gridColor
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	xs := gridLines(opts.Origin.X, width, opts.Spacing, scale)
	ys := gridLines(opts.Origin.Y, height, opts.Spacing, scale)
	src := image.NewUniform(lineColor)

	for _, l := range xs {
		draw.Draw(result, image.Rect(l.view, 0, l.view+1, height), src, image.Point{}, draw.Over)
	}
	for _, l := range ys {
		draw.Draw(result, image.Rect(0, l.view, width, l.view+1), src, image.Point{}, draw.Over)
	}

	if opts.Labels {
		for _, ly := range ys {
			for _, lx := range xs {
				drawLabel(result, lx.view+2, ly.view+2, fmt.Sprintf("%d,%d", lx.mapped, ly.mapped))
			}
		}
	}

	return result, nil
}

type gridLine struct {
	mapped int // map coordinate
	view   int // position in the view
}

// gridLines lists the lines crossing a view of size pixels whose first pixel
// shows map coordinate origin. A line on the view's first pixel is skipped.
func gridLines(origin, size, spacing int, scale float64) []gridLine {
	first := (origin/spacing + 1) * spacing
	var lines []gridLine
	for m := first; ; m += spacing {
		v := int(float64(m-origin) * scale)
		if v >= size {
			break
		}
		lines = append(lines, gridLine{mapped: m, view: v})
	}
	return lines
}

// drawLabel writes text with its top-left corner at (x, y) on a translucent
// dark background.
func drawLabel(dst *image.RGBA, x, y int, text string) {
	metrics := labelFace.Metrics()
	w := font.MeasureString(labelFace, text).Ceil()
	h := metrics.Height.Ceil()

	bg := image.Rect(x-1, y-1, x+w+1, y+h)
	draw.Draw(dst, bg.Intersect(dst.Bounds()), image.NewUniform(gridLabelShadow), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(gridLabelColor),
		Face: labelFace,
		Dot:  fixed.P(x, y+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
}
