package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Ruler describes the scale bar band added below an exported map.
type Ruler struct {
	// Length is the bar length in image pixels.
	Length int `yaml:"length" json:"length"`

	// Height is the height of the band below the map, not counting Margin.
	Height int `yaml:"height" json:"height"`

	// Margin is the offset of the bar from the left edge and from the bottom
	// of the map. The band grows by Margin as well.
	Margin int `yaml:"margin" json:"margin"`

	// Thickness is the bar line width in pixels.
	Thickness int `yaml:"thickness" json:"thickness"`
}

// DefaultRuler returns a 200px bar in a 50px band with a 10px margin.
func DefaultRuler() Ruler {
	return Ruler{Length: 200, Height: 50, Margin: 10, Thickness: 2}
}

// labelGap is the space between the bar and the top of its label.
const labelGap = 5

var (
	labelFace  = basicfont.Face7x13
	rulerColor = color.Black
)

// ScaleLabel returns the physical length of a lengthPx bar in millimetres,
// e.g. "0.4 mm" for 200px at 2.0 µm/px.
func ScaleLabel(lengthPx int, micronPerPixel float64) string {
	return fmt.Sprintf("%.1f mm", float64(lengthPx)*micronPerPixel/1000)
}

// Annotate returns a copy of img with a white band below it holding a scale
// bar and its label. img is not modified and keeps its pixels in the top
// region of the result. Parts of the bar wider than img are clipped.
func Annotate(img image.Image, micronPerPixel float64, r Ruler) *image.NRGBA {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	canvas := imaging.New(width, height+r.Height+r.Margin, color.White)
	canvas = imaging.Paste(canvas, img, image.Pt(0, 0))

	barTop := height + r.Margin
	bar := image.Rect(r.Margin, barTop, r.Margin+r.Length, barTop+r.Thickness)
	draw.Draw(canvas, bar, image.NewUniform(rulerColor), image.Point{}, draw.Src)

	label := ScaleLabel(r.Length, micronPerPixel)
	textWidth := font.MeasureString(labelFace, label).Round()
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(rulerColor),
		Face: labelFace,
		Dot:  fixed.P(r.Margin+(r.Length-textWidth)/2, barTop+labelGap+labelFace.Metrics().Ascent.Ceil()),
	}
	d.DrawString(label)

	return canvas
}
