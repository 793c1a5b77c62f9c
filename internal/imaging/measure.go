package imaging

import (
	"math"
)

// Point represents a 2D point
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DistanceResult contains measurement information
type DistanceResult struct {
	From           Point   `json:"from"`
	To             Point   `json:"to"`
	DeltaX         int     `json:"delta_x"`
	DeltaY         int     `json:"delta_y"`
	DistancePixels float64 `json:"distance_pixels"`
	DistanceMicron float64 `json:"distance_um"`
	DistanceMM     float64 `json:"distance_mm"`

	// AngleDegrees is 0 for a horizontal line to the right and 90 downward.
	AngleDegrees float64 `json:"angle_degrees"`
}

// MeasureDistance calculates the distance between two pixel centres in pixels
// and in physical units.
func MeasureDistance(from, to Point, micronPerPixel float64) *DistanceResult {
	deltaX := to.X - from.X
	deltaY := to.Y - from.Y

	distance := math.Hypot(float64(deltaX), float64(deltaY))
	angle := math.Atan2(float64(deltaY), float64(deltaX)) * 180 / math.Pi
	microns := distance * micronPerPixel

	return &DistanceResult{
		From:           from,
		To:             to,
		DeltaX:         deltaX,
		DeltaY:         deltaY,
		DistancePixels: math.Round(distance*100) / 100,
		DistanceMicron: math.Round(microns*100) / 100,
		DistanceMM:     math.Round(microns) / 1000,
		AngleDegrees:   math.Round(angle*10) / 10,
	}
}
