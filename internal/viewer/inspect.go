package viewer

import (
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/minmap-viewer/internal/imaging"
	"github.com/ironsheep/minmap-viewer/internal/mapfile"
)

// LegendEntry is one mineral with its current display color.
type LegendEntry struct {
	Name   string `json:"name"`
	ID     int    `json:"id"`
	Color  string `json:"color"`
	Pixels int    `json:"pixels"`
}

// Legend lists the minerals of the loaded map in file order.
func (s *Session) Legend() ([]LegendEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNoMap
	}
	return s.legend(), nil
}

// legend builds the entries. Callers hold s.mu.
func (s *Session) legend() []LegendEntry {
	counts := s.doc.Pixels.Counts()
	minerals := s.doc.Legend.Minerals()
	entries := make([]LegendEntry, 0, len(minerals))
	for _, m := range minerals {
		c, _ := s.colors.Color(m.ID)
		entries = append(entries, LegendEntry{
			Name:   m.Name,
			ID:     m.ID,
			Color:  c.Hex(),
			Pixels: counts[m.ID],
		})
	}
	return entries
}

// PixelSample describes what is shown at one map pixel.
type PixelSample struct {
	X int `json:"x"`
	Y int `json:"y"`

	// Listed is false for grid positions absent from the pixel listing.
	Listed    bool   `json:"listed"`
	MineralID int    `json:"mineral_id"`
	Mineral   string `json:"mineral,omitempty"`

	Color imaging.ColorResult `json:"color"`
}

// SamplePixel reports the mineral and displayed color at (x, y).
func (s *Session) SamplePixel(x, y int) (*PixelSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNoMap
	}

	at := mapfile.Coord{X: x, Y: y}
	if !s.doc.Dims.Contains(at) {
		return nil, fmt.Errorf("failed to sample pixel: coordinates (%d,%d) outside %dx%d map",
			x, y, s.doc.Dims.Width, s.doc.Dims.Height)
	}

	sample := &PixelSample{X: x, Y: y, Color: *imaging.DescribeColor(s.buf.At(x, y).RGBA())}
	if id, ok := s.doc.Pixels[at]; ok {
		sample.Listed = true
		sample.MineralID = id
		sample.Mineral, _ = s.doc.Legend.Name(id)
	}
	return sample, nil
}

// MineralAbundance is the share of the map covered by one mineral.
type MineralAbundance struct {
	Name    string  `json:"name"`
	ID      int     `json:"id"`
	Pixels  int     `json:"pixels"`
	Percent float64 `json:"percent"`

	// AreaMM2 is Pixels times the pixel area from the header pixel size.
	AreaMM2 float64 `json:"area_mm2"`
}

// Abundance returns per-mineral pixel counts, percentages of all listed
// pixels, and areas, sorted by decreasing pixel count. Pixels whose ID is
// missing from the legend are reported under an empty name.
func (s *Session) Abundance() ([]MineralAbundance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNoMap
	}

	total := len(s.doc.Pixels)
	pixelArea := s.doc.PixelSizeMicrons * s.doc.PixelSizeMicrons / 1e6

	counts := s.doc.Pixels.Counts()
	seen := make(map[int]bool)
	var out []MineralAbundance
	add := func(name string, id int) {
		n := counts[id]
		out = append(out, MineralAbundance{
			Name:    name,
			ID:      id,
			Pixels:  n,
			Percent: roundTo(percent(n, total), 2),
			AreaMM2: roundTo(float64(n)*pixelArea, 6),
		})
	}

	for _, m := range s.doc.Legend.Minerals() {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		add(m.Name, m.ID)
	}
	for id := range counts {
		if !seen[id] {
			add("", id)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pixels != out[j].Pixels {
			return out[i].Pixels > out[j].Pixels
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
