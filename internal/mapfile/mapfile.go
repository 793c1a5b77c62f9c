package mapfile

// PixelSizeKey is the header entry holding the physical size of one pixel in
// microns.
const PixelSizeKey = "Pixel size"

// Header holds the key/value entries of the <Header> section.
type Header map[string]string

// Mineral is one legend entry.
type Mineral struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// Legend maps mineral names to mineral IDs, preserving file order.
//
// Names are unique: a repeated name keeps its first position and takes the
// last ID. IDs are not required to be unique.
type Legend struct {
	minerals []Mineral
	index    map[string]int
}

// NewLegend builds a legend from entries in file order.
func NewLegend(entries ...Mineral) *Legend {
	l := &Legend{index: make(map[string]int)}
	for _, m := range entries {
		l.add(m.Name, m.ID)
	}
	return l
}

func (l *Legend) add(name string, id int) {
	if i, ok := l.index[name]; ok {
		l.minerals[i].ID = id
		return
	}
	l.index[name] = len(l.minerals)
	l.minerals = append(l.minerals, Mineral{Name: name, ID: id})
}

// Minerals returns a copy of the entries in file order.
func (l *Legend) Minerals() []Mineral {
	out := make([]Mineral, len(l.minerals))
	copy(out, l.minerals)
	return out
}

// ID returns the mineral ID registered for name.
func (l *Legend) ID(name string) (int, bool) {
	i, ok := l.index[name]
	if !ok {
		return 0, false
	}
	return l.minerals[i].ID, true
}

// Name returns the first mineral name registered with id.
func (l *Legend) Name(id int) (string, bool) {
	for _, m := range l.minerals {
		if m.ID == id {
			return m.Name, true
		}
	}
	return "", false
}

// Len returns the number of distinct mineral names.
func (l *Legend) Len() int {
	return len(l.minerals)
}

// Coord is a pixel position. X is the column, Y the row.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PixelListing maps pixel coordinates to mineral IDs.
type PixelListing map[Coord]int

// Dimensions is the size of the pixel grid.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether c lies inside the grid.
func (d Dimensions) Contains(c Coord) bool {
	return c.X >= 0 && c.X < d.Width && c.Y >= 0 && c.Y < d.Height
}

// Dimensions returns (max x + 1, max y + 1) over all listed coordinates.
// An empty listing yields a 1x1 grid.
func (p PixelListing) Dimensions() Dimensions {
	maxX, maxY := 0, 0
	for c := range p {
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	return Dimensions{Width: maxX + 1, Height: maxY + 1}
}

// Counts returns the number of listed pixels per mineral ID.
func (p PixelListing) Counts() map[int]int {
	counts := make(map[int]int)
	for _, id := range p {
		counts[id]++
	}
	return counts
}

// Map is a fully parsed map file.
type Map struct {
	// Path is the file the map was read from, empty when parsed from a reader.
	Path string

	Header Header

	// PixelSizeMicrons is the parsed value of the "Pixel size" header entry.
	PixelSizeMicrons float64

	Legend *Legend
	Pixels PixelListing
	Dims   Dimensions
}
