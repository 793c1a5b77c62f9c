// Package viewer owns the state of one interactive mineral map session: the
// loaded map, its color mapping and the rendered buffer.
//
// A front end (the JSON-RPC server, the batch CLI, or a GUI) drives a
// Session through Load, Recolor, Render and Export. Load is all-or-nothing:
// a failed load leaves the previous map, colors and buffer untouched.
package viewer

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/minmap-viewer/internal/colormap"
	"github.com/ironsheep/minmap-viewer/internal/imaging"
	"github.com/ironsheep/minmap-viewer/internal/logger"
	"github.com/ironsheep/minmap-viewer/internal/mapfile"
	"github.com/ironsheep/minmap-viewer/internal/raster"
)

// ErrNoMap is returned by operations that need a loaded map.
var ErrNoMap = errors.New("no map loaded")

// Options configures a Session.
type Options struct {
	Ruler  imaging.Ruler
	Export imaging.ExportOptions

	// NewGenerator returns the initial color source for each load. Nil uses
	// colormap.NewRandom.
	NewGenerator func() colormap.Generator

	Logger *zap.Logger
}

// DefaultOptions returns the default ruler and export settings.
func DefaultOptions() Options {
	return Options{
		Ruler:  imaging.DefaultRuler(),
		Export: imaging.DefaultExportOptions(),
	}
}

// Session is safe for concurrent use; operations are serialized.
type Session struct {
	mu sync.Mutex

	opts Options
	log  *zap.Logger

	doc    *mapfile.Map
	colors *colormap.Store
	buf    *raster.Buffer
}

// New returns an empty session.
func New(opts Options) *Session {
	if opts.NewGenerator == nil {
		opts.NewGenerator = func() colormap.Generator { return colormap.NewRandom() }
	}
	return &Session{opts: opts, log: logger.OrNop(opts.Logger)}
}

// Summary describes a freshly loaded map.
type Summary struct {
	Path             string            `json:"path"`
	Width            int               `json:"width"`
	Height           int               `json:"height"`
	PixelSizeMicrons float64           `json:"pixel_size_um"`
	PixelCount       int               `json:"pixel_count"`
	Header           map[string]string `json:"header"`
	Minerals         []LegendEntry     `json:"minerals"`
}

// Load parses the map at path and replaces the session state with it.
func (s *Session) Load(path string) (*Summary, error) {
	doc, err := mapfile.ParseFile(path)
	if err != nil {
		s.log.Warn("map load failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	colors := colormap.NewStore(s.opts.NewGenerator())
	colors.Initialize(doc.Legend)
	buf := raster.Build(doc.Pixels, doc.Dims, colors)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc, s.colors, s.buf = doc, colors, buf
	s.log.Info("map loaded",
		zap.String("path", path),
		zap.Int("width", doc.Dims.Width),
		zap.Int("height", doc.Dims.Height),
		zap.Int("minerals", doc.Legend.Len()),
		zap.Int("pixels", len(doc.Pixels)),
		zap.Float64("pixel_size_um", doc.PixelSizeMicrons),
	)
	s.reportUnmapped()

	return &Summary{
		Path:             path,
		Width:            doc.Dims.Width,
		Height:           doc.Dims.Height,
		PixelSizeMicrons: doc.PixelSizeMicrons,
		PixelCount:       len(doc.Pixels),
		Header:           doc.Header,
		Minerals:         s.legend(),
	}, nil
}

// Recolor sets the color of a mineral and rebuilds the buffer.
func (s *Session) Recolor(id int, c colormap.RGB) (*raster.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNoMap
	}
	return s.recolor(id, c)
}

// RecolorByName sets the color of the mineral called name.
func (s *Session) RecolorByName(name string, c colormap.RGB) (*raster.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNoMap
	}
	id, ok := s.doc.Legend.ID(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", colormap.ErrUnknownMineral, name)
	}
	return s.recolor(id, c)
}

// recolor updates one mapping entry and rebuilds the whole buffer.
// Callers hold s.mu.
func (s *Session) recolor(id int, c colormap.RGB) (*raster.Buffer, error) {
	if err := s.colors.SetColor(id, c); err != nil {
		return nil, err
	}
	s.buf = raster.Build(s.doc.Pixels, s.doc.Dims, s.colors)
	s.log.Debug("mineral recolored", zap.Int("mineral_id", id), zap.String("color", c.Hex()))
	s.reportUnmapped()
	return s.buf, nil
}

// Buffer returns the current raster, or nil before the first load.
func (s *Session) Buffer() *raster.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}

// Map returns the loaded map, or nil before the first load.
func (s *Session) Map() *mapfile.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Color returns the current color of a mineral.
func (s *Session) Color(id int) (colormap.RGB, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.colors == nil {
		return colormap.RGB{}, false
	}
	return s.colors.Color(id)
}

// PreviewOptions controls Render.
type PreviewOptions struct {
	// Scale enlarges the preview with nearest-neighbour sampling. 0 or 1
	// keeps the map size.
	Scale float64

	// Highlight lists mineral IDs to keep in color; all other pixels are
	// shown in dimmed grayscale. Empty disables highlighting.
	Highlight []int

	// Region limits the preview to part of the map. Quadrant names a region
	// instead (see imaging.NamedRegion); Region wins when both are set.
	Region   *imaging.Region
	Quadrant string

	// Grid draws coordinate lines every Grid map pixels. 0 disables it.
	Grid       int
	GridLabels bool

	IncludeScale bool
}

// highlightDim is how much non-highlighted minerals are darkened.
const highlightDim = 0.35

// Render returns a PNG preview of the current buffer. The buffer itself is
// never modified.
func (s *Session) Render(opts PreviewOptions) (*imaging.PreviewResult, error) {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return nil, ErrNoMap
	}
	var img image.Image = s.buf.Image()
	var mask []bool
	if len(opts.Highlight) > 0 {
		mask = raster.Mask(s.doc.Pixels, s.doc.Dims, opts.Highlight...)
	}
	pixelSize := s.doc.PixelSizeMicrons
	dims := s.doc.Dims
	s.mu.Unlock()

	if mask != nil {
		highlighted, err := imaging.Highlight(img, mask, highlightDim)
		if err != nil {
			return nil, err
		}
		img = highlighted
	}

	var origin image.Point
	region := opts.Region
	if region == nil && opts.Quadrant != "" {
		r, err := imaging.NamedRegion(dims.Width, dims.Height, opts.Quadrant)
		if err != nil {
			return nil, err
		}
		region = &r
	}
	if region != nil {
		cropped, err := imaging.Crop(img, *region)
		if err != nil {
			return nil, err
		}
		img = cropped
		origin = image.Pt(region.X1, region.Y1)
	}

	img, err := imaging.Zoom(img, opts.Scale)
	if err != nil {
		return nil, err
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	if opts.Grid > 0 {
		gridded, err := imaging.Grid(img, imaging.GridOptions{
			Spacing: opts.Grid,
			Origin:  origin,
			Scale:   scale,
			Labels:  opts.GridLabels,
		})
		if err != nil {
			return nil, err
		}
		img = gridded
	}
	if opts.IncludeScale {
		img = imaging.Annotate(img, pixelSize/scale, s.opts.Ruler)
	}
	return imaging.Preview(img, 1)
}

// Measure returns the distance between two map pixels in pixels and in
// physical units.
func (s *Session) Measure(from, to imaging.Point) (*imaging.DistanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNoMap
	}
	for _, p := range []imaging.Point{from, to} {
		if !s.doc.Dims.Contains(mapfile.Coord{X: p.X, Y: p.Y}) {
			return nil, fmt.Errorf("point (%d,%d) outside map bounds %dx%d", p.X, p.Y, s.doc.Dims.Width, s.doc.Dims.Height)
		}
	}
	return imaging.MeasureDistance(from, to, s.doc.PixelSizeMicrons), nil
}

// Export writes the current buffer to path, optionally with a scale ruler.
// The format follows the path extension.
func (s *Session) Export(path string, includeScale bool) (*imaging.ExportResult, error) {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return nil, ErrNoMap
	}
	var img image.Image = s.buf.Image()
	pixelSize := s.doc.PixelSizeMicrons
	s.mu.Unlock()

	if includeScale {
		img = imaging.Annotate(img, pixelSize, s.opts.Ruler)
	}

	result, err := imaging.Export(img, path, s.opts.Export)
	if err != nil {
		s.log.Warn("export failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	s.log.Info("map exported",
		zap.String("path", result.Path),
		zap.String("format", string(result.Format)),
		zap.Bool("scale", includeScale),
		zap.Int64("bytes", result.FileSizeBytes),
	)
	return result, nil
}

// reportUnmapped logs pixels left black because their mineral has no color.
// Callers hold s.mu.
func (s *Session) reportUnmapped() {
	if len(s.buf.Unmapped) == 0 {
		return
	}
	ids := make([]int, 0, len(s.buf.Unmapped))
	total := 0
	for id, n := range s.buf.Unmapped {
		ids = append(ids, id)
		total += n
	}
	sort.Ints(ids)
	s.log.Warn("pixels reference minerals missing from the legend",
		zap.Ints("mineral_ids", ids),
		zap.Int("pixels", total),
	)
}
