package viewer

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ironsheep/minmap-viewer/internal/colormap"
	imgutil "github.com/ironsheep/minmap-viewer/internal/imaging"
	"github.com/ironsheep/minmap-viewer/internal/mapfile"
)

const sampleMap = `<Header>
Pixel size: 1.5
</Header>
<Minerals>
Quartz: 1
Feldspar: 2
</Minerals>
<Pixels>
0,0: 1
1,0: 2
0,1: 1
</Pixels>
`

var (
	red   = colormap.RGB{R: 255}
	green = colormap.RGB{G: 255}
	blue  = colormap.RGB{B: 255}
)

func writeMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newSession returns a session drawing red then green on every load, and the
// log observer behind it.
func newSession(t *testing.T) (*Session, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	opts := DefaultOptions()
	opts.NewGenerator = func() colormap.Generator { return colormap.NewSequence(red, green) }
	opts.Logger = zap.New(core)
	return New(opts), logs
}

func TestSession_LoadAndRecolor(t *testing.T) {
	s, _ := newSession(t)
	path := writeMap(t, sampleMap)

	summary, err := s.Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Width)
	require.Equal(t, 2, summary.Height)
	require.Equal(t, 1.5, summary.PixelSizeMicrons)
	require.Equal(t, 3, summary.PixelCount)
	require.Equal(t, []LegendEntry{
		{Name: "Quartz", ID: 1, Color: "#ff0000", Pixels: 2},
		{Name: "Feldspar", ID: 2, Color: "#00ff00", Pixels: 1},
	}, summary.Minerals)

	buf := s.Buffer()
	require.Equal(t, red, buf.At(0, 0))
	require.Equal(t, green, buf.At(1, 0))
	require.Equal(t, red, buf.At(0, 1))
	require.Equal(t, colormap.Black, buf.At(1, 1))

	buf, err = s.Recolor(2, blue)
	require.NoError(t, err)
	require.Equal(t, blue, buf.At(1, 0))
	require.Equal(t, red, buf.At(0, 0), "other minerals keep their color")

	c, ok := s.Color(2)
	require.True(t, ok)
	require.Equal(t, blue, c)
}

func TestSession_RecolorByName(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.Load(writeMap(t, sampleMap))
	require.NoError(t, err)

	buf, err := s.RecolorByName("Quartz", blue)
	require.NoError(t, err)
	require.Equal(t, blue, buf.At(0, 0))
	require.Equal(t, blue, buf.At(0, 1))

	_, err = s.RecolorByName("Olivine", blue)
	require.ErrorIs(t, err, colormap.ErrUnknownMineral)
}

func TestSession_RecolorUnknownIDKeepsBuffer(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.Load(writeMap(t, sampleMap))
	require.NoError(t, err)
	before := s.Buffer()

	_, err = s.Recolor(99, blue)
	require.ErrorIs(t, err, colormap.ErrUnknownMineral)
	require.Same(t, before, s.Buffer())
	_, ok := s.Color(99)
	require.False(t, ok)
}

func TestSession_NoMap(t *testing.T) {
	s, _ := newSession(t)

	_, err := s.Recolor(1, red)
	require.ErrorIs(t, err, ErrNoMap)
	_, err = s.RecolorByName("Quartz", red)
	require.ErrorIs(t, err, ErrNoMap)
	_, err = s.Render(PreviewOptions{})
	require.ErrorIs(t, err, ErrNoMap)
	_, err = s.Export(filepath.Join(t.TempDir(), "out.png"), false)
	require.ErrorIs(t, err, ErrNoMap)
	_, err = s.Legend()
	require.ErrorIs(t, err, ErrNoMap)
	_, err = s.SamplePixel(0, 0)
	require.ErrorIs(t, err, ErrNoMap)
	_, err = s.Abundance()
	require.ErrorIs(t, err, ErrNoMap)

	require.Nil(t, s.Buffer())
	require.Nil(t, s.Map())
}

func TestSession_FailedLoadKeepsState(t *testing.T) {
	s, logs := newSession(t)
	good := writeMap(t, sampleMap)
	_, err := s.Load(good)
	require.NoError(t, err)
	_, err = s.Recolor(1, blue)
	require.NoError(t, err)
	before := s.Buffer()

	bad := writeMap(t, "<Header>\nPixel size: 1\n</Header>\n<Minerals>\nQuartz: one\n</Minerals>\n<Pixels>\n</Pixels>\n")
	_, err = s.Load(bad)
	var fe *mapfile.FormatError
	require.True(t, errors.As(err, &fe))

	require.Same(t, before, s.Buffer())
	require.Equal(t, good, s.Map().Path)
	c, _ := s.Color(1)
	require.Equal(t, blue, c)
	require.Equal(t, 1, logs.FilterMessage("map load failed").Len())

	_, err = s.Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	require.Same(t, before, s.Buffer())
}

func TestSession_OversizedGridKeepsState(t *testing.T) {
	s, _ := newSession(t)
	good := writeMap(t, sampleMap)
	_, err := s.Load(good)
	require.NoError(t, err)
	before := s.Buffer()

	for _, line := range []string{"9223372036854775807,0: 1", "100000,100000: 1"} {
		huge := writeMap(t, "<Header>\nPixel size: 1\n</Header>\n<Minerals>\nQuartz: 1\n</Minerals>\n<Pixels>\n0,0: 1\n"+line+"\n</Pixels>\n")
		_, err = s.Load(huge)
		var fe *mapfile.FormatError
		require.True(t, errors.As(err, &fe), "line %q: %v", line, err)
		require.Equal(t, mapfile.SectionPixels, fe.Section)
		require.Equal(t, 2, fe.Line)
		require.Same(t, before, s.Buffer())
		require.Equal(t, good, s.Map().Path)
	}
}

func TestSession_ReloadDrawsFreshColors(t *testing.T) {
	s, _ := newSession(t)
	path := writeMap(t, sampleMap)
	_, err := s.Load(path)
	require.NoError(t, err)
	_, err = s.Recolor(1, blue)
	require.NoError(t, err)

	_, err = s.Load(path)
	require.NoError(t, err)
	c, _ := s.Color(1)
	require.Equal(t, red, c, "reload replaces manual colors")
}

func TestSession_UnmappedPixelsAreLogged(t *testing.T) {
	s, logs := newSession(t)
	content := "<Header>\nPixel size: 2\n</Header>\n<Minerals>\nQuartz: 1\n</Minerals>\n<Pixels>\n0,0: 1\n1,0: 7\n2,0: 7\n</Pixels>\n"
	_, err := s.Load(writeMap(t, content))
	require.NoError(t, err)

	buf := s.Buffer()
	require.Equal(t, colormap.Black, buf.At(1, 0))
	require.Equal(t, map[int]int{7: 2}, buf.Unmapped)

	warnings := logs.FilterMessage("pixels reference minerals missing from the legend").All()
	require.Len(t, warnings, 1)
	require.Equal(t, zapcore.WarnLevel, warnings[0].Level)
	require.EqualValues(t, 2, warnings[0].ContextMap()["pixels"])
}

func TestSession_Export(t *testing.T) {
	s, logs := newSession(t)
	_, err := s.Load(writeMap(t, sampleMap))
	require.NoError(t, err)
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.png")
	result, err := s.Export(plain, false)
	require.NoError(t, err)
	require.Equal(t, imgutil.FormatPNG, result.Format)
	require.Equal(t, 2, result.Width)
	require.Equal(t, 2, result.Height)

	img, err := imaging.Open(plain)
	require.NoError(t, err)
	r, g, b, _ := img.At(1, 0).RGBA()
	require.Equal(t, []uint32{0, 0xffff, 0}, []uint32{r, g, b})

	ruler := DefaultOptions().Ruler
	scaled := filepath.Join(dir, "scaled.png")
	result, err = s.Export(scaled, true)
	require.NoError(t, err)
	require.Equal(t, 2, result.Width)
	require.Equal(t, 2+ruler.Height+ruler.Margin, result.Height)

	require.Equal(t, 2, logs.FilterMessage("map exported").Len())
}

func TestSession_ExportUnsupportedFormat(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.Load(writeMap(t, sampleMap))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.xyz")
	_, err = s.Export(path, false)
	require.ErrorIs(t, err, imgutil.ErrUnsupportedFormat)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestSession_Render(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.Load(writeMap(t, sampleMap))
	require.NoError(t, err)

	preview, err := s.Render(PreviewOptions{Scale: 4})
	require.NoError(t, err)
	require.Equal(t, 8, preview.Width)
	require.Equal(t, 8, preview.Height)
	require.Equal(t, "image/png", preview.MimeType)
	require.NotEmpty(t, preview.ImageBase64)

	highlighted, err := s.Render(PreviewOptions{Highlight: []int{1}, IncludeScale: true})
	require.NoError(t, err)
	ruler := DefaultOptions().Ruler
	require.Equal(t, 2+ruler.Height+ruler.Margin, highlighted.Height)

	require.Equal(t, red, s.Buffer().At(0, 0), "render leaves the buffer untouched")
	require.Equal(t, green, s.Buffer().At(1, 0))
}

func TestSession_Legend(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.Load(writeMap(t, sampleMap))
	require.NoError(t, err)
	_, err = s.Recolor(1, blue)
	require.NoError(t, err)

	legend, err := s.Legend()
	require.NoError(t, err)
	require.Len(t, legend, 2)
	require.Equal(t, "Quartz", legend[0].Name)
	require.Equal(t, "#0000ff", legend[0].Color)
}

func TestSession_SamplePixel(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.Load(writeMap(t, sampleMap))
	require.NoError(t, err)

	sample, err := s.SamplePixel(1, 0)
	require.NoError(t, err)
	require.True(t, sample.Listed)
	require.Equal(t, 2, sample.MineralID)
	require.Equal(t, "Feldspar", sample.Mineral)
	require.Equal(t, "#00FF00", sample.Color.Hex)

	sample, err = s.SamplePixel(1, 1)
	require.NoError(t, err)
	require.False(t, sample.Listed)
	require.Equal(t, "#000000", sample.Color.Hex)

	_, err = s.Recolor(2, blue)
	require.NoError(t, err)
	sample, err = s.SamplePixel(1, 0)
	require.NoError(t, err)
	require.Equal(t, "#0000FF", sample.Color.Hex)
	require.Equal(t, imgutil.RGBColor{B: 255}, sample.Color.RGB)
	require.Equal(t, imgutil.HSLColor{H: 240, S: 100, L: 50}, sample.Color.HSL)

	for _, p := range [][2]int{{5, 5}, {2, 0}, {0, 2}, {-1, 0}, {0, -1}} {
		_, err = s.SamplePixel(p[0], p[1])
		require.Error(t, err, "(%d,%d)", p[0], p[1])
	}
}

func TestSession_Abundance(t *testing.T) {
	s, _ := newSession(t)
	content := "<Header>\nPixel size: 10\n</Header>\n<Minerals>\nQuartz: 1\nFeldspar: 2\nMica: 3\n</Minerals>\n<Pixels>\n0,0: 2\n1,0: 2\n2,0: 1\n3,0: 9\n</Pixels>\n"
	_, err := s.Load(writeMap(t, content))
	require.NoError(t, err)

	got, err := s.Abundance()
	require.NoError(t, err)
	require.Equal(t, []MineralAbundance{
		{Name: "Feldspar", ID: 2, Pixels: 2, Percent: 50, AreaMM2: 0.0002},
		{Name: "Quartz", ID: 1, Pixels: 1, Percent: 25, AreaMM2: 0.0001},
		{Name: "", ID: 9, Pixels: 1, Percent: 25, AreaMM2: 0.0001},
		{Name: "Mica", ID: 3, Pixels: 0, Percent: 0, AreaMM2: 0},
	}, got)
}

func TestSession_ConcurrentRecolor(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.Load(writeMap(t, sampleMap))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := colormap.RGB{R: uint8(i), G: uint8(i), B: uint8(i)}
			_, _ = s.Recolor(1+i%2, c)
			_, _ = s.Render(PreviewOptions{})
		}(i)
	}
	wg.Wait()

	buf := s.Buffer()
	c1, _ := s.Color(1)
	c2, _ := s.Color(2)
	require.Equal(t, c1, buf.At(0, 0))
	require.Equal(t, c2, buf.At(1, 0))
}

func TestSession_RenderRegionAndGrid(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.Load(writeMap(t, sampleMap))
	require.NoError(t, err)

	preview, err := s.Render(PreviewOptions{
		Region: &imgutil.Region{X1: 0, Y1: 0, X2: 1, Y2: 2},
		Scale:  20,
		Grid:   1,
	})
	require.NoError(t, err)
	require.Equal(t, 20, preview.Width)
	require.Equal(t, 40, preview.Height)

	preview, err = s.Render(PreviewOptions{Quadrant: "bottom-half", IncludeScale: true})
	require.NoError(t, err)
	ruler := DefaultOptions().Ruler
	require.Equal(t, 2, preview.Width)
	require.Equal(t, 1+ruler.Height+ruler.Margin, preview.Height)

	_, err = s.Render(PreviewOptions{Quadrant: "somewhere"})
	require.Error(t, err)
	_, err = s.Render(PreviewOptions{Region: &imgutil.Region{X1: 0, Y1: 0, X2: 3, Y2: 1}})
	require.Error(t, err)
	_, err = s.Render(PreviewOptions{Scale: -1})
	require.Error(t, err)
}

func TestSession_Measure(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.Measure(imgutil.Point{}, imgutil.Point{X: 1})
	require.ErrorIs(t, err, ErrNoMap)

	_, err = s.Load(writeMap(t, sampleMap))
	require.NoError(t, err)

	d, err := s.Measure(imgutil.Point{X: 0, Y: 0}, imgutil.Point{X: 1, Y: 0})
	require.NoError(t, err)
	require.Equal(t, 1.0, d.DistancePixels)
	require.Equal(t, 1.5, d.DistanceMicron)

	_, err = s.Measure(imgutil.Point{X: 0, Y: 0}, imgutil.Point{X: 2, Y: 0})
	require.Error(t, err)
}
