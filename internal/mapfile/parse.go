package mapfile

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Section names as they appear in the tags.
const (
	SectionHeader   = "Header"
	SectionMinerals = "Minerals"
	SectionPixels   = "Pixels"
)

// Grid limits. A coordinate above MaxCoordinate, or a listing whose grid
// would exceed MaxPixels, is rejected before any raster is allocated.
const (
	MaxCoordinate = 1<<16 - 1
	MaxPixels     = 1 << 26
)

var sectionPatterns = map[string]*regexp.Regexp{
	SectionHeader:   regexp.MustCompile(`(?s)<Header>(.*?)</Header>`),
	SectionMinerals: regexp.MustCompile(`(?s)<Minerals>(.*?)</Minerals>`),
	SectionPixels:   regexp.MustCompile(`(?s)<Pixels>(.*?)</Pixels>`),
}

// Section returns the trimmed content between <name> and </name>, or "" when
// the section is absent.
func Section(text, name string) string {
	re, ok := sectionPatterns[name]
	if !ok {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Sections extracts the header, mineral and pixel section contents.
func Sections(text string) (header, minerals, pixels string) {
	return Section(text, SectionHeader), Section(text, SectionMinerals), Section(text, SectionPixels)
}

// ParseFile reads and parses the map file at path.
func ParseFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Parse parses a complete map file. Nothing is returned unless every section
// parses.
func Parse(r io.Reader) (*Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	headerText, mineralText, pixelText := Sections(string(data))

	header, pixelSize, err := ParseHeader(headerText)
	if err != nil {
		return nil, err
	}
	legend, err := ParseLegend(mineralText)
	if err != nil {
		return nil, err
	}
	pixels, err := ParsePixels(pixelText)
	if err != nil {
		return nil, err
	}

	return &Map{
		Header:           header,
		PixelSizeMicrons: pixelSize,
		Legend:           legend,
		Pixels:           pixels,
		Dims:             pixels.Dimensions(),
	}, nil
}

// ParseHeader parses "key: value" lines, splitting on the first colon, and
// extracts the pixel size in microns.
func ParseHeader(content string) (Header, float64, error) {
	header := make(Header)
	err := eachLine(content, func(n int, line string) error {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return &FormatError{Section: SectionHeader, Line: n, Text: line, Reason: "missing ':' separator"}
		}
		header[strings.TrimSpace(key)] = strings.TrimSpace(value)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	raw, ok := header[PixelSizeKey]
	if !ok {
		return nil, 0, &FormatError{Section: SectionHeader, Reason: fmt.Sprintf("missing %q entry", PixelSizeKey)}
	}
	size, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, 0, &FormatError{
			Section: SectionHeader,
			Text:    PixelSizeKey + ": " + raw,
			Reason:  "pixel size is not a number",
			Err:     err,
		}
	}
	return header, size, nil
}

// ParseLegend parses "name: id" lines. The id follows the last colon so that
// names may themselves contain colons.
func ParseLegend(content string) (*Legend, error) {
	legend := NewLegend()
	err := eachLine(content, func(n int, line string) error {
		i := strings.LastIndex(line, ":")
		if i < 0 {
			return &FormatError{Section: SectionMinerals, Line: n, Text: line, Reason: "missing ':' separator"}
		}
		name := strings.TrimSpace(line[:i])
		if name == "" {
			return &FormatError{Section: SectionMinerals, Line: n, Text: line, Reason: "empty mineral name"}
		}
		id, err := parseID(line[i+1:])
		if err != nil {
			return &FormatError{Section: SectionMinerals, Line: n, Text: line, Reason: "invalid mineral id", Err: err}
		}
		legend.add(name, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return legend, nil
}

// ParsePixels parses "x,y: id" lines. The coordinate may be quoted.
func ParsePixels(content string) (PixelListing, error) {
	pixels := make(PixelListing)
	var maxX, maxY int
	err := eachLine(content, func(n int, line string) error {
		i := strings.LastIndex(line, ":")
		if i < 0 {
			return &FormatError{Section: SectionPixels, Line: n, Text: line, Reason: "missing ':' separator"}
		}
		coord, err := parseCoord(line[:i])
		if err != nil {
			return &FormatError{Section: SectionPixels, Line: n, Text: line, Reason: "invalid coordinate", Err: err}
		}
		id, err := parseID(line[i+1:])
		if err != nil {
			return &FormatError{Section: SectionPixels, Line: n, Text: line, Reason: "invalid mineral id", Err: err}
		}
		maxX, maxY = max(maxX, coord.X), max(maxY, coord.Y)
		if (maxX+1)*(maxY+1) > MaxPixels {
			return &FormatError{
				Section: SectionPixels,
				Line:    n,
				Text:    line,
				Reason:  "grid too large",
				Err:     fmt.Errorf("%dx%d exceeds %d pixels", maxX+1, maxY+1, MaxPixels),
			}
		}
		pixels[coord] = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pixels, nil
}

// eachLine calls fn for every non-blank line with its 1-based line number.
func eachLine(content string, fn func(n int, line string) error) error {
	if content == "" {
		return nil
	}
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := fn(i+1, line); err != nil {
			return err
		}
	}
	return nil
}

func parseCoord(s string) (Coord, error) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("expected \"x,y\", got %q", s)
	}
	x, err := parseNonNegative(xs)
	if err != nil {
		return Coord{}, err
	}
	y, err := parseNonNegative(ys)
	if err != nil {
		return Coord{}, err
	}
	if x > MaxCoordinate || y > MaxCoordinate {
		return Coord{}, fmt.Errorf("coordinate exceeds %d", MaxCoordinate)
	}
	return Coord{X: x, Y: y}, nil
}

func parseID(s string) (int, error) {
	return parseNonNegative(s)
}

func parseNonNegative(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %d", v)
	}
	return v, nil
}
