// Package imaging renders, annotates and exports mineral map images.
//
// The functions here work on standard image.Image values produced from a
// raster buffer. None of them mutate their input image.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward.
//
// # Scale Ruler
//
// Annotate appends a white band below the map holding a bar of fixed pixel
// length and a label with the bar's physical length in millimetres, computed
// from the map's pixel size in microns:
//
//	mm = Ruler.Length * micronPerPixel / 1000
//
// # Previews
//
// Preview encodes a base64 PNG after an optional nearest-neighbour Zoom.
// Highlight, Crop, NamedRegion and Grid prepare partial or annotated views;
// Grid labels stay in map coordinates after cropping and zooming.
// MeasureDistance converts pixel distances to microns and millimetres.
//
// # Export Formats
//
// Export picks the encoder from the destination extension:
//   - ".png"
//   - ".jpg", ".jpeg" (quality from ExportOptions.JPEGQuality)
//   - ".bmp"
//   - ".gif"
//   - ".tif", ".tiff"
//   - ".webp" (lossless by default)
//
// Any other extension fails with ErrUnsupportedFormat before anything is
// written.
package imaging
