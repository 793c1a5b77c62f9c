package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned for output paths whose extension does not
// name a known image format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is an output image format.
type Format string

// Supported output formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatGIF  Format = "gif"
	FormatTIFF Format = "tiff"
	FormatWebP Format = "webp"
)

// ExportOptions tunes the lossy encoders.
type ExportOptions struct {
	// JPEGQuality ranges 1-100.
	JPEGQuality int `yaml:"jpeg_quality" json:"jpeg_quality"`

	// WebPQuality ranges 0-100. Ignored when WebPLossless is set.
	WebPQuality float32 `yaml:"webp_quality" json:"webp_quality"`

	WebPLossless bool `yaml:"webp_lossless" json:"webp_lossless"`
}

// DefaultExportOptions returns high quality settings for the lossy formats.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{JPEGQuality: 95, WebPQuality: 90, WebPLossless: true}
}

// ExportResult describes a written image file.
type ExportResult struct {
	Path          string `json:"path"`
	Format        Format `json:"format"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// FormatFromPath infers the output format from the file extension
// (case-insensitive): .png, .jpg/.jpeg, .bmp, .gif, .tif/.tiff, .webp.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".webp" {
		return FormatWebP, nil
	}

	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	switch f {
	case imaging.PNG:
		return FormatPNG, nil
	case imaging.JPEG:
		return FormatJPEG, nil
	case imaging.BMP:
		return FormatBMP, nil
	case imaging.GIF:
		return FormatGIF, nil
	case imaging.TIFF:
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format, opts ExportOptions) error {
	var err error
	switch format {
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Lossless: opts.WebPLossless, Quality: opts.WebPQuality})
	case FormatPNG:
		err = imaging.Encode(w, img, imaging.PNG)
	case FormatJPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(opts.JPEGQuality))
	case FormatBMP:
		err = imaging.Encode(w, img, imaging.BMP)
	case FormatGIF:
		err = imaging.Encode(w, img, imaging.GIF)
	case FormatTIFF:
		err = imaging.Encode(w, img, imaging.TIFF)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return nil
}

// Export writes img to path in the format named by its extension.
//
// The image is encoded in memory first, so an encoding failure never leaves
// a partial file behind. Export performs no annotation or scaling.
func Export(img image.Image, path string, opts ExportOptions) (*ExportResult, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, format, opts); err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	bounds := img.Bounds()
	return &ExportResult{
		Path:          path,
		Format:        format,
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		FileSizeBytes: int64(buf.Len()),
	}, nil
}
