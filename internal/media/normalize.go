// Package media implements the image normalization engine shared by the
// safety-check upload pipeline and the batch sweeper.
//
// Normalization decodes arbitrary input (JPEG, PNG, HEIC/HEIF), flattens
// transparency over a white canvas, downscales into a bounding box and
// re-encodes as JPEG, writing the result back over the source file.
package media

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultMaxWidth and DefaultMaxHeight bound normalized images.
	DefaultMaxWidth  = 1920
	DefaultMaxHeight = 1920

	// DefaultQuality is the JPEG quality for upload normalization.
	DefaultQuality = 85

	// SweeperQuality is the more aggressive quality used by the batch sweeper.
	SweeperQuality = 75
)

// =============================================================================
// Normalizer
// =============================================================================

// Normalizer re-encodes images into bounded, opaque, web-ready JPEGs.
// It is stateless and safe for concurrent use.
type Normalizer struct {
	maxWidth  int
	maxHeight int
	quality   int
	logger    *slog.Logger
}

// NewNormalizer creates a Normalizer with the given bounding box and JPEG
// quality. Zero values fall back to the defaults.
func NewNormalizer(maxWidth, maxHeight, quality int, logger *slog.Logger) *Normalizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}
	if quality <= 0 {
		quality = DefaultQuality
	}
	return &Normalizer{
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
		quality:   quality,
		logger:    logger,
	}
}

// Result describes a completed normalization.
type Result struct {
	Width        int   // Final pixel width
	Height       int   // Final pixel height
	OriginalSize int64 // Source file size in bytes
	NewSize      int64 // Re-encoded file size in bytes
}

// Saved returns the byte delta between source and result. Negative when the
// re-encode grew the file.
func (r *Result) Saved() int64 {
	return r.OriginalSize - r.NewSize
}

// NormalizeFile decodes, flattens, downscales and re-encodes the image at
// path, overwriting it with the JPEG result. On any decode or encode failure
// the source file is left untouched and an error is returned; callers decide
// whether a non-normalized file is acceptable.
func (n *Normalizer) NormalizeFile(path string) (*Result, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	originalSize := stat.Size()

	src, err := n.decode(path)
	if err != nil {
		n.logger.Warn("image decode failed", "path", path, "error", err)
		return nil, err
	}

	img := n.flatten(src)

	// Scale down into the bounding box; never upscale
	bounds := img.Bounds()
	if bounds.Dx() > n.maxWidth || bounds.Dy() > n.maxHeight {
		img = imaging.Fit(img, n.maxWidth, n.maxHeight, imaging.Lanczos)
	}

	// Write to a sibling temp file first so a failed encode leaves the source
	// untouched. The .jpg suffix selects the JPEG encoder.
	tmpPath := path + ".norm.jpg"
	if err := imaging.Save(img, tmpPath, imaging.JPEGQuality(n.quality)); err != nil {
		os.Remove(tmpPath)
		n.logger.Warn("image encode failed", "path", path, "error", err)
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("replace %s: %w", path, err)
	}

	newStat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	final := img.Bounds()
	result := &Result{
		Width:        final.Dx(),
		Height:       final.Dy(),
		OriginalSize: originalSize,
		NewSize:      newStat.Size(),
	}

	n.logger.Debug("normalized image",
		"path", path,
		"width", result.Width,
		"height", result.Height,
		"original_size", result.OriginalSize,
		"new_size", result.NewSize,
	)

	return result, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// decode opens and decodes the file via the registered image formats. HEIC and
// HEIF decode through the format opener installed by RegisterHEIF.
func (n *Normalizer) decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// flatten composites images carrying transparency onto a white canvas so the
// JPEG encode doesn't turn transparent regions black. Opaque sources pass
// through unchanged.
func (n *Normalizer) flatten(src image.Image) image.Image {
	if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
		return src
	}

	bounds := src.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(canvas, src, image.Pt(0, 0), 1.0)
}
