// Package ocr adapts an external OCR backend's line-level output into the textlines.Line
// shape the rest of the pipeline consumes, for use when a page's native text coverage is
// too low (scanned pages, flattened forms) to trust character extraction alone.
package ocr

import (
	"context"
	"image"

	"github.com/rapidpapertrans/docparse/geometry"
	"github.com/rapidpapertrans/docparse/textlines"
)

// Line is one recognized line of text with a confidence score, the unit an OCRBackend
// reports.
type Line struct {
	Text       string
	Confidence float64
	BBox       geometry.BBox
}

// Backend recognizes text in a rasterized page image. scale is the page's downscale
// factor, the multiplier that converts raster pixel coordinates back to native PDF units,
// needed by implementations that must map back to them.
type Backend interface {
	Recognize(ctx context.Context, img image.Image, scale float64) ([]Line, error)
}

// ConfidenceThreshold is the minimum confidence an OCR line must meet to be kept; set to
// 0 (every non-negative confidence is kept) per spec, since OCR is already a fallback of
// last resort and dropping low-confidence lines would only make coverage worse.
const ConfidenceThreshold = 0.0

// ToTextLines converts recognized OCR lines into textlines.Line values: OCR lines carry no
// rotation information (rotation 0) and each becomes one closed Line with no spans.
func ToTextLines(lines []Line) []*textlines.Line {
	out := make([]*textlines.Line, 0, len(lines))
	for _, l := range lines {
		if l.Confidence < ConfidenceThreshold {
			continue
		}
		line := &textlines.Line{
			Text:            l.Text,
			BBox:            l.BBox,
			RotationDegrees: 0,
		}
		out = append(out, line.Close())
	}
	return out
}
