// Package pdfsource defines the narrow interface the rest of the pipeline uses to read a
// PDF document, and provides a default implementation backed by ledongthuc/pdf (page
// counting, text and page geometry) and pdfcpu (form flattening and rasterization).
package pdfsource

import (
	"context"
	"image"

	"github.com/rapidpapertrans/docparse/geometry"
)

// PdfSource opens raw PDF bytes into a navigable document.
type PdfSource interface {
	Load(ctx context.Context, data []byte, password string) (PdfDocument, error)
}

// PdfDocument is a loaded PDF, addressable by 0-based page index.
type PdfDocument interface {
	PageCount() int
	Page(i int) (PdfPage, error)
}

// PdfPage is a single page: its geometry, a rasterized image at a given scale, and its
// native character stream.
type PdfPage interface {
	Width() float64
	Height() float64

	// Flatten removes form fields and annotations that would otherwise obscure the
	// rendered page content. It is idempotent.
	Flatten() error

	// Render rasterizes the page at the given scale (1.0 = native PDF units per pixel).
	Render(scale float64) (image.Image, error)

	// Chars returns the page's character stream in content-stream order.
	Chars() ([]PdfChar, error)
}

// PdfChar is one glyph's recovered metrics, the unit CharSpan/Line aggregation consumes.
type PdfChar struct {
	Text             string
	TightBBox        geometry.BBox
	LooseBBox        geometry.BBox
	FontName         string
	FontWeight       int
	UnscaledFontSize float64
	RotationDegrees  float64
	SourceIndex      int
}
