package assemble

import (
	"context"
	"image"

	"github.com/rapidpapertrans/docparse/entities"
	"github.com/rapidpapertrans/docparse/internal/logger"
	"github.com/rapidpapertrans/docparse/internal/pdferr"
	"github.com/rapidpapertrans/docparse/layout"
	"github.com/rapidpapertrans/docparse/ocr"
	"github.com/rapidpapertrans/docparse/textlines"
)

// Page is the native/layout input to Assemble for a single page; exactly one of
// NativeLines or an OCR backend supplies its text, selected by NeedsOCR.
type Page struct {
	ID              int
	Width, Height   float64
	NativeLines     []*textlines.Line
	Regions         []layout.Region
	Image           image.Image // rasterized at detector scale, fed to OCR if needed
	ImageScale1     image.Image
	DownscaleFactor float64
}

// Assemble decides whether pageIn needs OCR, recognizes text accordingly, fuses the
// resulting lines with its detected regions, and returns the finished structured page.
// ocrBackend may be nil; a page that needs OCR with no backend available keeps its native
// lines, however sparse. An OCR failure is logged and the page likewise keeps its native
// lines.
func Assemble(ctx context.Context, pageIn Page, ocrBackend ocr.Backend) (entities.StructuredPage, error) {
	lines := pageIn.NativeLines
	needsOCR := NeedsOCR(lines, pageIn.Regions)

	if needsOCR && ocrBackend != nil {
		recognized, err := ocrBackend.Recognize(ctx, pageIn.Image, pageIn.DownscaleFactor)
		if err != nil {
			logger.Error("ocr fallback failed, keeping native lines",
				pdferr.New(pdferr.KindOCR, "recognize page", err).WithPage(pageIn.ID), logger.Page(pageIn.ID))
		} else {
			lines = ocr.ToTextLines(recognized)
		}
	}

	elements := BuildPageElements(pageIn.ID, lines, pageIn.Regions)

	return entities.StructuredPage{
		ID:       pageIn.ID,
		Width:    pageIn.Width,
		Height:   pageIn.Height,
		NeedsOCR: needsOCR,
		Image:    pageIn.ImageScale1,
		Elements: elements,
	}, nil
}
