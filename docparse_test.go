package docparse

import (
	"context"
	"image"
	"testing"

	"github.com/rapidpapertrans/docparse/config"
	"github.com/rapidpapertrans/docparse/internal/pdferr"
	"github.com/rapidpapertrans/docparse/layout"
	"github.com/rapidpapertrans/docparse/pdfsource"
)

// fakeSource is an in-memory PdfSource with a fixed page count, so tests never touch a
// real PDF library.
type fakeSource struct {
	pageCount int
}

func (s *fakeSource) Load(ctx context.Context, data []byte, password string) (pdfsource.PdfDocument, error) {
	return &fakeDocument{pageCount: s.pageCount}, nil
}

type fakeDocument struct {
	pageCount int
}

func (d *fakeDocument) PageCount() int { return d.pageCount }

func (d *fakeDocument) Page(i int) (pdfsource.PdfPage, error) {
	if i < 0 || i >= d.pageCount {
		return nil, pdferr.New(pdferr.KindNativePage, "page index out of range", nil)
	}
	return &fakePage{}, nil
}

// fakePage is a blank 1024x1024-point page with no native characters, so every page
// relies entirely on its detected layout region.
type fakePage struct{}

func (p *fakePage) Width() float64  { return layout.RequiredWidth }
func (p *fakePage) Height() float64 { return layout.RequiredHeight }
func (p *fakePage) Flatten() error  { return nil }

func (p *fakePage) Render(scale float64) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, layout.RequiredWidth, layout.RequiredHeight)), nil
}

func (p *fakePage) Chars() ([]pdfsource.PdfChar, error) { return nil, nil }

// fakeDetector returns a single high-confidence "Text" prediction covering most of the
// 1024x1024 input tensor, at the anchor index textClassAnchor.
type fakeDetector struct{}

const (
	outputClasses    = 11
	outputAnchors    = 21504
	textClassIndex   = 9 // Text's position in layout's id2label ordering
	textClassAnchor  = 0
)

func (fakeDetector) Infer(ctx context.Context, tensor []float32) ([]float32, error) {
	raw := make([]float32, (4+outputClasses)*outputAnchors)
	raw[0*outputAnchors+textClassAnchor] = 512 // xc
	raw[1*outputAnchors+textClassAnchor] = 512 // yc
	raw[2*outputAnchors+textClassAnchor] = 900 // w
	raw[3*outputAnchors+textClassAnchor] = 900 // h
	raw[(4+textClassIndex)*outputAnchors+textClassAnchor] = 0.9
	return raw, nil
}

func newTestParser(pageCount int) *Parser {
	return New(&fakeSource{pageCount: pageCount}, fakeDetector{}, nil, 8, 4, nil)
}

func TestParseMultiPageOrdersAndMerges(t *testing.T) {
	p := newTestParser(3)
	doc, err := p.Parse(context.Background(), "doc.pdf", []byte("%PDF-fake"), config.ParseConfig{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(doc.Pages))
	}
	for i, pg := range doc.Pages {
		if pg.ID != i {
			t.Errorf("page %d out of order: got ID %d", i, pg.ID)
		}
	}
	if len(doc.Blocks) != 3 {
		t.Errorf("expected one merged block per page, got %d blocks", len(doc.Blocks))
	}
	if doc.Metadata.Version != Version {
		t.Errorf("metadata version = %q, want %q", doc.Metadata.Version, Version)
	}
}

func TestParsePageRangeOutOfBoundsIsFatal(t *testing.T) {
	p := newTestParser(2)
	_, err := p.Parse(context.Background(), "doc.pdf", []byte("%PDF-fake"), config.ParseConfig{
		PageStart: 0,
		PageEnd:   5,
	})
	if err == nil {
		t.Fatal("expected an error for an out-of-bounds page range")
	}
	pe, ok := err.(*pdferr.Error)
	if !ok {
		t.Fatalf("expected *pdferr.Error, got %T", err)
	}
	if pe.Kind != pdferr.KindPageRangeOutOfBounds {
		t.Errorf("Kind = %v, want %v", pe.Kind, pdferr.KindPageRangeOutOfBounds)
	}
}

func TestParseRespectsPageRange(t *testing.T) {
	p := newTestParser(5)
	doc, err := p.Parse(context.Background(), "doc.pdf", []byte("%PDF-fake"), config.ParseConfig{
		PageStart: 1,
		PageEnd:   3,
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages in range [1,3), got %d", len(doc.Pages))
	}
	if doc.Pages[0].ID != 1 || doc.Pages[1].ID != 2 {
		t.Errorf("unexpected page ids: %d, %d", doc.Pages[0].ID, doc.Pages[1].ID)
	}
}

func TestParseCancelledContextSurfacesError(t *testing.T) {
	p := newTestParser(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Parse(ctx, "doc.pdf", []byte("%PDF-fake"), config.ParseConfig{})
	if err == nil {
		t.Fatal("expected cancellation to surface as an error")
	}
}
