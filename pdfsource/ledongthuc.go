package pdfsource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	ledongpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/rapidpapertrans/docparse/geometry"
	"github.com/rapidpapertrans/docparse/internal/pdferr"
)

// Default is the PdfSource implementation used in production: ledongthuc/pdf for page
// counting, page geometry and character extraction, pdfcpu for form/annotation
// flattening and page rasterization.
type Default struct{}

// NewDefault returns the production PdfSource.
func NewDefault() *Default { return &Default{} }

func (Default) Load(ctx context.Context, data []byte, password string) (PdfDocument, error) {
	rdr, err := ledongpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, pdferr.New(pdferr.KindDocumentLoad, "open pdf", err)
	}
	tmp, err := os.CreateTemp("", "docparse-*.pdf")
	if err != nil {
		return nil, pdferr.New(pdferr.KindDocumentLoad, "stage pdf for pdfcpu", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, pdferr.New(pdferr.KindDocumentLoad, "stage pdf for pdfcpu", err)
	}
	tmp.Close()

	return &document{
		reader:  rdr,
		tmpPath: tmp.Name(),
	}, nil
}

type document struct {
	reader  *ledongpdf.Reader
	tmpPath string
}

func (d *document) PageCount() int { return d.reader.NumPage() }

func (d *document) Page(i int) (PdfPage, error) {
	if i < 0 || i >= d.reader.NumPage() {
		return nil, pdferr.New(pdferr.KindPageRangeOutOfBounds, fmt.Sprintf("page %d out of range", i), nil)
	}
	p := d.reader.Page(i + 1) // ledongthuc/pdf is 1-indexed
	if p.V.IsNull() {
		return nil, pdferr.New(pdferr.KindNativePage, fmt.Sprintf("page %d is null", i), nil).WithPage(i)
	}
	return &page{doc: d, index: i, raw: p}, nil
}

type page struct {
	doc      *document
	index    int
	raw      ledongpdf.Page
	flatPath string
}

func (p *page) dims() (w, h float64) {
	box := p.raw.V.Key("MediaBox")
	if box.Len() == 4 {
		return box.Index(2).Float64() - box.Index(0).Float64(), box.Index(3).Float64() - box.Index(1).Float64()
	}
	return 612, 792 // US Letter fallback when MediaBox is inherited and unresolved
}

func (p *page) Width() float64  { w, _ := p.dims(); return w }
func (p *page) Height() float64 { _, h := p.dims(); return h }

// Flatten removes form fields and annotations via pdfcpu so they don't obscure the
// rasterized page content. It operates on the staged temp file and is idempotent.
func (p *page) Flatten() error {
	if p.flatPath != "" {
		return nil
	}
	out := p.doc.tmpPath + ".flat"
	conf := api.LoadConfiguration()
	if err := api.FlattenFormFile(p.doc.tmpPath, out, nil, conf); err != nil {
		// Not every PDF has form fields; pdfcpu returns an error for those, which we
		// tolerate by falling back to the unflattened source.
		p.flatPath = p.doc.tmpPath
		return nil
	}
	p.flatPath = out
	return nil
}

// Render rasterizes the page at the given scale using pdfcpu's page-image export.
func (p *page) Render(scale float64) (image.Image, error) {
	path := p.doc.tmpPath
	if p.flatPath != "" {
		path = p.flatPath
	}
	w, h := p.dims()
	conf := api.LoadConfiguration()
	imgBytes, err := api.ExtractPageImageRaw(path, p.index+1, int(w*scale), int(h*scale), conf)
	if err != nil {
		return nil, pdferr.New(pdferr.KindNativePage, "render page", err).WithPage(p.index)
	}
	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, pdferr.New(pdferr.KindNativePage, "decode rendered page", err).WithPage(p.index)
	}
	return img, nil
}

// Chars extracts the page's character stream, reconstructing per-glyph metrics from
// ledongthuc/pdf's row-grouped text model.
func (p *page) Chars() ([]PdfChar, error) {
	rows, err := p.raw.GetTextByRow()
	if err != nil {
		return nil, pdferr.New(pdferr.KindNativePage, "extract text", err).WithPage(p.index)
	}
	pageH := p.Height()
	var out []PdfChar
	for _, row := range rows {
		for idx, t := range row.Content {
			if t.S == "" {
				continue
			}
			weight := 400
			if strings.Contains(strings.ToLower(t.Font), "bold") {
				weight = 700
			}
			// ledongthuc/pdf reports text origin in PDF space (bottom-left origin); flip
			// to top-left-origin raster space to match geometry.BBox's convention.
			y0 := pageH - t.Y - t.FontSize
			y1 := pageH - t.Y
			tight := geometry.New(t.X, y0, t.X+t.W, y1)
			out = append(out, PdfChar{
				Text:             t.S,
				TightBBox:        tight,
				LooseBBox:        tight,
				FontName:         t.Font,
				FontWeight:       weight,
				UnscaledFontSize: t.FontSize,
				RotationDegrees:  0,
				SourceIndex:      idx,
			})
		}
	}
	return out, nil
}
