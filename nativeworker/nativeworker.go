// Package nativeworker owns the single dedicated goroutine that talks to the underlying
// PDF library, which (like pdfium, the library ferrules binds to) is not safe to call
// concurrently. All native rasterization and character extraction for a document funnels
// through one worker's serial request loop.
package nativeworker

import (
	"context"
	"image"
	"time"

	"github.com/rapidpapertrans/docparse/geometry"
	"github.com/rapidpapertrans/docparse/internal/logger"
	"github.com/rapidpapertrans/docparse/internal/pdferr"
	"github.com/rapidpapertrans/docparse/pdfsource"
	"github.com/rapidpapertrans/docparse/textlines"
)

// MaxConcurrentRequests bounds the worker's request channel, mirroring ferrules'
// MAX_CONCURRENT_NATIVE_REQS.
const MaxConcurrentRequests = 10

// PageRange selects a half-open [Start,End) slice of 0-based page indices.
type PageRange struct {
	Start, End int
}

// Request describes one document's worth of native parsing work. Results stream back on
// ResultCh, one per page (or one count-only result), until the worker closes it.
type Request struct {
	DocData    []byte
	Password   string
	Flatten    bool
	PageRange  *PageRange // nil means "all pages"
	RasterW    int
	RasterH    int
	CountOnly  bool
	ResultCh   chan Result
}

// Result is one page's native parse outcome, or an error for that request.
type Result struct {
	Page  PageResult
	Err   error
}

// Metadata carries native-parse timing.
type Metadata struct {
	ParseDurationMS int64
}

// PageResult is one page's raw native parse, ahead of layout fusion.
type PageResult struct {
	PageID          int
	TextLines       []*textlines.Line
	PageBBox        geometry.BBox
	PageImage       image.Image // rasterized at RasterW/RasterH (for layout inference)
	PageImageScale1 image.Image // rasterized at native scale (for cropping/debug)
	DownscaleFactor float64
	Metadata        Metadata
	IsCountResult   bool
	TotalPageCount  int
}

// Worker serializes all access to one PdfSource-loaded document through a single
// goroutine.
type Worker struct {
	source pdfsource.PdfSource
	reqCh  chan Request
}

// NewWorker starts the worker's request loop and returns a handle to push requests onto
// it. The worker closes each Request.ResultCh after sending that request's last result.
// Sends on ResultCh block, so a receiver that stops reading stalls the worker once the
// channel's buffer is full.
func NewWorker(source pdfsource.PdfSource) *Worker {
	w := &Worker{
		source: source,
		reqCh:  make(chan Request, MaxConcurrentRequests),
	}
	go w.run()
	return w
}

// Push enqueues req, blocking until there is room in the worker's channel or ctx is
// cancelled.
func (w *Worker) Push(ctx context.Context, req Request) error {
	select {
	case w.reqCh <- req:
		return nil
	case <-ctx.Done():
		return pdferr.New(pdferr.KindCancelled, "push to native worker cancelled", ctx.Err())
	}
}

// CountPages is a convenience wrapper that issues a count-only request and waits for its
// single result, used by the orchestrator to validate a page range before doing any real
// work.
func (w *Worker) CountPages(ctx context.Context, data []byte, password string) (int, error) {
	resultCh := make(chan Result, 1)
	if err := w.Push(ctx, Request{
		DocData:   data,
		Password:  password,
		CountOnly: true,
		ResultCh:  resultCh,
	}); err != nil {
		return 0, err
	}
	select {
	case res := <-resultCh:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Page.TotalPageCount, nil
	case <-ctx.Done():
		return 0, pdferr.New(pdferr.KindCancelled, "count pages cancelled", ctx.Err())
	}
}

func (w *Worker) run() {
	for req := range w.reqCh {
		if err := w.handle(req); err != nil {
			logger.Error("native worker request failed", err)
		}
	}
}

// handle processes one request to completion and closes req.ResultCh when done, so a
// caller ranging over it (mirroring the Rust original's mpsc channel exhaustion signal via
// sender drop) knows the document has no more pages to read.
func (w *Worker) handle(req Request) error {
	defer close(req.ResultCh)

	doc, err := w.source.Load(context.Background(), req.DocData, req.Password)
	if err != nil {
		req.ResultCh <- Result{Err: pdferr.New(pdferr.KindDocumentLoad, "load document", err)}
		return nil
	}

	if req.CountOnly {
		req.ResultCh <- Result{Page: PageResult{
			IsCountResult:  true,
			TotalPageCount: doc.PageCount(),
			PageImage:      image.NewRGBA(image.Rect(0, 0, 1, 1)),
			PageImageScale1: image.NewRGBA(image.Rect(0, 0, 1, 1)),
			DownscaleFactor: 1.0,
		}}
		return nil
	}

	start, end := 0, doc.PageCount()
	if req.PageRange != nil {
		if req.PageRange.End > doc.PageCount() {
			err := pdferr.New(pdferr.KindPageRangeOutOfBounds,
				"page range end exceeds document length", nil)
			req.ResultCh <- Result{Err: err}
			return nil
		}
		start, end = req.PageRange.Start, req.PageRange.End
	}

	for pageID := start; pageID < end; pageID++ {
		page, err := doc.Page(pageID)
		if err != nil {
			req.ResultCh <- Result{Err: pdferr.New(pdferr.KindNativePage, "open page", err).WithPage(pageID)}
			continue
		}
		result, err := parsePageNative(pageID, page, req.Flatten, req.RasterW, req.RasterH)
		if err != nil {
			req.ResultCh <- Result{Err: err}
			continue
		}
		req.ResultCh <- Result{Page: *result}
	}
	return nil
}

func parsePageNative(pageID int, page pdfsource.PdfPage, flatten bool, rasterW, rasterH int) (*PageResult, error) {
	startTime := time.Now()

	if flatten {
		if err := page.Flatten(); err != nil {
			return nil, pdferr.New(pdferr.KindNativePage, "flatten page", err).WithPage(pageID)
		}
	}

	width, height := page.Width(), page.Height()
	rescaleFactor := minF(float64(rasterW)/width, float64(rasterH)/height)
	downscaleFactor := 1.0 / rescaleFactor

	pageBBox := geometry.New(0, 0, width, height)

	pageImage, err := page.Render(rescaleFactor)
	if err != nil {
		return nil, pdferr.New(pdferr.KindNativePage, "render page at detector scale", err).WithPage(pageID)
	}
	pageImageScale1, err := page.Render(1.0)
	if err != nil {
		return nil, pdferr.New(pdferr.KindNativePage, "render page at native scale", err).WithPage(pageID)
	}

	chars, err := page.Chars()
	if err != nil {
		return nil, pdferr.New(pdferr.KindNativePage, "extract characters", err).WithPage(pageID)
	}
	spans := textlines.BuildSpans(chars)
	lines := textlines.BuildLines(spans)

	return &PageResult{
		PageID:          pageID,
		TextLines:       lines,
		PageBBox:        pageBBox,
		PageImage:       pageImage,
		PageImageScale1: pageImageScale1,
		DownscaleFactor: downscaleFactor,
		Metadata: Metadata{
			ParseDurationMS: time.Since(startTime).Milliseconds(),
		},
	}, nil
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
